package domain

import "fmt"

type NotFoundReason string

const (
	NotFoundNoRecord    NotFoundReason = "no-record"
	NotFoundUnreachable NotFoundReason = "unreachable"
)

// NotFoundError represents a username that could not be resolved.
type NotFoundError struct {
	Reason   NotFoundReason
	Username string
}

func (e NotFoundError) Error() string {
	switch e.Reason {
	case NotFoundUnreachable:
		return fmt.Sprintf("profile %q exists but no gateway serves its content", e.Username)
	case NotFoundNoRecord:
		return fmt.Sprintf("profile %q not found", e.Username)
	}
	if e.Username == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Username)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	switch t := target.(type) {
	case NotFoundError:
		return t.Reason == "" || t.Reason == e.Reason
	case *NotFoundError:
		return t == nil || t.Reason == "" || t.Reason == e.Reason
	}
	return false
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

type PublishReason string

const (
	PublishOversized       PublishReason = "oversized"
	PublishUnauthenticated PublishReason = "unauthenticated"
	PublishSigning         PublishReason = "signing"
	PublishTransport       PublishReason = "transport"
	PublishRejected        PublishReason = "rejected"
	PublishMissingID       PublishReason = "missing-id"
)

// PublishError is returned by every failed publish.
type PublishError struct {
	Reason PublishReason
	Status int
	Size   int
	Limit  int
	Err    error
}

func (e *PublishError) Error() string {
	switch e.Reason {
	case PublishOversized:
		return fmt.Sprintf("document is %d bytes, limit is %d", e.Size, e.Limit)
	case PublishUnauthenticated:
		return "no signing identity available"
	case PublishSigning:
		return fmt.Sprintf("failed to sign data item: %v", e.Err)
	case PublishTransport:
		return fmt.Sprintf("upload failed: %v", e.Err)
	case PublishRejected:
		return fmt.Sprintf("upload rejected with status %d", e.Status)
	case PublishMissingID:
		return "upload response carried no identifier"
	}
	return "publish failed"
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

func (e *PublishError) Is(target error) bool {
	t, ok := target.(*PublishError)
	return ok && (t.Reason == "" || t.Reason == e.Reason)
}

var ErrPublish = &PublishError{}

type PermissionReason string

const (
	PermissionNoWallet          PermissionReason = "no-wallet"
	PermissionNoOwner           PermissionReason = "no-owner"
	PermissionMissingPermission PermissionReason = "missing-permission"
	PermissionNotAuthenticated  PermissionReason = "not-authenticated"
	PermissionAddressMismatch   PermissionReason = "address-mismatch"
)

// PermissionError explains why a viewer may not republish a profile.
type PermissionError struct {
	Reason PermissionReason
	Scope  string
}

func (e *PermissionError) Error() string {
	switch e.Reason {
	case PermissionNoWallet:
		return "no wallet connected"
	case PermissionNoOwner:
		return "profile has no owner on record"
	case PermissionMissingPermission:
		return fmt.Sprintf("wallet has not granted %s", e.Scope)
	case PermissionNotAuthenticated:
		return "wallet has no active address"
	case PermissionAddressMismatch:
		return "connected address does not own this profile"
	}
	return "permission denied"
}

func (e *PermissionError) Is(target error) bool {
	t, ok := target.(*PermissionError)
	return ok && (t.Reason == "" || t.Reason == e.Reason)
}

var ErrPermission = &PermissionError{}
