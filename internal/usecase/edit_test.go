package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/internal/domain"
)

var allScopes = []string{domain.ScopeAccessAddress, domain.ScopeSignTransaction}

func permissionOf(t *testing.T, err error) *domain.PermissionError {
	t.Helper()
	var pe *domain.PermissionError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *domain.PermissionError, got %v", err)
	}
	return pe
}

func TestCheckPermission(t *testing.T) {
	cases := []struct {
		name   string
		wallet Wallet
		owner  string
		reason domain.PermissionReason
		scope  string
	}{
		{"no wallet", nil, "addr-owner", domain.PermissionNoWallet, ""},
		{"no owner", &mockWallet{scopes: allScopes, address: "addr-owner"}, "", domain.PermissionNoOwner, ""},
		{"no access scope", &mockWallet{scopes: []string{domain.ScopeSignTransaction}, address: "addr-owner"}, "addr-owner", domain.PermissionMissingPermission, domain.ScopeAccessAddress},
		{"no sign scope", &mockWallet{scopes: []string{domain.ScopeAccessAddress}, address: "addr-owner"}, "addr-owner", domain.PermissionMissingPermission, domain.ScopeSignTransaction},
		{"permissions unreadable", &mockWallet{permErr: errors.New("locked")}, "addr-owner", domain.PermissionMissingPermission, domain.ScopeAccessAddress},
		{"no address", &mockWallet{scopes: allScopes}, "addr-owner", domain.PermissionNotAuthenticated, ""},
		{"other address", &mockWallet{scopes: allScopes, address: "addr-other"}, "addr-owner", domain.PermissionAddressMismatch, ""},
		{"case differs", &mockWallet{scopes: allScopes, address: "ADDR-OWNER"}, "addr-owner", domain.PermissionAddressMismatch, ""},
	}

	uc := NewEditUsecase(nil)
	seen := map[string]string{}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			pe := permissionOf(t, uc.CheckPermission(context.Background(), c.wallet, c.owner))
			if pe.Reason != c.reason || pe.Scope != c.scope {
				t.Fatalf("want %s/%s got %s/%s", c.reason, c.scope, pe.Reason, pe.Scope)
			}
			if prev, ok := seen[pe.Error()]; ok && prev != string(c.reason)+c.scope {
				t.Fatalf("message %q reused for different reasons", pe.Error())
			}
			seen[pe.Error()] = string(c.reason) + c.scope
		})
	}
}

func TestCheckPermissionAllowed(t *testing.T) {
	wallet := &mockWallet{scopes: allScopes, address: "addr-owner"}
	uc := NewEditUsecase(nil)
	if err := uc.CheckPermission(context.Background(), wallet, "addr-owner"); err != nil {
		t.Fatalf("expected permission, got %v", err)
	}
	if err := uc.CheckPermission(context.Background(), wallet, "addr-owner"); err != nil {
		t.Fatalf("expected permission, got %v", err)
	}
	if wallet.addrRead != 2 {
		t.Fatalf("address must be read fresh on every check, read %d times", wallet.addrRead)
	}
}

func TestRepublish(t *testing.T) {
	signer := newSigner(t)
	storage := newMockStorage("gw1")
	publish := NewPublishUsecase(storage, newMockCache(), nil, nil, nil, nil)
	uc := NewEditUsecase(publish)

	record := rebento.PublishedVersion{ContentAddress: "tx-old", Owner: signer.Address(), Username: "alice", Version: 1}
	wallet := &mockWallet{scopes: allScopes, address: signer.Address()}

	result, err := uc.Republish(context.Background(), wallet, record, "<html>v2</html>", signer)
	if err != nil {
		t.Fatalf("republish failed: %v", err)
	}
	if result.Username != "alice" || result.Version <= record.Version {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestRepublishRejectsForeignSigner(t *testing.T) {
	owner := newSigner(t)
	other := newSigner(t)
	storage := newMockStorage("gw1")
	uc := NewEditUsecase(NewPublishUsecase(storage, newMockCache(), nil, nil, nil, nil))

	record := rebento.PublishedVersion{Owner: owner.Address(), Username: "alice"}
	wallet := &mockWallet{scopes: allScopes, address: owner.Address()}

	_, err := uc.Republish(context.Background(), wallet, record, "<html></html>", other)
	if pe := permissionOf(t, err); pe.Reason != domain.PermissionAddressMismatch {
		t.Fatalf("expected address mismatch, got %s", pe.Reason)
	}
	if len(storage.uploaded) != 0 {
		t.Fatalf("nothing should be uploaded")
	}
}
