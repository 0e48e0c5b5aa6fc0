package usecase

import (
	"context"
	"slices"

	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/internal/domain"
)

type EditUsecase struct {
	publish *PublishUsecase
}

func NewEditUsecase(publish *PublishUsecase) *EditUsecase {
	return &EditUsecase{publish: publish}
}

// CheckPermission decides whether wallet may republish a profile owned by
// owner. Nothing is cached between calls.
func (uc *EditUsecase) CheckPermission(ctx context.Context, wallet Wallet, owner string) error {
	ctx, span := tracer.Start(ctx, "Usecase.CheckPermission")
	defer span.End()

	err := checkPermission(ctx, wallet, owner)
	if err != nil {
		span.SetAttributes(attribute.String("denied", err.Error()))
	}
	return err
}

func checkPermission(ctx context.Context, wallet Wallet, owner string) error {
	if wallet == nil {
		return &domain.PermissionError{Reason: domain.PermissionNoWallet}
	}
	if owner == "" {
		return &domain.PermissionError{Reason: domain.PermissionNoOwner}
	}

	granted, err := wallet.Permissions(ctx)
	if err != nil {
		return &domain.PermissionError{Reason: domain.PermissionMissingPermission, Scope: domain.RequiredScopes[0]}
	}
	for _, scope := range domain.RequiredScopes {
		if !slices.Contains(granted, scope) {
			return &domain.PermissionError{Reason: domain.PermissionMissingPermission, Scope: scope}
		}
	}

	address, err := wallet.ActiveAddress(ctx)
	if err != nil || address == "" {
		return &domain.PermissionError{Reason: domain.PermissionNotAuthenticated}
	}
	if !rebento.IsOwner(address, owner) {
		return &domain.PermissionError{Reason: domain.PermissionAddressMismatch}
	}
	return nil
}

// Republish publishes a new version of an existing profile after checking
// the viewer's wallet and that signer is the recorded owner.
func (uc *EditUsecase) Republish(ctx context.Context, wallet Wallet, record rebento.PublishedVersion, document string, signer rebento.Signer) (PublishResult, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Republish")
	defer span.End()

	if err := uc.CheckPermission(ctx, wallet, record.Owner); err != nil {
		return PublishResult{}, err
	}
	if signer == nil || !rebento.IsOwner(signer.Address(), record.Owner) {
		return PublishResult{}, &domain.PermissionError{Reason: domain.PermissionAddressMismatch}
	}

	return uc.publish.Publish(ctx, PublishInput{
		Document: document,
		Username: record.Username,
	}, signer)
}
