package usecase

import (
	"context"
	"errors"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/internal/compiler"
	"github.com/totegamma/rebento/internal/domain"
)

type DraftUsecase struct {
	repo     DraftRepository
	compiler ArtifactCompiler
	publish  *PublishUsecase
}

func NewDraftUsecase(repo DraftRepository, comp ArtifactCompiler, publish *PublishUsecase) *DraftUsecase {
	return &DraftUsecase{
		repo:     repo,
		compiler: comp,
		publish:  publish,
	}
}

// Get returns the stored draft, or a fresh one if the owner has none yet.
func (uc *DraftUsecase) Get(ctx context.Context, owner string) (*rebento.Draft, error) {
	draft, err := uc.repo.Get(ctx, owner)
	if errors.Is(err, domain.ErrNotFound) {
		return rebento.NewDraft(rebento.Profile{}), nil
	}
	return draft, err
}

func (uc *DraftUsecase) Put(ctx context.Context, owner string, draft *rebento.Draft) error {
	if err := draft.Validate(); err != nil {
		return err
	}
	return uc.repo.Put(ctx, owner, draft)
}

// Update loads the draft, applies fn and stores the result if fn succeeds.
func (uc *DraftUsecase) Update(ctx context.Context, owner string, fn func(*rebento.Draft) error) (*rebento.Draft, error) {
	draft, err := uc.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := fn(draft); err != nil {
		return nil, err
	}
	if err := uc.Put(ctx, owner, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (uc *DraftUsecase) Compile(ctx context.Context, owner string) (compiler.Artifact, error) {
	draft, err := uc.Get(ctx, owner)
	if err != nil {
		return compiler.Artifact{}, err
	}
	return uc.compiler.Compile(ctx, draft.Profile, draft.Blocks, draft.Theme)
}

// Publish compiles the owner's draft and publishes it. An artifact that
// could not be brought under budget fails as oversized.
func (uc *DraftUsecase) Publish(ctx context.Context, owner, username string, signer rebento.Signer) (compiler.Artifact, PublishResult, error) {
	art, err := uc.Compile(ctx, owner)
	if err != nil {
		return compiler.Artifact{}, PublishResult{}, err
	}
	result, err := uc.publish.Publish(ctx, PublishInput{Document: art.Document, Username: username}, signer)
	return art, result, err
}
