package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/internal/domain"
)

const draftKeyPrefix = "rebento:draft:"

// draftStore is the part of the redis client drafts need.
type draftStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// DraftRepository keeps one JSON snapshot per owner in redis.
type DraftRepository struct {
	rdb draftStore
}

func NewDraftRepository(rdb *redis.Client) *DraftRepository {
	return &DraftRepository{rdb: rdb}
}

func (r *DraftRepository) Get(ctx context.Context, owner string) (*rebento.Draft, error) {
	raw, err := r.rdb.Get(ctx, draftKeyPrefix+owner).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.NotFoundError{Username: owner}
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load draft")
	}

	var draft rebento.Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, errors.Wrap(err, "stored draft is corrupt")
	}
	return &draft, nil
}

func (r *DraftRepository) Put(ctx context.Context, owner string, draft *rebento.Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, draftKeyPrefix+owner, raw, 0).Err()
}
