package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/internal/domain"
)

var tracer = otel.Tracer("usecase")

// VersionClock hands out millisecond versions that strictly increase
// within the process, even when two publishes share a millisecond.
type VersionClock struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewVersionClock(now func() time.Time) *VersionClock {
	if now == nil {
		now = time.Now
	}
	return &VersionClock{now: now}
}

func (c *VersionClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.now().UnixMilli()
	if v <= c.last {
		v = c.last + 1
	}
	c.last = v
	return v
}

type PublishInput struct {
	Document string
	Username string
}

type PublishResult struct {
	ContentAddress string `json:"txId"`
	Username       string `json:"username"`
	Owner          string `json:"owner"`
	Version        int64  `json:"version"`
	URL            string `json:"url"`
	Cached         bool   `json:"cached"`
}

type PublishUsecase struct {
	storage  StorageGateway
	cache    FastCache
	versions VersionRepository
	signals  SignalPublisher
	clock    *VersionClock
	logger   *slog.Logger
}

// NewPublishUsecase wires the publish pipeline. versions and signals may be nil.
func NewPublishUsecase(
	storage StorageGateway,
	cache FastCache,
	versions VersionRepository,
	signals SignalPublisher,
	clock *VersionClock,
	logger *slog.Logger,
) *PublishUsecase {
	if clock == nil {
		clock = NewVersionClock(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishUsecase{
		storage:  storage,
		cache:    cache,
		versions: versions,
		signals:  signals,
		clock:    clock,
		logger:   logger,
	}
}

// Publish uploads a compiled document under username, signed by signer.
// Every failure is a *domain.PublishError. The cache write, the local log
// and the event are best effort and never fail a publish.
func (uc *PublishUsecase) Publish(ctx context.Context, input PublishInput, signer rebento.Signer) (PublishResult, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Publish")
	defer span.End()

	size := len(input.Document)
	span.SetAttributes(attribute.Int("sizeBytes", size))
	if size > rebento.MaxArtifactSize {
		return PublishResult{}, &domain.PublishError{Reason: domain.PublishOversized, Size: size, Limit: rebento.MaxArtifactSize}
	}

	if signer == nil || signer.Address() == "" {
		return PublishResult{}, &domain.PublishError{Reason: domain.PublishUnauthenticated}
	}
	owner := signer.Address()

	username := rebento.NormalizeUsername(input.Username)
	version := uc.clock.Next()
	span.SetAttributes(attribute.String("username", username), attribute.Int64("version", version))

	item, err := rebento.SignDataItem(ctx, signer, rebento.DataItem{
		Data: []byte(input.Document),
		Tags: rebento.PublishTags(username, strconv.FormatInt(version, 10), owner),
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "sign failed"))
		return PublishResult{}, &domain.PublishError{Reason: domain.PublishSigning, Err: err}
	}

	receipt, err := uc.storage.Upload(ctx, item)
	if err != nil {
		span.RecordError(errors.Wrap(err, "upload failed"))
		return PublishResult{}, &domain.PublishError{Reason: domain.PublishTransport, Err: err}
	}
	if !receipt.Accepted() {
		return PublishResult{}, &domain.PublishError{Reason: domain.PublishRejected, Status: receipt.StatusCode}
	}
	if receipt.ID == "" {
		return PublishResult{}, &domain.PublishError{Reason: domain.PublishMissingID, Status: receipt.StatusCode}
	}

	result := PublishResult{
		ContentAddress: receipt.ID,
		Username:       username,
		Owner:          owner,
		Version:        version,
		URL:            uc.storage.URL(receipt.ID),
	}

	result.Cached = uc.cache.Set(ctx, rebento.CacheEntry{
		Username:       username,
		ContentAddress: receipt.ID,
		Owner:          owner,
		Version:        version,
	}, signer)
	if !result.Cached {
		uc.logger.WarnContext(ctx, "published but cache update failed", slog.String("username", username), slog.String("txId", receipt.ID))
	}

	uc.record(ctx, result)

	uc.logger.InfoContext(ctx, "published",
		slog.String("username", username),
		slog.String("txId", result.ContentAddress),
		slog.Int64("version", version),
		slog.Int("sizeBytes", size),
	)
	return result, nil
}

func (uc *PublishUsecase) record(ctx context.Context, result PublishResult) {
	if uc.versions != nil {
		err := uc.versions.Append(ctx, rebento.PublishedVersion{
			ContentAddress: result.ContentAddress,
			Owner:          result.Owner,
			Username:       result.Username,
			Version:        result.Version,
		})
		if err != nil {
			uc.logger.WarnContext(ctx, "failed to append publish log", slog.String("error", err.Error()))
		}
	}

	if uc.signals != nil {
		err := uc.signals.Publish(ctx, domain.SignalProfilePublished, domain.PublishEvent{
			Type:           domain.SignalProfilePublished,
			Username:       result.Username,
			ContentAddress: result.ContentAddress,
			Owner:          result.Owner,
			Version:        result.Version,
			URL:            result.URL,
		})
		if err != nil {
			uc.logger.WarnContext(ctx, "failed to emit publish signal", slog.String("error", err.Error()))
		}
	}
}
