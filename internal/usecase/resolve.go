package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/internal/domain"
	"github.com/totegamma/rebento/internal/utils"
)

const defaultGatewayTimeout = 8 * time.Second

type ResolveInput struct {
	Username string
	// Viewer is the authenticated address of whoever is looking, if any.
	Viewer string
}

type Resolved struct {
	Document       string        `json:"-"`
	ContentAddress string        `json:"txId"`
	Owner          string        `json:"owner"`
	Username       string        `json:"username"`
	Version        int64         `json:"version"`
	Source         domain.Source `json:"source"`
	IsOwner        bool          `json:"isOwner"`
}

type ResolveUsecase struct {
	storage StorageGateway
	cache   FastCache
	timeout time.Duration
	logger  *slog.Logger
}

func NewResolveUsecase(storage StorageGateway, cache FastCache, timeout time.Duration, logger *slog.Logger) *ResolveUsecase {
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResolveUsecase{
		storage: storage,
		cache:   cache,
		timeout: timeout,
		logger:  logger,
	}
}

// Resolve maps a username to the document of its latest version. The fast
// cache is tried first; on a miss or an unfetchable body the gateways'
// tag indexes decide.
func (uc *ResolveUsecase) Resolve(ctx context.Context, input ResolveInput) (Resolved, error) {
	ctx, span := tracer.Start(ctx, "Usecase.Resolve")
	defer span.End()

	username := rebento.NormalizeUsername(input.Username)
	span.SetAttributes(attribute.String("username", username))

	if entry, ok := uc.cache.Get(ctx, username); ok {
		body, err := uc.storage.FetchBody(ctx, entry.ContentAddress)
		if err == nil {
			span.SetAttributes(attribute.String("source", string(domain.SourceCache)))
			return uc.resolved(input, username, body, rebento.PublishedVersion{
				ContentAddress: entry.ContentAddress,
				Owner:          entry.Owner,
				Version:        entry.Version,
			}, domain.SourceCache), nil
		}
		uc.logger.DebugContext(ctx, "cached address not served, falling back",
			slog.String("username", username),
			slog.String("txId", entry.ContentAddress),
		)
	}

	candidates := uc.Candidates(ctx, username)
	if err := ctx.Err(); err != nil {
		return Resolved{}, err
	}

	best, ok := PickLatest(candidates)
	if !ok {
		return Resolved{}, domain.NotFoundError{Reason: domain.NotFoundNoRecord, Username: username}
	}

	body, err := uc.storage.FetchBody(ctx, best.ContentAddress)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Resolved{}, ctxErr
		}
		span.RecordError(errors.Wrap(err, "no gateway served the body"))
		return Resolved{}, domain.NotFoundError{Reason: domain.NotFoundUnreachable, Username: username}
	}

	span.SetAttributes(attribute.String("source", string(domain.SourceAuthoritative)))
	return uc.resolved(input, username, body, best, domain.SourceAuthoritative), nil
}

func (uc *ResolveUsecase) resolved(input ResolveInput, username, body string, v rebento.PublishedVersion, source domain.Source) Resolved {
	return Resolved{
		Document:       body,
		ContentAddress: v.ContentAddress,
		Owner:          v.Owner,
		Username:       username,
		Version:        v.Version,
		Source:         source,
		IsOwner:        rebento.IsOwner(input.Viewer, v.Owner),
	}
}

// Candidates queries every gateway concurrently and merges their records,
// deduplicated by content address in first-seen order: gateway priority
// first, then each gateway's result order. Failing gateways contribute
// nothing.
func (uc *ResolveUsecase) Candidates(ctx context.Context, username string) []rebento.PublishedVersion {
	ctx, span := tracer.Start(ctx, "Usecase.Candidates")
	defer span.End()

	gateways := uc.storage.Gateways()
	results := make([][]rebento.PublishedVersion, len(gateways))

	var g errgroup.Group
	for i, gw := range gateways {
		g.Go(func() error {
			gctx, cancel := context.WithTimeout(ctx, uc.timeout)
			defer cancel()

			records, err := uc.storage.Query(gctx, gw, username)
			if err != nil {
				uc.logger.DebugContext(ctx, "gateway query failed", slog.String("gateway", gw), slog.String("error", err.Error()))
				return nil
			}
			results[i] = records
			return nil
		})
	}
	_ = g.Wait()

	merged := utils.OrderedKVMap[rebento.PublishedVersion]{}
	for _, records := range results {
		for _, r := range records {
			if r.ContentAddress == "" {
				continue
			}
			merged.SetIfAbsent(r.ContentAddress, r)
		}
	}
	span.SetAttributes(attribute.Int("candidates", len(merged)))
	return merged.Values()
}

// PickLatest returns the record with the highest version. Ties go to the
// earliest record.
func PickLatest(records []rebento.PublishedVersion) (rebento.PublishedVersion, bool) {
	if len(records) == 0 {
		return rebento.PublishedVersion{}, false
	}
	best := records[0]
	for _, r := range records[1:] {
		if r.Version > best.Version {
			best = r
		}
	}
	return best, true
}
