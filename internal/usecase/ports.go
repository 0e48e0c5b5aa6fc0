package usecase

import (
	"context"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/internal/compiler"
	"github.com/totegamma/rebento/internal/domain"
)

// StorageGateway encapsulates the permanent storage network.
type StorageGateway interface {
	Gateways() []string
	URL(contentAddress string) string
	Upload(ctx context.Context, item []byte) (domain.UploadReceipt, error)
	Query(ctx context.Context, gateway, username string) ([]rebento.PublishedVersion, error)
	FetchBody(ctx context.Context, contentAddress string) (string, error)
}

// FastCache is the eventually consistent username index. It never fails,
// it only misses.
type FastCache interface {
	Set(ctx context.Context, entry rebento.CacheEntry, signer rebento.Signer) bool
	Get(ctx context.Context, username string) (rebento.CacheEntry, bool)
}

// VersionRepository is the local log of publishes made through this instance.
type VersionRepository interface {
	Append(ctx context.Context, v rebento.PublishedVersion) error
	List(ctx context.Context, username string, limit int) ([]rebento.PublishedVersion, error)
}

// DraftRepository persists editor state per owner.
type DraftRepository interface {
	Get(ctx context.Context, owner string) (*rebento.Draft, error)
	Put(ctx context.Context, owner string, draft *rebento.Draft) error
}

type SignalPublisher interface {
	Publish(ctx context.Context, channel string, event any) error
}

type ArtifactCompiler interface {
	Compile(ctx context.Context, profile rebento.Profile, blocks []rebento.Block, theme rebento.Theme) (compiler.Artifact, error)
}

// Wallet is the viewer's connected signing identity. Both methods are
// consulted fresh on every permission check.
type Wallet interface {
	Permissions(ctx context.Context) ([]string, error)
	ActiveAddress(ctx context.Context) (string, error)
}
