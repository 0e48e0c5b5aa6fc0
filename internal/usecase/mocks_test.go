package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/internal/compiler"
	"github.com/totegamma/rebento/internal/domain"
)

type queryResult struct {
	records []rebento.PublishedVersion
	err     error
	delay   time.Duration
}

type mockStorage struct {
	mu sync.Mutex

	gateways []string
	queries  map[string]queryResult
	bodies   map[string]string

	receipt   domain.UploadReceipt
	uploadErr error
	uploaded  [][]byte
	queried   []string
	fetched   []string
}

func newMockStorage(gateways ...string) *mockStorage {
	return &mockStorage{
		gateways: gateways,
		queries:  map[string]queryResult{},
		bodies:   map[string]string{},
		receipt:  domain.UploadReceipt{StatusCode: 200, ID: "tx-new"},
	}
}

func (m *mockStorage) Gateways() []string { return m.gateways }

func (m *mockStorage) URL(id string) string { return "https://gw.test/" + id }

func (m *mockStorage) Upload(ctx context.Context, item []byte) (domain.UploadReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploaded = append(m.uploaded, item)
	if m.uploadErr != nil {
		return domain.UploadReceipt{}, m.uploadErr
	}
	return m.receipt, nil
}

func (m *mockStorage) Query(ctx context.Context, gateway, username string) ([]rebento.PublishedVersion, error) {
	m.mu.Lock()
	m.queried = append(m.queried, gateway)
	res, ok := m.queries[gateway]
	m.mu.Unlock()

	if res.delay > 0 {
		select {
		case <-time.After(res.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, nil
	}
	return res.records, res.err
}

func (m *mockStorage) FetchBody(ctx context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, id)
	body, ok := m.bodies[id]
	if !ok {
		return "", errors.New("not served")
	}
	return body, nil
}

type mockCache struct {
	mu      sync.Mutex
	entries map[string]rebento.CacheEntry
	setOK   bool
	sets    []rebento.CacheEntry
	gets    int
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string]rebento.CacheEntry{}, setOK: true}
}

func (m *mockCache) Set(ctx context.Context, entry rebento.CacheEntry, signer rebento.Signer) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets = append(m.sets, entry)
	if m.setOK {
		m.entries[entry.Username] = entry
	}
	return m.setOK
}

func (m *mockCache) Get(ctx context.Context, username string) (rebento.CacheEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	e, ok := m.entries[username]
	return e, ok
}

type mockVersions struct {
	appended []rebento.PublishedVersion
	err      error
}

func (m *mockVersions) Append(ctx context.Context, v rebento.PublishedVersion) error {
	m.appended = append(m.appended, v)
	return m.err
}

func (m *mockVersions) List(ctx context.Context, username string, limit int) ([]rebento.PublishedVersion, error) {
	return m.appended, nil
}

type mockSignals struct {
	events []any
}

func (m *mockSignals) Publish(ctx context.Context, channel string, event any) error {
	m.events = append(m.events, event)
	return nil
}

type mockWallet struct {
	scopes   []string
	address  string
	permErr  error
	addrErr  error
	addrRead int
}

func (m *mockWallet) Permissions(ctx context.Context) ([]string, error) {
	return m.scopes, m.permErr
}

func (m *mockWallet) ActiveAddress(ctx context.Context) (string, error) {
	m.addrRead++
	return m.address, m.addrErr
}

type failingSigner struct {
	address string
}

func (f failingSigner) Address() string { return f.address }

func (f failingSigner) PublicKey() []byte { return make([]byte, 65) }

func (f failingSigner) Sign(ctx context.Context, payload []byte) ([]byte, error) {
	return nil, errors.New("device disconnected")
}

type mockCompiler struct {
	artifact compiler.Artifact
	calls    int
}

func (m *mockCompiler) Compile(ctx context.Context, profile rebento.Profile, blocks []rebento.Block, theme rebento.Theme) (compiler.Artifact, error) {
	m.calls++
	return m.artifact, nil
}

type mockDraftRepo struct {
	drafts map[string]*rebento.Draft
}

func (m *mockDraftRepo) Get(ctx context.Context, owner string) (*rebento.Draft, error) {
	d, ok := m.drafts[owner]
	if !ok {
		return nil, domain.NotFoundError{Username: owner}
	}
	return d, nil
}

func (m *mockDraftRepo) Put(ctx context.Context, owner string, d *rebento.Draft) error {
	m.drafts[owner] = d
	return nil
}
