package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/internal/domain"
)

func newSigner(t *testing.T) *rebento.KeySigner {
	t.Helper()
	s, err := rebento.GenerateKeySigner()
	if err != nil {
		t.Fatalf("keygen failed: %v", err)
	}
	return s
}

func fixedClock(ms int64) *VersionClock {
	return NewVersionClock(func() time.Time { return time.UnixMilli(ms) })
}

func reasonOf(t *testing.T, err error) domain.PublishReason {
	t.Helper()
	var pe *domain.PublishError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *domain.PublishError, got %v", err)
	}
	return pe.Reason
}

func TestPublishUnderBudget(t *testing.T) {
	storage := newMockStorage("gw1")
	cache := newMockCache()
	versions := &mockVersions{}
	signals := &mockSignals{}
	signer := newSigner(t)
	uc := NewPublishUsecase(storage, cache, versions, signals, fixedClock(1700000000000), nil)

	doc := "<html>" + strings.Repeat("a", 50*1024) + "</html>"
	result, err := uc.Publish(context.Background(), PublishInput{Document: doc, Username: "@Alice"}, signer)
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if result.ContentAddress != "tx-new" || result.Username != "alice" || result.Version != 1700000000000 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.URL != "https://gw.test/tx-new" || !result.Cached {
		t.Fatalf("unexpected result %+v", result)
	}

	if len(storage.uploaded) != 1 {
		t.Fatalf("expected one upload")
	}
	item, err := rebento.VerifyDataItem(storage.uploaded[0])
	if err != nil {
		t.Fatalf("uploaded item does not verify: %v", err)
	}
	if string(item.Data) != doc {
		t.Fatalf("uploaded data differs")
	}
	if item.OwnerAddress() != signer.Address() || item.Target != "" {
		t.Fatalf("unexpected owner %s or target %q", item.OwnerAddress(), item.Target)
	}
	want := map[string]string{
		"Content-Type": "text/html",
		"App-Name":     "rebento",
		"Type":         "profile-page",
		"Username":     "alice",
		"Version":      "1700000000000",
		"Owner":        signer.Address(),
	}
	for name, value := range want {
		if got, ok := rebento.TagValue(item.Tags, name); !ok || got != value {
			t.Errorf("tag %s: want %q got %q", name, value, got)
		}
	}

	if len(cache.sets) != 1 || cache.sets[0].Version != result.Version || cache.sets[0].ContentAddress != "tx-new" || cache.sets[0].Owner != signer.Address() {
		t.Fatalf("unexpected cache writes %+v", cache.sets)
	}
	if len(versions.appended) != 1 || versions.appended[0].ContentAddress != "tx-new" {
		t.Fatalf("expected publish log entry")
	}
	if len(signals.events) != 1 {
		t.Fatalf("expected publish signal")
	}
}

func TestPublishOversized(t *testing.T) {
	storage := newMockStorage("gw1")
	uc := NewPublishUsecase(storage, newMockCache(), nil, nil, nil, nil)

	doc := strings.Repeat("a", 150*1024)
	_, err := uc.Publish(context.Background(), PublishInput{Document: doc, Username: "alice"}, newSigner(t))
	if reasonOf(t, err) != domain.PublishOversized {
		t.Fatalf("expected oversized, got %v", err)
	}
	if !errors.Is(err, &domain.PublishError{Reason: domain.PublishOversized}) {
		t.Fatalf("errors.Is should match the oversized reason")
	}
	if len(storage.uploaded) != 0 {
		t.Fatalf("oversized documents must not be uploaded")
	}
}

func TestPublishAtExactLimit(t *testing.T) {
	uc := NewPublishUsecase(newMockStorage("gw1"), newMockCache(), nil, nil, nil, nil)
	doc := strings.Repeat("a", rebento.MaxArtifactSize)
	if _, err := uc.Publish(context.Background(), PublishInput{Document: doc, Username: "alice"}, newSigner(t)); err != nil {
		t.Fatalf("document at the limit should publish: %v", err)
	}
}

func TestPublishFailures(t *testing.T) {
	cases := []struct {
		name   string
		setup  func(*mockStorage)
		signer rebento.Signer
		want   domain.PublishReason
	}{
		{"no signer", nil, nil, domain.PublishUnauthenticated},
		{"empty address", nil, failingSigner{}, domain.PublishUnauthenticated},
		{"signing", nil, failingSigner{address: "addr-x"}, domain.PublishSigning},
		{"transport", func(m *mockStorage) { m.uploadErr = errors.New("connection refused") }, nil, domain.PublishTransport},
		{"rejected", func(m *mockStorage) { m.receipt = domain.UploadReceipt{StatusCode: 402} }, nil, domain.PublishRejected},
		{"missing id", func(m *mockStorage) { m.receipt = domain.UploadReceipt{StatusCode: 200} }, nil, domain.PublishMissingID},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			storage := newMockStorage("gw1")
			if c.setup != nil {
				c.setup(storage)
			}
			signer := c.signer
			if signer == nil && c.want != domain.PublishUnauthenticated {
				signer = newSigner(t)
			}
			cache := newMockCache()
			uc := NewPublishUsecase(storage, cache, nil, nil, nil, nil)

			_, err := uc.Publish(context.Background(), PublishInput{Document: "<html></html>", Username: "alice"}, signer)
			if got := reasonOf(t, err); got != c.want {
				t.Fatalf("want %s got %s (%v)", c.want, got, err)
			}
			if len(cache.sets) != 0 {
				t.Fatalf("cache must not be written after a failed publish")
			}
		})
	}
}

func TestPublishSucceedsWhenCacheFails(t *testing.T) {
	cache := newMockCache()
	cache.setOK = false
	versions := &mockVersions{err: errors.New("db down")}
	uc := NewPublishUsecase(newMockStorage("gw1"), cache, versions, nil, nil, nil)

	result, err := uc.Publish(context.Background(), PublishInput{Document: "<html></html>", Username: "alice"}, newSigner(t))
	if err != nil {
		t.Fatalf("publish should succeed: %v", err)
	}
	if result.Cached {
		t.Fatalf("expected cached=false")
	}
}

func TestVersionClockIsMonotonic(t *testing.T) {
	clock := fixedClock(1000)
	a, b, c := clock.Next(), clock.Next(), clock.Next()
	if !(a == 1000 && b == 1001 && c == 1002) {
		t.Fatalf("expected strictly increasing versions, got %d %d %d", a, b, c)
	}
}
