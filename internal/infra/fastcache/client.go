package fastcache

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/client"
)

var tracer = otel.Tracer("fastcache")

const (
	DefaultBaseURL   = "https://push.forward.computer"
	DefaultProcessID = "wwFVJeGWw4vH-1mrzzl_rdR2vpKr36N_yD1pEJBaTIk"

	defaultTimeout = 8 * time.Second
	missMarker     = "MISS"
)

// Client reads and writes the shared username index kept by one message
// driven process. Every failure is reported as a miss or a failed set; the
// client never returns errors to its callers.
type Client struct {
	client    *client.Client
	baseURL   string
	processID string
	timeout   time.Duration
	logger    *slog.Logger

	newSigner func() (rebento.Signer, error)
	group     singleflight.Group
	mu        sync.Mutex
	reader    rebento.Signer
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSignerFactory replaces how the throwaway read identity is created.
func WithSignerFactory(f func() (rebento.Signer, error)) Option {
	return func(c *Client) {
		c.newSigner = f
	}
}

func New(cl *client.Client, baseURL, processID string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if processID == "" {
		processID = DefaultProcessID
	}
	c := &Client{
		client:    cl,
		baseURL:   strings.TrimRight(baseURL, "/"),
		processID: processID,
		timeout:   defaultTimeout,
		logger:    slog.Default(),
		newSigner: func() (rebento.Signer, error) {
			return rebento.GenerateKeySigner()
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func messageTags(action string, extra ...rebento.Tag) []rebento.Tag {
	tags := append([]rebento.Tag{{Name: "Action", Value: action}}, extra...)
	return append(tags,
		rebento.Tag{Name: "Type", Value: "Message"},
		rebento.Tag{Name: "Data-Protocol", Value: "ao"},
		rebento.Tag{Name: "Variant", Value: "ao.N.1"},
	)
}

// Set records username -> content address, signed by the publishing identity.
func (c *Client) Set(ctx context.Context, entry rebento.CacheEntry, signer rebento.Signer) bool {
	ctx, span := tracer.Start(ctx, "FastCache.Set")
	defer span.End()

	if signer == nil {
		return false
	}
	username := rebento.NormalizeUsername(entry.Username)
	owner := entry.Owner
	if owner == "" {
		owner = signer.Address()
	}
	span.SetAttributes(attribute.String("username", username))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	status, _, err := c.push(ctx, signer, messageTags("Cacheset",
		rebento.Tag{Name: "Username", Value: username},
		rebento.Tag{Name: "Txid", Value: entry.ContentAddress},
		rebento.Tag{Name: "Owner", Value: owner},
		rebento.Tag{Name: "Version", Value: strconv.FormatInt(entry.Version, 10)},
	))
	if err != nil {
		span.RecordError(errors.Wrap(err, "cache set push failed"))
		c.logger.WarnContext(ctx, "cache set failed", slog.String("username", username), slog.String("error", err.Error()))
		return false
	}
	if status != http.StatusOK {
		c.logger.WarnContext(ctx, "cache set unexpected status", slog.String("username", username), slog.Int("status", status))
		return false
	}

	c.logger.DebugContext(ctx, "cached", slog.String("username", username), slog.String("txId", entry.ContentAddress))
	return true
}

// Get looks a username up. ok is false on a miss or on any failure.
func (c *Client) Get(ctx context.Context, username string) (rebento.CacheEntry, bool) {
	ctx, span := tracer.Start(ctx, "FastCache.Get")
	defer span.End()

	username = rebento.NormalizeUsername(username)
	span.SetAttributes(attribute.String("username", username))

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	signer, err := c.readSigner(ctx)
	if err != nil {
		span.RecordError(errors.Wrap(err, "read identity unavailable"))
		return rebento.CacheEntry{}, false
	}

	status, slot, err := c.push(ctx, signer, messageTags("Cacheget",
		rebento.Tag{Name: "Username", Value: username},
	))
	if err != nil || status != http.StatusOK || slot == "" {
		if err != nil {
			span.RecordError(errors.Wrap(err, "cache get push failed"))
		}
		return rebento.CacheEntry{}, false
	}

	msg, err := c.readOutbox(ctx, slot)
	if err != nil {
		c.logger.DebugContext(ctx, "cache read failed", slog.String("username", username), slog.String("error", err.Error()))
		return rebento.CacheEntry{}, false
	}

	data, _ := msg["Data"].(string)
	txid, _ := stringField(msg, "Txid")
	if data == missMarker || txid == "" {
		span.SetAttributes(attribute.Bool("hit", false))
		return rebento.CacheEntry{}, false
	}

	owner, _ := stringField(msg, "Owner")
	version, _ := stringField(msg, "Version")
	span.SetAttributes(attribute.Bool("hit", true))
	return rebento.CacheEntry{
		Username:       username,
		ContentAddress: txid,
		Owner:          owner,
		Version:        rebento.ParseVersion(version),
	}, true
}

// Warmup creates the read identity ahead of the first lookup.
func (c *Client) Warmup(ctx context.Context) error {
	_, err := c.readSigner(ctx)
	return err
}

// readSigner returns the throwaway identity used for reads, generating it
// at most once. A failed generation is not remembered.
func (c *Client) readSigner(ctx context.Context) (rebento.Signer, error) {
	c.mu.Lock()
	reader := c.reader
	c.mu.Unlock()
	if reader != nil {
		return reader, nil
	}

	ch := c.group.DoChan("reader", func() (any, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.reader != nil {
			return c.reader, nil
		}
		signer, err := c.newSigner()
		if err != nil {
			return nil, err
		}
		c.reader = signer
		return signer, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(rebento.Signer), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// newAnchor gives every message a distinct id even when its tags repeat.
func newAnchor() []byte {
	return []byte(strings.ReplaceAll(uuid.NewString(), "-", ""))
}

func (c *Client) push(ctx context.Context, signer rebento.Signer, tags []rebento.Tag) (int, string, error) {
	body, err := rebento.SignDataItem(ctx, signer, rebento.DataItem{
		Target: c.processID,
		Anchor: newAnchor(),
		Tags:   tags,
	})
	if err != nil {
		return 0, "", err
	}

	header := http.Header{}
	header.Set("Content-Type", "application/ans104")
	header.Set("codec-device", "ans104@1.0")
	resp, err := c.client.Do(ctx, http.MethodPost, c.baseURL+"/"+c.processID+"~process@1.0/push", body, header)
	if err != nil {
		return 0, "", err
	}
	return resp.StatusCode, resp.Header.Get("slot"), nil
}
