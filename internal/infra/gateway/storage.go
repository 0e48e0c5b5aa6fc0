package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/client"
	"github.com/totegamma/rebento/internal/domain"
)

var tracer = otel.Tracer("gateway")

var DefaultGateways = []string{
	"https://arweave.net",
	"https://arweave.developerdao.com",
	"https://g8way.io",
}

const (
	defaultQueryLimit = 5
	defaultTimeout    = 8 * time.Second
)

var ErrBodyUnavailable = errors.New("no gateway served the document")

// StorageGateway talks to the permanent storage network: the bundler for
// uploads and the gateways for tag queries and bodies.
type StorageGateway struct {
	client     *client.Client
	gateways   []string
	ingest     string
	bodies     *BodyCache
	queryLimit int
	timeout    time.Duration
	logger     *slog.Logger
}

type Option func(*StorageGateway)

func WithQueryLimit(n int) Option {
	return func(g *StorageGateway) {
		if n > 0 {
			g.queryLimit = n
		}
	}
}

// WithTimeout bounds each individual gateway call.
func WithTimeout(d time.Duration) Option {
	return func(g *StorageGateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithBodyCache(bodies *BodyCache) Option {
	return func(g *StorageGateway) {
		g.bodies = bodies
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *StorageGateway) {
		g.logger = logger
	}
}

func NewStorageGateway(cl *client.Client, gateways []string, ingest string, opts ...Option) *StorageGateway {
	if len(gateways) == 0 {
		gateways = DefaultGateways
	}
	g := &StorageGateway{
		client:     cl,
		gateways:   trimAll(gateways),
		ingest:     ingest,
		queryLimit: defaultQueryLimit,
		timeout:    defaultTimeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func trimAll(urls []string) []string {
	out := make([]string, len(urls))
	for i, u := range urls {
		out[i] = strings.TrimRight(u, "/")
	}
	return out
}

// Gateways returns the gateway base URLs in priority order.
func (g *StorageGateway) Gateways() []string {
	return g.gateways
}

// URL is the public location of a document on the first gateway.
func (g *StorageGateway) URL(contentAddress string) string {
	return g.gateways[0] + "/" + contentAddress
}

type uploadResponse struct {
	BundlerID string `json:"bundlerId"`
	ID        string `json:"id"`
	TxID      string `json:"txId"`
}

// Upload posts a binary data item to the ingestion endpoint. A returned
// error means the endpoint could not be reached; rejections come back as a
// receipt with a non-2xx status.
func (g *StorageGateway) Upload(ctx context.Context, item []byte) (domain.UploadReceipt, error) {
	ctx, span := tracer.Start(ctx, "Gateway.Upload")
	defer span.End()
	span.SetAttributes(attribute.Int("sizeBytes", len(item)))

	header := http.Header{}
	header.Set("Content-Type", "application/octet-stream")
	header.Set("Accept", "application/json")
	resp, err := g.client.Do(ctx, http.MethodPost, g.ingest, item, header)
	if err != nil {
		span.RecordError(errors.Wrap(err, "upload failed"))
		return domain.UploadReceipt{}, err
	}
	span.SetAttributes(attribute.Int("status", resp.StatusCode))

	receipt := domain.UploadReceipt{StatusCode: resp.StatusCode}
	if !resp.OK() {
		return receipt, nil
	}

	var body uploadResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		g.logger.WarnContext(ctx, "upload response is not json", slog.String("body", truncate(resp.Body, 200)))
		return receipt, nil
	}

	switch {
	case body.BundlerID != "":
		receipt.ID = body.BundlerID
	case body.ID != "":
		receipt.ID = body.ID
	default:
		receipt.ID = body.TxID
	}
	return receipt, nil
}

// Query asks one gateway's tag index for the publish records of a username.
func (g *StorageGateway) Query(ctx context.Context, gateway, username string) ([]rebento.PublishedVersion, error) {
	ctx, span := tracer.Start(ctx, "Gateway.Query")
	defer span.End()
	span.SetAttributes(attribute.String("gateway", gateway), attribute.String("username", username))

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.PostJSON(ctx, gateway+"/graphql", graphqlRequest{
		Query: profileQuery,
		Variables: map[string]any{
			"username": username,
			"first":    g.queryLimit,
		},
	})
	if err != nil {
		span.RecordError(errors.Wrap(err, "graphql request failed"))
		return nil, err
	}

	var result graphqlResponse
	if err := resp.DecodeJSON(&result); err != nil {
		span.RecordError(errors.Wrap(err, "graphql decode failed"))
		return nil, err
	}

	edges := result.Data.Transactions.Edges
	versions := make([]rebento.PublishedVersion, 0, len(edges))
	for _, e := range edges {
		if e.Node.ID == "" {
			continue
		}
		versions = append(versions, e.version())
	}
	span.SetAttributes(attribute.Int("records", len(versions)))
	return versions, nil
}

// FetchBody returns the first non-empty 200 body, trying gateways strictly
// in priority order.
func (g *StorageGateway) FetchBody(ctx context.Context, contentAddress string) (string, error) {
	ctx, span := tracer.Start(ctx, "Gateway.FetchBody")
	defer span.End()
	span.SetAttributes(attribute.String("contentAddress", contentAddress))

	if contentAddress == "" || strings.ContainsAny(contentAddress, "/?#") {
		return "", fmt.Errorf("invalid content address %q", contentAddress)
	}

	if body, ok := g.bodies.Get(ctx, contentAddress); ok {
		span.SetAttributes(attribute.Bool("cached", true))
		return body, nil
	}

	for _, gw := range g.gateways {
		body, err := g.fetchFrom(ctx, gw, contentAddress)
		if err != nil {
			g.logger.DebugContext(ctx, "gateway did not serve body",
				slog.String("gateway", gw),
				slog.String("contentAddress", contentAddress),
				slog.String("error", err.Error()),
			)
			continue
		}
		g.bodies.Set(ctx, contentAddress, body)
		span.SetAttributes(attribute.String("gateway", gw))
		return body, nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	span.RecordError(ErrBodyUnavailable)
	return "", ErrBodyUnavailable
}

func (g *StorageGateway) fetchFrom(ctx context.Context, gateway, contentAddress string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Get(ctx, gateway+"/"+contentAddress)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if len(resp.Body) == 0 {
		return "", fmt.Errorf("empty body")
	}
	return string(resp.Body), nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
