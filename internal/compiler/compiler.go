package compiler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zeebo/xxh3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/internal/imagecodec"
)

var tracer = otel.Tracer("compiler")

const (
	initialQuality    = 0.8
	avatarDim         = 200
	imageDim          = 400
	fallbackQuality   = 0.15
	fallbackAvatarDim = 100
	fallbackImageDim  = 200
)

// QualityLadder is applied in order while the document is over budget.
var QualityLadder = []float64{0.6, 0.45, 0.3, 0.2}

type ImageCompressor interface {
	Compress(ctx context.Context, src string, maxDim int, quality float64) string
}

type Attempt struct {
	Quality   float64 `json:"quality"`
	SizeBytes int     `json:"sizeBytes"`
}

type Artifact struct {
	Document     string    `json:"html"`
	SizeBytes    int       `json:"sizeBytes"`
	WithinBudget bool      `json:"isUnderLimit"`
	Attempts     []Attempt `json:"attempts"`
	ETag         string    `json:"etag"`
}

func (a Artifact) SizeKB() float64 {
	return float64(int(float64(a.SizeBytes)/1024*10+0.5)) / 10
}

type Compiler struct {
	codec  ImageCompressor
	budget int
	logger *slog.Logger
}

type Option func(*Compiler)

func WithBudget(bytes int) Option {
	return func(c *Compiler) {
		c.budget = bytes
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

func New(codec ImageCompressor, opts ...Option) *Compiler {
	c := &Compiler{
		codec:  codec,
		budget: rebento.MaxArtifactSize,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile renders the page and runs the compression ladder until the
// document fits the budget. Being over budget is reported, not an error.
func (c *Compiler) Compile(ctx context.Context, profile rebento.Profile, blocks []rebento.Block, theme rebento.Theme) (Artifact, error) {
	ctx, span := tracer.Start(ctx, "Compiler.Compile")
	defer span.End()

	pg := page{
		profile: profile,
		blocks:  blocks,
		theme:   theme,
		avatar:  profile.Avatar,
		images:  make([]string, len(blocks)),
	}
	for i, b := range blocks {
		if b.Kind == rebento.KindImage {
			pg.images[i] = b.ImageURL
		}
	}

	var art Artifact
	measure := func(q float64) {
		art.Document = pg.build()
		art.SizeBytes = len(art.Document)
		art.Attempts = append(art.Attempts, Attempt{Quality: q, SizeBytes: art.SizeBytes})
	}

	if err := c.compressAll(ctx, &pg, avatarDim, imageDim, initialQuality); err != nil {
		return Artifact{}, err
	}
	measure(initialQuality)

	for _, q := range QualityLadder {
		if art.SizeBytes <= c.budget {
			break
		}
		if err := c.compressAll(ctx, &pg, avatarDim, imageDim, q); err != nil {
			return Artifact{}, err
		}
		measure(q)
	}

	if art.SizeBytes > c.budget {
		if err := c.compressAll(ctx, &pg, fallbackAvatarDim, fallbackImageDim, fallbackQuality); err != nil {
			return Artifact{}, err
		}
		measure(fallbackQuality)
	}

	art.WithinBudget = art.SizeBytes <= c.budget
	art.ETag = fmt.Sprintf("%016x", xxh3.HashString(art.Document))

	span.SetAttributes(
		attribute.Int("sizeBytes", art.SizeBytes),
		attribute.Int("attempts", len(art.Attempts)),
		attribute.Bool("withinBudget", art.WithinBudget),
	)
	c.logger.DebugContext(ctx, "compiled artifact",
		slog.Int("blocks", len(blocks)),
		slog.Int("sizeBytes", art.SizeBytes),
		slog.Int("attempts", len(art.Attempts)),
		slog.Bool("withinBudget", art.WithinBudget),
	)

	return art, nil
}

// compressAll re-encodes every inline image from its original source and
// keeps whichever of the previous and new encodings is shorter.
func (c *Compiler) compressAll(ctx context.Context, pg *page, avatarMax, imageMax int, quality float64) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	if imagecodec.IsInline(pg.profile.Avatar) {
		g.Go(func() error {
			out := c.codec.Compress(gctx, pg.profile.Avatar, avatarMax, quality)
			if len(out) < len(pg.avatar) {
				pg.avatar = out
			}
			return nil
		})
	}

	for i, b := range pg.blocks {
		if b.Kind != rebento.KindImage || !imagecodec.IsInline(b.ImageURL) {
			continue
		}
		g.Go(func() error {
			out := c.codec.Compress(gctx, b.ImageURL, imageMax, quality)
			if len(out) < len(pg.images[i]) {
				pg.images[i] = out
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
