package compiler

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/internal/imagecodec"
)

// sizedCodec returns data URLs whose length is proportional to dim*quality.
type sizedCodec struct {
	factor float64

	mu    sync.Mutex
	calls []string
}

func (s *sizedCodec) Compress(ctx context.Context, src string, maxDim int, quality float64) string {
	s.mu.Lock()
	s.calls = append(s.calls, src)
	s.mu.Unlock()
	return "data:image/jpeg;base64," + strings.Repeat("A", int(float64(maxDim)*quality*s.factor))
}

func inlineSrc(n int) string {
	return "data:image/png;base64," + strings.Repeat("B", n)
}

func textBlocks(n int) []rebento.Block {
	blocks := make([]rebento.Block, n)
	for i := range blocks {
		blocks[i] = rebento.Block{ID: string(rune('a' + i)), Kind: rebento.KindText, Size: rebento.SizeSmall, Content: "hello"}
	}
	return blocks
}

func TestCompileUnderBudgetFirstPass(t *testing.T) {
	c := New(imagecodec.New())
	art, err := c.Compile(context.Background(), rebento.Profile{Name: "Alice", Bio: "hi", Avatar: "https://example.com/a.png"}, textBlocks(3), rebento.DefaultTheme())
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if !art.WithinBudget {
		t.Fatalf("expected within budget, got %d bytes", art.SizeBytes)
	}
	if len(art.Attempts) != 1 {
		t.Fatalf("expected no ladder steps, got %d attempts", len(art.Attempts))
	}
	if art.SizeBytes >= rebento.MaxArtifactSize/2 {
		t.Fatalf("expected document well under budget, got %d", art.SizeBytes)
	}
	if !strings.Contains(art.Document, `<meta property="og:image" content="https://example.com/a.png">`) {
		t.Fatalf("expected og:image for remote avatar")
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	codec := &sizedCodec{factor: 10}
	c := New(codec)
	profile := rebento.Profile{Name: "Alice", Avatar: inlineSrc(50000), Location: "Tokyo"}
	blocks := append(textBlocks(2),
		rebento.Block{ID: "img", Kind: rebento.KindImage, Size: rebento.SizeLarge, ImageURL: inlineSrc(50000)},
		rebento.Block{ID: "soc", Kind: rebento.KindSocial, SocialPlatform: rebento.PlatformGithub, SocialUsername: "alice"},
	)

	a, err := c.Compile(context.Background(), profile, blocks, rebento.Theme{DarkMode: true})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	b, err := c.Compile(context.Background(), profile, blocks, rebento.Theme{DarkMode: true})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if a.Document != b.Document || a.ETag != b.ETag {
		t.Fatalf("expected byte-identical output")
	}
}

func TestCompileLadderStopsWhenWithinBudget(t *testing.T) {
	codec := &sizedCodec{factor: 170}
	c := New(codec)
	profile := rebento.Profile{Name: "Alice", Avatar: inlineSrc(200000)}
	blocks := []rebento.Block{
		{ID: "1", Kind: rebento.KindImage, Size: rebento.SizeWide, ImageURL: inlineSrc(200000)},
		{ID: "2", Kind: rebento.KindImage, Size: rebento.SizeWide, ImageURL: inlineSrc(200000)},
	}

	art, err := c.Compile(context.Background(), profile, blocks, rebento.DefaultTheme())
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if !art.WithinBudget {
		t.Fatalf("expected ladder to reach budget, got %d bytes", art.SizeBytes)
	}
	if len(art.Attempts) != 3 {
		t.Fatalf("expected 3 attempts (0.8, 0.6, 0.45) got %+v", art.Attempts)
	}
	if art.Attempts[0].SizeBytes <= rebento.MaxArtifactSize {
		t.Fatalf("expected first pass over budget")
	}
}

func TestCompileLadderMonotonicAndReportsOverBudget(t *testing.T) {
	codec := &sizedCodec{factor: 1000}
	c := New(codec)
	profile := rebento.Profile{Name: "Alice", Avatar: inlineSrc(500000)}
	var blocks []rebento.Block
	for i := 0; i < 10; i++ {
		blocks = append(blocks, rebento.Block{ID: string(rune('a' + i)), Kind: rebento.KindImage, ImageURL: inlineSrc(500000)})
	}

	art, err := c.Compile(context.Background(), profile, blocks, rebento.DefaultTheme())
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if art.WithinBudget {
		t.Fatalf("expected over budget")
	}
	if art.Document == "" {
		t.Fatalf("expected a document even when over budget")
	}
	if len(art.Attempts) != 1+len(QualityLadder)+1 {
		t.Fatalf("expected full ladder plus fallback, got %d attempts", len(art.Attempts))
	}
	for i := 1; i < len(art.Attempts); i++ {
		if art.Attempts[i].SizeBytes > art.Attempts[i-1].SizeBytes {
			t.Fatalf("attempt %d grew: %d > %d", i, art.Attempts[i].SizeBytes, art.Attempts[i-1].SizeBytes)
		}
	}
	if last := art.Attempts[len(art.Attempts)-1]; last.Quality != fallbackQuality || last.SizeBytes != art.SizeBytes {
		t.Fatalf("unexpected final attempt %+v", last)
	}
}

func TestCompileNeverTouchesRemoteImages(t *testing.T) {
	codec := &sizedCodec{factor: 1000}
	c := New(codec)
	profile := rebento.Profile{Name: "Alice", Avatar: "https://example.com/me.png"}
	blocks := []rebento.Block{
		{ID: "1", Kind: rebento.KindImage, ImageURL: "https://example.com/big.png"},
		{ID: "2", Kind: rebento.KindText, Content: strings.Repeat("x", rebento.MaxArtifactSize)},
	}

	art, err := c.Compile(context.Background(), profile, blocks, rebento.DefaultTheme())
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if len(codec.calls) != 0 {
		t.Fatalf("codec must not be called for remote images, got %d calls", len(codec.calls))
	}
	if !strings.Contains(art.Document, `src="https://example.com/big.png"`) {
		t.Fatalf("remote image should be kept verbatim")
	}
	if art.WithinBudget {
		t.Fatalf("expected over budget from text alone")
	}
}

func TestCompileZeroBlocks(t *testing.T) {
	c := New(imagecodec.New())
	art, err := c.Compile(context.Background(), rebento.Profile{Name: "Empty"}, nil, rebento.Theme{})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if !strings.Contains(art.Document, `<div class="grid">`) {
		t.Fatalf("expected an empty grid")
	}
	if !strings.Contains(art.Document, "background:#f5f5f5") {
		t.Fatalf("expected default background for empty theme")
	}
}

func TestCompileCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := New(&sizedCodec{factor: 1})
	_, err := c.Compile(ctx, rebento.Profile{Avatar: inlineSrc(10)}, nil, rebento.Theme{})
	if err == nil {
		t.Fatalf("expected error for canceled context")
	}
}
