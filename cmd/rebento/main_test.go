package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/totegamma/rebento"
	"github.com/totegamma/rebento/internal/config"
)

func TestParse(t *testing.T) {
	flagSet := newFlagSet("compile")
	out := flagSet.StringP("out", "o", "", "output")
	ok, err := parse(flagSet, []string{"-o", "page.html"})
	if !ok || err != nil || *out != "page.html" {
		t.Fatalf("expected flags to parse, got %v %v %q", ok, err, *out)
	}

	for _, args := range [][]string{{"--help"}, {"-h"}} {
		ok, err := parse(newFlagSet("compile"), args)
		if ok || err != nil {
			t.Fatalf("%v should print usage and stop, got %v %v", args, ok, err)
		}
	}

	if ok, err := parse(newFlagSet("compile"), []string{"--nope"}); ok || err == nil {
		t.Fatalf("expected an unknown flag to fail")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if err := run([]string{"frobnicate"}); err == nil {
		t.Fatalf("expected an error for an unknown command")
	}
	if err := run(nil); err != nil {
		t.Fatalf("no arguments should print usage: %v", err)
	}
}

func inlinePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 7), uint8(y * 13), uint8((x ^ y) * 5), 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestPipelineCompilesImagesToWebP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := newPipeline(config.Default(), logger, nil)

	art, err := p.compiler.Compile(context.Background(), rebento.Profile{Name: "Alice", Avatar: inlinePNG(t, 400, 400)}, nil, rebento.Theme{})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if !strings.Contains(art.Document, "data:image/webp;base64,") {
		t.Fatalf("expected the avatar to be re-encoded as webp")
	}
	if strings.Contains(art.Document, "data:image/png;base64,") {
		t.Fatalf("the original png should not survive compilation")
	}
}
