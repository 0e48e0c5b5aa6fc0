package imagecodec

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"
	"strings"

	"golang.org/x/image/draw"

	"github.com/totegamma/rebento"
)

// Encoder writes an image in one lossy format. Quality is in [0,1].
type Encoder interface {
	MIMEType() string
	Encode(w io.Writer, img image.Image, quality float64) error
}

type jpegEncoder struct{}

func (jpegEncoder) MIMEType() string { return "image/jpeg" }

func (jpegEncoder) Encode(w io.Writer, img image.Image, quality float64) error {
	q := int(math.Round(clamp(quality) * 100))
	if q < 1 {
		q = 1
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: q})
}

// JPEG is the universally supported fallback encoder.
var JPEG Encoder = jpegEncoder{}

type Codec struct {
	preferred Encoder
	fallback  Encoder
}

type Option func(*Codec)

// WithPreferred sets the encoder tried before the JPEG fallback.
func WithPreferred(enc Encoder) Option {
	return func(c *Codec) {
		c.preferred = enc
	}
}

func New(opts ...Option) *Codec {
	c := &Codec{fallback: JPEG}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compress re-encodes an inline image so its larger side is at most maxDim.
// Remote URLs and anything that fails to decode are returned unchanged, and
// the result is never longer than src.
func (c *Codec) Compress(ctx context.Context, src string, maxDim int, quality float64) string {
	if src == "" || rebento.IsRemoteURL(src) {
		return src
	}
	if ctx.Err() != nil {
		return src
	}

	data, ok := decodeDataURL(src)
	if !ok {
		return src
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return src
	}

	out, ok := c.encode(fit(img, maxDim), quality)
	if !ok || len(out) >= len(src) {
		return src
	}
	return out
}

func (c *Codec) encode(img image.Image, quality float64) (string, bool) {
	for _, enc := range []Encoder{c.preferred, c.fallback} {
		if enc == nil {
			continue
		}
		var buf bytes.Buffer
		if err := enc.Encode(&buf, img, quality); err != nil || buf.Len() == 0 {
			continue
		}
		return encodeDataURL(enc.MIMEType(), buf.Bytes()), true
	}
	return "", false
}

// fit scales img down to maxDim on its larger side and flattens it onto white.
func fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim > 0 && (w > maxDim || h > maxDim) {
		ratio := math.Min(float64(maxDim)/float64(w), float64(maxDim)/float64(h))
		w = int(math.Max(1, math.Round(float64(w)*ratio)))
		h = int(math.Max(1, math.Round(float64(h)*ratio)))
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func decodeDataURL(src string) ([]byte, bool) {
	if !strings.HasPrefix(src, "data:") {
		return nil, false
	}
	header, payload, found := strings.Cut(src[len("data:"):], ",")
	if !found || !strings.HasSuffix(header, ";base64") {
		return nil, false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, false
	}
	return data, true
}

func encodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func IsInline(src string) bool {
	return strings.HasPrefix(src, "data:")
}

func clamp(q float64) float64 {
	if math.IsNaN(q) {
		return 0
	}
	return math.Max(0, math.Min(1, q))
}
