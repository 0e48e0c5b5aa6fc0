package imagecodec

import (
	"image"
	"io"
	"math"

	"github.com/gen2brain/webp"
)

type webpEncoder struct{}

func (webpEncoder) MIMEType() string { return "image/webp" }

// Encode always stays lossy: quality 100 would switch libwebp to lossless.
func (webpEncoder) Encode(w io.Writer, img image.Image, quality float64) error {
	q := int(math.Round(clamp(quality) * 100))
	q = max(1, min(q, 99))
	return webp.Encode(w, img, webp.Options{Quality: q, Method: webp.DefaultMethod})
}

// WebP is the preferred encoder for compiled pages.
var WebP Encoder = webpEncoder{}
