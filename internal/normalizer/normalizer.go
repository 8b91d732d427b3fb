// Package normalizer re-encodes uploaded images into a smaller, normalized
// representation before they are persisted. Wide images are downscaled to a
// configured maximum width, and PNG/JPEG sources can optionally be converted
// to WebP. Normalization is best-effort: the caller falls back to the
// original bytes when it fails.
package normalizer

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"

	// Register the WebP decoder. JPEG, PNG, GIF and BMP decoders are
	// registered by the imaging package.
	_ "golang.org/x/image/webp"
)

// Defaults applied when an Options field is zero.
const (
	DefaultQuality  = 85
	DefaultMaxWidth = 1920
)

// Options configures a Normalizer.
type Options struct {
	// Quality is the encode quality for JPEG and WebP output (1-100).
	Quality int

	// MaxWidth is the maximum output width in pixels. Wider images are
	// downscaled proportionally; narrower images are left at their size.
	MaxWidth int

	// ConvertToWebP re-encodes PNG and JPEG sources (and anything with an
	// alpha channel) to WebP instead of the JPEG fallback.
	ConvertToWebP bool
}

// Result is the outcome of a successful normalization: the re-encoded
// bytes and the extension matching their format.
type Result struct {
	Data []byte
	Ext  string
}

// Normalizer transforms image bytes according to its configured policy.
// Safe for concurrent use.
type Normalizer struct {
	quality       int
	maxWidth      int
	convertToWebP bool
}

// New creates a Normalizer, substituting defaults for unset options.
func New(opts Options) *Normalizer {
	if opts.Quality == 0 {
		opts.Quality = DefaultQuality
	}
	if opts.MaxWidth == 0 {
		opts.MaxWidth = DefaultMaxWidth
	}
	return &Normalizer{
		quality:       opts.Quality,
		maxWidth:      opts.MaxWidth,
		convertToWebP: opts.ConvertToWebP,
	}
}

// Normalize re-encodes data according to the configured policy and returns
// the output bytes together with the extension of the output format.
//
// GIF input is returned unchanged: re-encoding would flatten animations.
// Any decode or encode failure is returned to the caller, which is expected
// to treat normalization as optional and store the original bytes instead.
func (n *Normalizer) Normalize(data []byte, ext string) (Result, error) {
	ext = strings.ToLower(ext)
	if ext == ".gif" {
		return Result{Data: data, Ext: ext}, nil
	}

	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("decoding image: %w", err)
	}

	// Downscale proportionally when the image exceeds the width cap.
	// Height 0 preserves the aspect ratio; smaller images are never enlarged.
	if src.Bounds().Dx() > n.maxWidth {
		src = imaging.Resize(src, n.maxWidth, 0, imaging.Lanczos)
	}

	switch {
	case n.convertToWebP && (hasAlpha(src) || ext == ".png"):
		// Transparent sources and PNGs keep their alpha channel in WebP.
		return n.encodeWebP(src)
	case n.convertToWebP && (ext == ".jpg" || ext == ".jpeg"):
		return n.encodeWebP(src)
	default:
		return n.encodeJPEG(src)
	}
}

func (n *Normalizer) encodeWebP(img image.Image) (Result, error) {
	opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(n.quality))
	if err != nil {
		return Result{}, fmt.Errorf("creating webp encoder options: %w", err)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, opts); err != nil {
		return Result{}, fmt.Errorf("encoding webp: %w", err)
	}
	return Result{Data: buf.Bytes(), Ext: ".webp"}, nil
}

func (n *Normalizer) encodeJPEG(img image.Image) (Result, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(n.quality)); err != nil {
		return Result{}, fmt.Errorf("encoding jpeg: %w", err)
	}
	return Result{Data: buf.Bytes(), Ext: ".jpg"}, nil
}

// hasAlpha reports whether the image carries a non-opaque pixel. Image types
// without an Opaque method are assumed opaque.
func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return false
}
