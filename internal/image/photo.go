package imagepkg

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels bounds the decoded size of a photo, about 40 MP.
const DefaultMaxPixels = 40_000_000

// ErrTooManyPixels is returned for photos whose header declares more pixels
// than allowed.
var ErrTooManyPixels = errors.New("photo has too many pixels")

// CheckPixels reads only the image header and rejects photos larger than
// maxPixels. A non-positive maxPixels means DefaultMaxPixels.
func CheckPixels(data []byte, maxPixels int64) (int, int, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("read photo header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("read photo header: empty %dx%d image", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return cfg.Width, cfg.Height, fmt.Errorf("%w: %dx%d exceeds %d", ErrTooManyPixels, cfg.Width, cfg.Height, maxPixels)
	}
	return cfg.Width, cfg.Height, nil
}

// NewPhotoDecoder returns a decoder that refuses photos over maxPixels
// before allocating them.
func NewPhotoDecoder(maxPixels int64) func([]byte) (image.Image, error) {
	return func(data []byte) (image.Image, error) {
		return decodePhoto(data, maxPixels)
	}
}

// DecodePhoto decodes an uploaded photo, honouring its EXIF orientation.
// Photos over DefaultMaxPixels are rejected.
func DecodePhoto(data []byte) (image.Image, error) {
	return decodePhoto(data, DefaultMaxPixels)
}

func decodePhoto(data []byte, maxPixels int64) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("decode photo: empty input")
	}
	if _, _, err := CheckPixels(data, maxPixels); err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode photo: %w", err)
	}
	return img, nil
}

// Photo is a decoded user photo bound to one surface. It remembers the last
// scaled copy so repeated redraws at the same scale never resample again.
// A Photo is not safe for concurrent use.
type Photo struct {
	src    image.Image
	scaled *image.NRGBA
}

// NewPhoto wraps a decoded image.
func NewPhoto(src image.Image) *Photo {
	return &Photo{src: src}
}

// Size returns the source dimensions.
func (p *Photo) Size() (int, int) {
	b := p.src.Bounds()
	return b.Dx(), b.Dy()
}

// ScaledTo returns the photo resampled to w x h.
func (p *Photo) ScaledTo(w, h int) *image.NRGBA {
	if p.scaled != nil {
		if b := p.scaled.Bounds(); b.Dx() == w && b.Dy() == h {
			return p.scaled
		}
	}
	p.scaled = imaging.Resize(p.src, w, h, imaging.Lanczos)
	return p.scaled
}
