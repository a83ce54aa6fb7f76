package imagepkg

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"

	"github.com/disintegration/imaging"
	"github.com/youruser/framecard/internal/surface"
	"golang.org/x/image/font/opentype"
)

// Layers is everything a surface render depends on. Nil or empty fields
// are simply not drawn.
type Layers struct {
	Spec   surface.Spec
	Photo  *Photo
	Offset surface.Point
	Zoom   float64
	Frame  image.Image
	Name   string
	Hours  string

	// Font is used for the text layers; nil means Go Bold Italic.
	Font *opentype.Font
}

// Render composites the layers onto a fresh canvas of the surface size:
// photo, then frame, then text, then the rounded corner cut.
func Render(l Layers) *image.NRGBA {
	canvas := imaging.New(l.Spec.Width, l.Spec.Height, color.NRGBA{})

	if l.Photo != nil {
		w, h := l.Photo.Size()
		p := l.Spec.Place(w, h, l.Offset, l.Zoom)
		if p.Width > 0 && p.Height > 0 {
			canvas = imaging.Paste(canvas, l.Photo.ScaledTo(p.Width, p.Height), image.Pt(p.X, p.Y))
		}
	}

	// The frame always wins the top of the photo stack.
	if l.Frame != nil {
		canvas = imaging.Overlay(canvas, l.Frame, image.Pt(0, 0), 1.0)
	}

	if l.Spec.Name != nil && l.Name != "" {
		if err := drawCentered(canvas, l.Font, l.Name, *l.Spec.Name); err != nil {
			log.Printf("[compose] %s: name not drawn: %v", l.Spec.ID, err)
		}
	}
	if l.Spec.Hours != nil && l.Hours != "" {
		if err := drawCentered(canvas, l.Font, l.Hours, *l.Spec.Hours); err != nil {
			log.Printf("[compose] %s: hours not drawn: %v", l.Spec.ID, err)
		}
	}

	roundCorners(canvas, l.Spec.CornerRadius)
	return canvas
}

// EncodePNG serializes img losslessly. The encoder settings are fixed so the
// same image always yields the same bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed)); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Composite renders the layers and encodes the result.
func Composite(l Layers) ([]byte, error) {
	return EncodePNG(Render(l))
}
