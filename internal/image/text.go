package imagepkg

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"sync"

	"github.com/youruser/framecard/internal/surface"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

var textColor = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

var goBoldItalic = sync.OnceValues(func() (*opentype.Font, error) {
	f, err := opentype.Parse(gobolditalic.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse go bold italic: %w", err)
	}
	return f, nil
})

// LoadFont reads a TrueType or OpenType font file. An empty path selects the
// bundled Go Bold Italic face.
func LoadFont(path string) (*opentype.Font, error) {
	if path == "" {
		return goBoldItalic()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return f, nil
}

// drawCentered draws one line of text centered on anchor. Faces are created
// per call since an opentype face must not be shared between goroutines.
func drawCentered(dst draw.Image, f *opentype.Font, text string, anchor surface.TextAnchor) error {
	if f == nil {
		var err error
		if f, err = goBoldItalic(); err != nil {
			return err
		}
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    anchor.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("create font face: %w", err)
	}
	defer face.Close()

	m := face.Metrics()
	advance := font.MeasureString(face, text)
	origin := fixed.Point26_6{
		X: fixed.Int26_6(anchor.At.X*64) - advance/2,
		Y: fixed.Int26_6(anchor.At.Y*64) + (m.Ascent-m.Descent)/2,
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(textColor),
		Face: face,
		Dot:  origin,
	}
	d.DrawString(text)
	return nil
}
