package imagepkg

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"github.com/youruser/framecard/internal/surface"
	"github.com/youruser/framecard/internal/util"
)

// frameLoadTimeout bounds a frame load independently of the caller, whose
// context may belong to a single request.
const frameLoadTimeout = 30 * time.Second

//go:embed assets/*.svg
var embeddedFrames embed.FS

// FrameSet loads each surface's decorative frame at most once and keeps it
// for the lifetime of the process. Frames are read-only once loaded.
type FrameSet struct {
	sources map[surface.ID]string
	entries map[surface.ID]*frameEntry
}

type frameEntry struct {
	once sync.Once
	img  *image.NRGBA
	err  error
}

// NewFrameSet builds a set reading frames from sources. A missing or empty
// source selects the embedded artwork; otherwise it is a file path or an
// http(s) URL.
func NewFrameSet(sources map[surface.ID]string) *FrameSet {
	fs := &FrameSet{
		sources: map[surface.ID]string{},
		entries: map[surface.ID]*frameEntry{},
	}
	for _, id := range surface.All {
		fs.sources[id] = strings.TrimSpace(sources[id])
		fs.entries[id] = &frameEntry{}
	}
	return fs
}

// Ensure returns the frame for id, loading it on first use. A failed load
// is remembered as well; callers draw without a frame in that case.
func (fs *FrameSet) Ensure(ctx context.Context, id surface.ID) (image.Image, error) {
	e, ok := fs.entries[id]
	if !ok {
		return nil, fmt.Errorf("frames: unknown surface %q", id)
	}
	e.once.Do(func() {
		// The result is kept for the process, so a cancelled caller must not
		// decide it.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), frameLoadTimeout)
		defer cancel()

		spec := surface.MustLookup(id)
		e.img, e.err = loadFrame(loadCtx, spec, fs.sources[id])
		if e.err != nil {
			log.Printf("[frames] %s: %v", id, e.err)
			return
		}
		log.Printf("[frames] %s: loaded %dx%d", id, spec.Width, spec.Height)
	})
	if e.err != nil {
		return nil, e.err
	}
	return e.img, nil
}

func loadFrame(ctx context.Context, spec surface.Spec, src string) (*image.NRGBA, error) {
	var (
		data []byte
		err  error
	)
	switch {
	case src == "":
		src = "assets/frame-" + string(spec.ID) + ".svg"
		data, err = embeddedFrames.ReadFile(src)
	case strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://"):
		data, err = util.GetBytes(ctx, src)
	default:
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return nil, fmt.Errorf("read frame %s: %w", src, err)
	}

	if isSVG(src, data) {
		return RasterizeSVG(data, spec.Width, spec.Height)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", src, err)
	}
	if b := img.Bounds(); b.Dx() != spec.Width || b.Dy() != spec.Height {
		return imaging.Resize(img, spec.Width, spec.Height, imaging.Lanczos), nil
	}
	return imaging.Clone(img), nil
}

func isSVG(src string, data []byte) bool {
	name := strings.ToLower(src)
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if filepath.Ext(name) == ".svg" {
		return true
	}
	head := bytes.TrimSpace(data[:min(len(data), 512)])
	return bytes.HasPrefix(head, []byte("<svg")) || bytes.HasPrefix(head, []byte("<?xml"))
}

// RasterizeSVG renders SVG artwork stretched to w x h.
func RasterizeSVG(data []byte, w, h int) (*image.NRGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)

	return imaging.Clone(rgba), nil
}
