package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/youruser/framecard/internal/config"
	"github.com/youruser/framecard/internal/editor"
	imagepkg "github.com/youruser/framecard/internal/image"
	"github.com/youruser/framecard/internal/session"
	"github.com/youruser/framecard/internal/surface"
)

// Handler holds what the HTTP handlers need.
type Handler struct {
	store  *session.Store
	frames *imagepkg.FrameSet
	cfg    config.Config
}

// NewHandler returns a Handler serving sessions from store.
func NewHandler(store *session.Store, frames *imagepkg.FrameSet, cfg config.Config) *Handler {
	return &Handler{store: store, frames: frames, cfg: cfg}
}

// health
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.store.Len()})
}

type surfaceInfo struct {
	ID       surface.ID `json:"id"`
	Width    int        `json:"width"`
	Height   int        `json:"height"`
	Filename string     `json:"filename"`
}

func (h *Handler) site(c *gin.Context) {
	surfaces := make([]surfaceInfo, 0, len(surface.All))
	for _, id := range surface.All {
		s := surface.MustLookup(id)
		surfaces = append(surfaces, surfaceInfo{ID: id, Width: s.Width, Height: s.Height, Filename: s.Filename})
	}
	c.JSON(http.StatusOK, gin.H{
		"intro_video_url": h.cfg.IntroVideoURL,
		"share_url":       h.cfg.ShareURL,
		"max_upload":      h.cfg.MaxUploadBytes,
		"max_zoom":        editor.MaxZoom,
		"surfaces":        surfaces,
	})
}

// frame serves the bare frame artwork for a surface.
func (h *Handler) frame(c *gin.Context) {
	id, ok := surfaceParam(c)
	if !ok {
		return
	}
	img, err := h.frames.Ensure(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	b, err := imagepkg.EncodePNG(img)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", b)
}

func surfaceParam(c *gin.Context) (surface.ID, bool) {
	id, err := surface.Parse(c.Param("surface"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return "", false
	}
	return id, true
}

// writeError maps domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, editor.ErrUnknownSurface):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrFull):
		status = http.StatusServiceUnavailable
	case errors.Is(err, editor.ErrInvalidDate), errors.Is(err, editor.ErrZoomRange):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		log.Printf("[api] %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// absoluteURL builds an absolute URL for path on the host the request came
// in on, honouring X-Forwarded-Proto from a proxy.
func absoluteURL(c *gin.Context, path string) string {
	scheme := "https"
	if xf := c.Request.Header.Get("X-Forwarded-Proto"); xf != "" {
		scheme = strings.TrimSpace(strings.Split(xf, ",")[0])
	} else if c.Request.TLS == nil {
		scheme = "http"
	}
	return scheme + "://" + c.Request.Host + path
}
