package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/youruser/framecard/internal/editor"
	imagepkg "github.com/youruser/framecard/internal/image"
	"github.com/youruser/framecard/internal/surface"
)

const editorKey = "editor"

var allowedPhotoTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/bmp",
	"image/tiff",
}

type photoState struct {
	Generation uint64 `json:"generation"`
	Installed  uint64 `json:"installed"`
	Pending    bool   `json:"pending"`
}

type stateResponse struct {
	ID         string                       `json:"id"`
	Name       string                       `json:"name"`
	JoinDate   string                       `json:"join_date,omitempty"`
	HoursLabel string                       `json:"hours_label,omitempty"`
	Zoom       int                          `json:"zoom"`
	Photo      photoState                   `json:"photo"`
	Offsets    map[surface.ID]surface.Point `json:"offsets"`
}

func newStateResponse(id string, st editor.State) stateResponse {
	resp := stateResponse{
		ID:         id,
		Name:       st.Name,
		HoursLabel: st.HoursLabel,
		Zoom:       st.Zoom,
		Photo: photoState{
			Generation: st.PhotoGeneration,
			Installed:  st.PhotoInstalled,
			Pending:    st.PhotoPending,
		},
		Offsets: st.Offsets,
	}
	if st.JoinDate != nil {
		resp.JoinDate = st.JoinDate.String()
	}
	return resp
}

// loadSession resolves :id for every session route.
func (h *Handler) loadSession(c *gin.Context) {
	e, err := h.store.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set(editorKey, e)
	c.Next()
}

func editorFrom(c *gin.Context) *editor.Editor {
	return c.MustGet(editorKey).(*editor.Editor)
}

func (h *Handler) createSession(c *gin.Context) {
	id, e, err := h.store.Create(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newStateResponse(id, e.State()))
}

func (h *Handler) deleteSession(c *gin.Context) {
	h.store.Delete(c.Param("id"))
	c.Status(http.StatusNoContent)
}

func (h *Handler) sessionState(c *gin.Context) {
	c.JSON(http.StatusOK, newStateResponse(c.Param("id"), editorFrom(c).State()))
}

// uploadPhoto validates the multipart "photo" field and hands it to the
// editor. With ?wait=true it answers after the decode settles.
func (h *Handler) uploadPhoto(c *gin.Context) {
	limit := h.cfg.MaxUploadBytes
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+1<<20)

	fh, err := c.FormFile("photo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("photo exceeds %d bytes", limit)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	if fh.Size > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("photo exceeds %d bytes", limit)})
		return
	}

	src, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if int64(len(data)) > limit {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("photo exceeds %d bytes", limit)})
		return
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedPhotoTypes...) {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": fmt.Sprintf("unsupported photo type %q", mt.String())})
		return
	}

	// The header check keeps a small file that declares a huge bitmap from
	// ever reaching the decoder.
	if _, _, err := imagepkg.CheckPixels(data, h.cfg.MaxPixels); err != nil {
		if errors.Is(err, imagepkg.ErrTooManyPixels) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not read photo"})
		return
	}

	e := editorFrom(c)
	gen := e.UploadPhoto(data)

	if wait, _ := strconv.ParseBool(c.Query("wait")); wait {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.DecodeWait)
		defer cancel()
		if err := e.WaitPhoto(ctx); err != nil && ctx.Err() == nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not decode photo", "generation": gen})
			return
		}
	}
	c.JSON(http.StatusAccepted, newStateResponse(c.Param("id"), e.State()))
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *Handler) setName(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e := editorFrom(c)
	e.SetName(req.Name)
	c.JSON(http.StatusOK, newStateResponse(c.Param("id"), e.State()))
}

type joinDateRequest struct {
	Date string `json:"date"`
}

func (h *Handler) setJoinDate(c *gin.Context) {
	var req joinDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e := editorFrom(c)
	if strings.TrimSpace(req.Date) == "" {
		e.SetJoinDate(nil)
	} else {
		d, err := editor.ParseDate(req.Date)
		if err != nil {
			writeError(c, err)
			return
		}
		e.SetJoinDate(&d)
	}
	c.JSON(http.StatusOK, newStateResponse(c.Param("id"), e.State()))
}

type zoomRequest struct {
	Zoom *int `json:"zoom" binding:"required"`
}

func (h *Handler) setZoom(c *gin.Context) {
	var req zoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	e := editorFrom(c)
	if err := e.SetZoom(*req.Zoom); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newStateResponse(c.Param("id"), e.State()))
}

// dragRequest is one gesture event. An end may carry the final position.
type dragRequest struct {
	Phase  string   `json:"phase" binding:"required,oneof=start move end"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Source string   `json:"source"`
}

func (r dragRequest) point() (surface.Point, bool) {
	if r.X == nil || r.Y == nil {
		return surface.Point{}, false
	}
	return surface.Point{X: *r.X, Y: *r.Y}, true
}

// drag forwards one gesture event to the surface's tracker.
func (h *Handler) drag(c *gin.Context) {
	id, ok := surfaceParam(c)
	if !ok {
		return
	}
	var req dragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	src, err := editor.ParseSource(req.Source)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e := editorFrom(c)
	p, hasPoint := req.point()
	if !hasPoint && req.Phase != "end" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "x and y are required"})
		return
	}
	var applied bool
	switch req.Phase {
	case "start":
		applied, err = e.StartDrag(id, src, p)
	case "move":
		applied, err = e.MoveDrag(id, src, p)
	case "end":
		var at *surface.Point
		if hasPoint {
			at = &p
		}
		applied, err = e.EndDrag(id, src, at)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	offset, err := e.Offset(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": applied, "offset": offset})
}

func (h *Handler) composite(c *gin.Context) (editor.Composite, bool) {
	id, ok := surfaceParam(c)
	if !ok {
		return editor.Composite{}, false
	}
	comp, err := editorFrom(c).Composite(id)
	if err != nil {
		writeError(c, err)
		return editor.Composite{}, false
	}
	return comp, true
}

// surfaceImage serves the latest composite for display.
func (h *Handler) surfaceImage(c *gin.Context) {
	comp, ok := h.composite(c)
	if !ok {
		return
	}
	etag := fmt.Sprintf(`"%s-%d"`, c.Param("id"), comp.Version)
	c.Header("Cache-Control", "no-cache")
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "image/png", comp.PNG)
}

// download serves the composite as an attachment under its fixed name.
func (h *Handler) download(c *gin.Context) {
	comp, ok := h.composite(c)
	if !ok {
		return
	}
	spec := surface.MustLookup(comp.Surface)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, spec.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", comp.PNG)
}

func (h *Handler) downloadURL(c *gin.Context, id surface.ID) string {
	return absoluteURL(c, "/api/sessions/"+c.Param("id")+"/surfaces/"+string(id)+"/download")
}

// share returns the external share target together with the download the
// client triggers alongside it.
func (h *Handler) share(c *gin.Context) {
	id, ok := surfaceParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"share_url":    h.cfg.ShareURL,
		"download_url": h.downloadURL(c, id),
		"filename":     surface.MustLookup(id).Filename,
	})
}

// shareQR renders a QR code of the download URL so a phone can fetch it.
func (h *Handler) shareQR(c *gin.Context) {
	id, ok := surfaceParam(c)
	if !ok {
		return
	}
	size := 320
	if v, err := strconv.Atoi(c.Query("size")); err == nil {
		size = v
	}
	b, err := imagepkg.GenerateQRPNG(h.downloadURL(c, id), size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}
