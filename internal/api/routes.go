package api

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		api.GET("/health", h.health)
		api.GET("/site", h.site)
		api.GET("/frames/:surface", h.frame)
		api.POST("/sessions", h.createSession)

		s := api.Group("/sessions/:id", h.loadSession)
		{
			s.GET("", h.sessionState)
			s.DELETE("", h.deleteSession)
			s.POST("/photo", h.uploadPhoto)
			s.PUT("/name", h.setName)
			s.PUT("/join-date", h.setJoinDate)
			s.PUT("/zoom", h.setZoom)
			s.POST("/surfaces/:surface/drag", h.drag)
			s.GET("/surfaces/:surface/image", h.surfaceImage)
			s.GET("/surfaces/:surface/download", h.download)
			s.GET("/surfaces/:surface/share", h.share)
			s.GET("/surfaces/:surface/share/qr", h.shareQR)
		}
	}
}

// RegisterSite serves the web client. static must contain index.html.
func RegisterSite(r *gin.Engine, static fs.FS) {
	r.StaticFS("/static", http.FS(static))
	r.GET("/", func(c *gin.Context) {
		c.FileFromFS("/", http.FS(static))
	})
}
