package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/youruser/framecard/internal/api"
	"github.com/youruser/framecard/internal/config"
	"github.com/youruser/framecard/internal/editor"
	imagepkg "github.com/youruser/framecard/internal/image"
	"github.com/youruser/framecard/internal/session"
	"github.com/youruser/framecard/internal/surface"
	"github.com/youruser/framecard/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.SetPrefix("[composer] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("time zone: %v", err)
	}
	font, err := imagepkg.LoadFont(cfg.FontFile)
	if err != nil {
		log.Fatalf("font: %v", err)
	}

	// Frames load once per process; warm them so the first visitor does not
	// pay for the rasterization. A failed load is not retried.
	frames := imagepkg.NewFrameSet(map[surface.ID]string{
		surface.Avatar: cfg.AvatarFrame,
		surface.Card:   cfg.CardFrame,
	})
	for _, id := range surface.All {
		if _, err := frames.Ensure(ctx, id); err != nil {
			log.Printf("frame %s unavailable: %v", id, err)
		}
	}

	store := session.NewStore(func(ctx context.Context) *editor.Editor {
		return editor.New(ctx, editor.Options{
			Frames: frames,
			Font:   font,
			Locale: cfg.Locale,
			Now:    func() time.Time { return time.Now().In(loc) },
			Decode: imagepkg.NewPhotoDecoder(cfg.MaxPixels),
		})
	}, cfg.SessionTTL, cfg.MaxSessions)
	go store.Run(ctx, cfg.SweepEvery)

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: cfg.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
			AllowHeaders: []string{"Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	api.RegisterRoutes(r, api.NewHandler(store, frames, cfg))
	api.RegisterSite(r, web.Static())

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Println("starting server on http://localhost" + cfg.Addr())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
