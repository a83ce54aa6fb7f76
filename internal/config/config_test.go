package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.Locale != "vi" {
		t.Fatalf("expected default locale vi, got %q", cfg.Locale)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("expected 30m session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("expected 10MiB upload cap, got %d", cfg.MaxUploadBytes)
	}
	if cfg.MaxPixels != 40_000_000 {
		t.Fatalf("expected 40MP pixel budget, got %d", cfg.MaxPixels)
	}
	if cfg.Addr() != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.Addr())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("COMPOSER_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("COMPOSER_SESSION_TTL", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.SessionTTL != 5*time.Minute {
		t.Fatalf("expected 5m ttl, got %v", cfg.SessionTTL)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("COMPOSER_MAX_UPLOAD_BYTES", "not-an-int")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestLoadRejectsNonPositiveSessions(t *testing.T) {
	t.Setenv("COMPOSER_MAX_SESSIONS", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadRejectsNonPositivePixelBudget(t *testing.T) {
	t.Setenv("COMPOSER_MAX_PIXELS", "-1")

	if _, err := Load(); err == nil {
		t.Fatal("expected error")
	}
}

func TestLocation(t *testing.T) {
	loc, err := Config{TimeZone: "UTC"}.Location()
	if err != nil {
		t.Fatalf("location: %v", err)
	}
	if loc != time.UTC {
		t.Fatalf("expected UTC, got %v", loc)
	}
	if loc, _ := (Config{}).Location(); loc != time.UTC {
		t.Fatalf("empty zone should fall back to UTC, got %v", loc)
	}
	if _, err := (Config{TimeZone: "Mars/Olympus"}).Location(); err == nil {
		t.Fatal("expected error for unknown zone")
	}
}
