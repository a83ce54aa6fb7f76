package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`

	// Locale selects the message catalog used for the hours label.
	Locale   string `env:"COMPOSER_LOCALE" envDefault:"vi"`
	TimeZone string `env:"COMPOSER_TIMEZONE" envDefault:"Asia/Ho_Chi_Minh"`

	MaxUploadBytes int64         `env:"COMPOSER_MAX_UPLOAD_BYTES" envDefault:"10485760"`
	MaxPixels      int64         `env:"COMPOSER_MAX_PIXELS" envDefault:"40000000"`
	DecodeWait     time.Duration `env:"COMPOSER_DECODE_WAIT" envDefault:"10s"`

	SessionTTL  time.Duration `env:"COMPOSER_SESSION_TTL" envDefault:"30m"`
	SweepEvery  time.Duration `env:"COMPOSER_SWEEP_INTERVAL" envDefault:"1m"`
	MaxSessions int           `env:"COMPOSER_MAX_SESSIONS" envDefault:"500"`

	// Frame sources: empty means the embedded artwork, otherwise a file
	// path or an http(s) URL.
	AvatarFrame string `env:"COMPOSER_AVATAR_FRAME"`
	CardFrame   string `env:"COMPOSER_CARD_FRAME"`

	// FontFile replaces the bundled Go Bold Italic face for card text.
	FontFile string `env:"COMPOSER_FONT_FILE"`

	ShareURL       string   `env:"COMPOSER_SHARE_URL" envDefault:"https://www.facebook.com"`
	IntroVideoURL  string   `env:"COMPOSER_INTRO_VIDEO_URL"`
	AllowedOrigins []string `env:"COMPOSER_ALLOWED_ORIGINS" envSeparator:","`
}

// Load reads an optional .env file and then parses the environment.
func Load() (Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.MaxUploadBytes <= 0 {
		return Config{}, fmt.Errorf("COMPOSER_MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}
	if cfg.MaxPixels <= 0 {
		return Config{}, fmt.Errorf("COMPOSER_MAX_PIXELS must be positive, got %d", cfg.MaxPixels)
	}
	if cfg.MaxSessions <= 0 {
		return Config{}, fmt.Errorf("COMPOSER_MAX_SESSIONS must be positive, got %d", cfg.MaxSessions)
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Location resolves TimeZone, falling back to UTC for an empty value.
func (c Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}
