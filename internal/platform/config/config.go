package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	RedisURL  string `env:"REDIS_URL"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	FeedInitialSize  int           `env:"FEED_INITIAL_SIZE" default:"3"`
	FeedPageSize     int           `env:"FEED_PAGE_SIZE" default:"3"`
	FeedMaxPageSize  int           `env:"FEED_MAX_PAGE_SIZE" default:"50"`
	FeedFetchLatency time.Duration `env:"FEED_FETCH_LATENCY" default:"1s"`

	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" default:"30m"`

	APIRateLimit float64 `env:"API_RATE_LIMIT" default:"20"`
	APIRateBurst int     `env:"API_RATE_BURST" default:"40"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// UsesRedis reports whether catalogs are served from Redis instead of the embedded seed.
func (c *Config) UsesRedis() bool {
	return c.RedisURL != ""
}

func validate(cfg *Config) error {
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, cfg.LogLevel) {
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	if cfg.FeedInitialSize < 0 {
		return errors.New("FEED_INITIAL_SIZE must not be negative")
	}
	if cfg.FeedMaxPageSize < 1 {
		return errors.New("FEED_MAX_PAGE_SIZE must be at least 1")
	}
	if cfg.FeedPageSize < 1 || cfg.FeedPageSize > cfg.FeedMaxPageSize {
		return fmt.Errorf("FEED_PAGE_SIZE must be between 1 and FEED_MAX_PAGE_SIZE (%d)", cfg.FeedMaxPageSize)
	}
	if cfg.FeedFetchLatency < 0 {
		return errors.New("FEED_FETCH_LATENCY must not be negative")
	}

	if cfg.SessionIdleTimeout < time.Second {
		return errors.New("SESSION_IDLE_TIMEOUT must be at least 1s")
	}

	if cfg.APIRateLimit <= 0 {
		return errors.New("API_RATE_LIMIT must be positive")
	}
	if cfg.APIRateBurst < 1 {
		return errors.New("API_RATE_BURST must be at least 1")
	}

	return nil
}
