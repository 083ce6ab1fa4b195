// Package config defines the configuration structures for MolScope.  No I/O
// lives in this file, only plain data types and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/logging"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// UploadConfig bounds what the upload form accepts.
type UploadConfig struct {
	// MaxBytes caps the whole request body, like a web framework's
	// MAX_CONTENT_LENGTH.  Requests above it get 413.
	MaxBytes          int64    `mapstructure:"max_bytes"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

// SessionConfig selects and tunes the session store.
type SessionConfig struct {
	Backend       string        `mapstructure:"backend"` // "memory" | "redis"
	TTL           time.Duration `mapstructure:"ttl"`
	CookieName    string        `mapstructure:"cookie_name"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// RedisConfig holds Redis connection parameters for the redis session backend.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// DepictionConfig controls molecule images.
type DepictionConfig struct {
	ImageSize    int     `mapstructure:"image_size"`    // PNG edge length in pixels
	TooltipWidth int     `mapstructure:"tooltip_width"` // CSS width of the hover image
	FontSize     float64 `mapstructure:"font_size"`
}

// PlotConfig controls the results page and static plot export.
type PlotConfig struct {
	PlotlyURL    string `mapstructure:"plotly_url"`
	StaticWidth  int    `mapstructure:"static_width"`
	StaticHeight int    `mapstructure:"static_height"`
}

// RateLimitConfig throttles the hover endpoint per client.
type RateLimitConfig struct {
	Enabled    bool    `mapstructure:"enabled"`
	HoverRPS   float64 `mapstructure:"hover_rps"`
	HoverBurst int     `mapstructure:"hover_burst"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig      `mapstructure:"server"`
	Upload    UploadConfig      `mapstructure:"upload"`
	Session   SessionConfig     `mapstructure:"session"`
	Redis     RedisConfig       `mapstructure:"redis"`
	Depiction DepictionConfig   `mapstructure:"depiction"`
	Plot      PlotConfig        `mapstructure:"plot"`
	RateLimit RateLimitConfig   `mapstructure:"ratelimit"`
	Metrics   MetricsConfig     `mapstructure:"metrics"`
	Log       logging.LogConfig `mapstructure:"log"`
}

// Validate performs semantic validation of the fully-populated Config and
// returns the first problem found.  Callers treat any error as fatal.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Upload.MaxBytes < 1 {
		return fmt.Errorf("config: upload.max_bytes must be ≥ 1, got %d", c.Upload.MaxBytes)
	}
	if len(c.Upload.AllowedExtensions) == 0 {
		return fmt.Errorf("config: upload.allowed_extensions must not be empty")
	}
	for _, ext := range c.Upload.AllowedExtensions {
		if ext == "" || strings.HasPrefix(ext, ".") {
			return fmt.Errorf("config: upload.allowed_extensions entry %q must be a bare extension such as \"txt\"", ext)
		}
	}

	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when session.backend is redis")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
		}
	default:
		return fmt.Errorf("config: session.backend %q is invalid; expected memory|redis", c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: session.ttl must be positive, got %s", c.Session.TTL)
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("config: session.cookie_name is required")
	}

	if c.Depiction.ImageSize < 64 || c.Depiction.ImageSize > 2048 {
		return fmt.Errorf("config: depiction.image_size %d is out of range [64, 2048]", c.Depiction.ImageSize)
	}
	if c.Depiction.TooltipWidth < 1 {
		return fmt.Errorf("config: depiction.tooltip_width must be ≥ 1, got %d", c.Depiction.TooltipWidth)
	}

	if c.RateLimit.Enabled && (c.RateLimit.HoverRPS <= 0 || c.RateLimit.HoverBurst < 1) {
		return fmt.Errorf("config: ratelimit.hover_rps and ratelimit.hover_burst must be positive when enabled")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}
	return nil
}
