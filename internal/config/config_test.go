package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolScope/internal/config"
)

func TestConfig_Validate_Default(t *testing.T) {
	t.Parallel()
	assert.NoError(t, config.Default().Validate())
}

func TestConfig_Validate_Failures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"port too high", func(c *config.Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad mode", func(c *config.Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"zero upload cap", func(c *config.Config) { c.Upload.MaxBytes = -1 }, "upload.max_bytes"},
		{"dotted extension", func(c *config.Config) { c.Upload.AllowedExtensions = []string{".txt"} }, "allowed_extensions"},
		{"no extensions", func(c *config.Config) { c.Upload.AllowedExtensions = nil }, "allowed_extensions"},
		{"unknown backend", func(c *config.Config) { c.Session.Backend = "memcached" }, "session.backend"},
		{"redis without addr", func(c *config.Config) {
			c.Session.Backend = "redis"
			c.Redis.Addr = ""
		}, "redis.addr"},
		{"negative redis db", func(c *config.Config) {
			c.Session.Backend = "redis"
			c.Redis.DB = -1
		}, "redis.db"},
		{"negative ttl", func(c *config.Config) { c.Session.TTL = -time.Second }, "session.ttl"},
		{"no cookie name", func(c *config.Config) { c.Session.CookieName = "" }, "cookie_name"},
		{"tiny image", func(c *config.Config) { c.Depiction.ImageSize = 10 }, "depiction.image_size"},
		{"tooltip width", func(c *config.Config) { c.Depiction.TooltipWidth = 0 }, "tooltip_width"},
		{"rate limit zero", func(c *config.Config) { c.RateLimit.HoverRPS = 0 }, "ratelimit"},
		{"log level", func(c *config.Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *config.Config) { c.Log.Format = "text" }, "log.format"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestConfig_Validate_RateLimitDisabledIgnoresValues(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.RateLimit.Enabled = false
	cfg.RateLimit.HoverRPS = 0
	assert.NoError(t, cfg.Validate())
}

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()
	s := config.ServerConfig{Host: "127.0.0.1", Port: 9000}
	assert.Equal(t, "127.0.0.1:9000", s.Addr())
}
