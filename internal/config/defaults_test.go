package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/MolScope/internal/config"
)

func TestApplyDefaults_FillsZeroValues(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	assert.Equal(t, config.DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, config.DefaultServerMode, cfg.Server.Mode)
	assert.EqualValues(t, 5*1024, cfg.Upload.MaxBytes)
	assert.Equal(t, []string{"txt"}, cfg.Upload.AllowedExtensions)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, "molscope_session", cfg.Session.CookieName)
	assert.Equal(t, 300, cfg.Depiction.ImageSize)
	assert.Equal(t, 250, cfg.Depiction.TooltipWidth)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.Server.Port = 9090
	cfg.Session.TTL = time.Minute
	cfg.Upload.AllowedExtensions = []string{"smi"}
	config.ApplyDefaults(cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.Session.TTL)
	assert.Equal(t, []string{"smi"}, cfg.Upload.AllowedExtensions)
}

func TestApplyDefaults_Nil(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() { config.ApplyDefaults(nil) })
}

func TestApplyDefaults_DoesNotAliasDefaultSlice(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Upload.AllowedExtensions[0] = "csv"
	assert.Equal(t, "txt", config.DefaultAllowedExtensions[0])
}

func TestDefault_EnablesRateLimitAndMetrics(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	assert.True(t, cfg.RateLimit.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
}
