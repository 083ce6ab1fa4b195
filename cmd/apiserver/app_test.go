package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/turtacn/MolScope/internal/config"
	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/logging"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Mode = "test"
	cfg.Server.ShutdownTimeout = time.Second
	return cfg
}

func TestNewApp_MemoryBackend(t *testing.T) {
	a, err := newApp(testConfig(), logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(a.close)

	assert.NotNil(t, a.memory)
	assert.Nil(t, a.redis)
	assert.Equal(t, "memory", a.store.Backend())

	w := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "session_memory")
	assert.Contains(t, w.Body.String(), "renderer")

	w = httptest.NewRecorder()
	a.server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewApp_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Session.Backend = "redis"
	cfg.Redis.Addr = mr.Addr()

	a, err := newApp(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(a.close)

	assert.Nil(t, a.memory)
	assert.NotNil(t, a.redis)

	w := httptest.NewRecorder()
	a.server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, mr.Keys(), "visiting the form stores a session")
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	cfg := testConfig()
	cfg.Session.Backend = "redis"
	cfg.Redis.Addr = "127.0.0.1:1"
	cfg.Redis.DialTimeout = 100 * time.Millisecond

	_, err := newApp(cfg, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Port = 0
	a, err := newApp(cfg, logging.NewNopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestApp_ApplyReload(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	a, err := newApp(testConfig(), logging.NewLoggerFromCore(core))
	require.NoError(t, err)
	t.Cleanup(a.close)

	next := testConfig()
	next.RateLimit.HoverRPS = 50
	next.RateLimit.HoverBurst = 100
	a.applyReload(next)

	entries := logs.FilterMessage("configuration reloaded").All()
	require.Len(t, entries, 1)
	assert.Equal(t, 50.0, entries[0].ContextMap()["hover_rps"])
	assert.Equal(t, int64(100), entries[0].ContextMap()["hover_burst"])
}
