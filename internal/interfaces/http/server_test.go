package http

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolScope/internal/config"
)

func TestServer_ServeAndShutdown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	srv := NewServer(config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            0,
		ShutdownTimeout: time.Second,
	}, handler, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	require.NoError(t, srv.Shutdown(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err, "closed server must not report an error")
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
}

func TestServer_Addr(t *testing.T) {
	srv := NewServer(config.ServerConfig{Host: "0.0.0.0", Port: 8080}, http.NotFoundHandler(), nil)
	assert.Equal(t, "0.0.0.0:8080", srv.srv.Addr)
	assert.NotNil(t, srv.Handler())
}
