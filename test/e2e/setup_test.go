//go:build e2e

// Package e2e_test drives a MolScope server through its public client.  By
// default each test starts an embedded server; set MOLSCOPE_E2E_BASE_URL to
// run against a deployed one instead.
package e2e_test

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolScope/internal/testutil"
	"github.com/turtacn/MolScope/pkg/client"
)

const envBaseURL = "MOLSCOPE_E2E_BASE_URL"

// newSession returns a client bound to a fresh server session, plus the base
// URL it talks to.
func newSession(t *testing.T) (*client.Client, string) {
	t.Helper()

	baseURL := os.Getenv(envBaseURL)
	if baseURL == "" {
		baseURL = testutil.NewStack(t, nil).URL()
	} else {
		waitForHealthy(t, baseURL, 30*time.Second)
	}

	c, err := client.NewClient(baseURL, client.WithRetryWait(50*time.Millisecond, 500*time.Millisecond))
	require.NoError(t, err)
	return c, baseURL
}

func waitForHealthy(t *testing.T, baseURL string, timeout time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/readyz", nil)
		require.NoError(t, err)
		if resp, err := http.DefaultClient.Do(req); err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		select {
		case <-ctx.Done():
			t.Fatalf("server at %s not ready after %s", baseURL, timeout)
		case <-time.After(500 * time.Millisecond):
		}
	}
}
