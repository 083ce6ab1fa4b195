package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/prometheus"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(rate float64, burst int) (*TokenBucketLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewTokenBucketLimiter(rate, burst, 0)
	l.now = clock.Now
	return l, clock
}

func TestTokenBucketLimiter_BurstThenRefill(t *testing.T) {
	l, clock := newTestLimiter(2, 3)

	for i := 0; i < 3; i++ {
		ok, info := l.Allow("a")
		require.True(t, ok, "request %d within burst", i)
		assert.Equal(t, 2-i, info.Remaining)
		assert.Equal(t, 3, info.Limit)
	}
	ok, _ := l.Allow("a")
	assert.False(t, ok)

	clock.Advance(500 * time.Millisecond)
	ok, _ = l.Allow("a")
	assert.True(t, ok, "one token refilled after 1/rate")

	ok, _ = l.Allow("b")
	assert.True(t, ok, "keys are independent")
}

func TestTokenBucketLimiter_RefillCapsAtBurst(t *testing.T) {
	l, clock := newTestLimiter(10, 2)
	l.Allow("a")
	clock.Advance(time.Hour)

	_, info := l.Allow("a")
	assert.Equal(t, 1, info.Remaining)
}

func TestTokenBucketLimiter_SetRate(t *testing.T) {
	l, clock := newTestLimiter(1, 1)
	ok, _ := l.Allow("a")
	require.True(t, ok)
	ok, _ = l.Allow("a")
	require.False(t, ok)

	l.SetRate(100, 5)
	clock.Advance(time.Second)
	for i := 0; i < 5; i++ {
		ok, _ = l.Allow("a")
		assert.True(t, ok)
	}
}

func TestTokenBucketLimiter_Cleanup(t *testing.T) {
	l, clock := newTestLimiter(1, 1)
	l.Allow("a")
	l.Allow("b")
	require.Equal(t, 2, l.BucketCount())

	clock.Advance(2 * time.Minute)
	l.Allow("b")
	l.cleanup(time.Minute)
	assert.Equal(t, 1, l.BucketCount())

	l.Stop()
	l.Stop()
}

func TestRateLimit_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, _ := newTestLimiter(1, 1)

	r := gin.New()
	r.GET("/x", RateLimit(l, prometheus.NewNoopAppMetrics(), "x"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "COMMON_007")
}
