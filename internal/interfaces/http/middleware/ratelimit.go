package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MolScope/pkg/errors"
)

// RateLimitInfo describes the limiter state after a decision.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

type tokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// TokenBucketLimiter keeps one token bucket per key.  Rate and burst can be
// changed at runtime; existing buckets adopt them on their next refill.
type TokenBucketLimiter struct {
	mu      sync.RWMutex
	rate    float64
	burst   int
	buckets map[string]*tokenBucket
	now     func() time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

// NewTokenBucketLimiter creates a limiter.  A positive cleanupInterval
// starts a goroutine that drops idle buckets; call Stop to end it.
func NewTokenBucketLimiter(rate float64, burst int, cleanupInterval time.Duration) *TokenBucketLimiter {
	l := &TokenBucketLimiter{
		rate:    rate,
		burst:   burst,
		buckets: make(map[string]*tokenBucket),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go l.cleanupLoop(cleanupInterval)
	}
	return l
}

// SetRate changes the sustained rate and burst.
func (l *TokenBucketLimiter) SetRate(rate float64, burst int) {
	l.mu.Lock()
	l.rate, l.burst = rate, burst
	l.mu.Unlock()
}

// Allow takes one token from key's bucket if one is available.
func (l *TokenBucketLimiter) Allow(key string) (bool, RateLimitInfo) {
	now := l.now()

	l.mu.RLock()
	rate, burst := l.rate, l.burst
	bucket, ok := l.buckets[key]
	l.mu.RUnlock()

	if !ok {
		l.mu.Lock()
		if bucket, ok = l.buckets[key]; !ok {
			bucket = &tokenBucket{tokens: float64(burst), lastRefill: now}
			l.buckets[key] = bucket
		}
		l.mu.Unlock()
	}

	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.tokens = math.Min(float64(burst), bucket.tokens+now.Sub(bucket.lastRefill).Seconds()*rate)
	bucket.lastRefill = now

	info := RateLimitInfo{Limit: burst, ResetAt: now.Add(time.Hour)}
	if rate > 0 {
		info.ResetAt = now.Add(time.Duration(float64(time.Second) / rate))
	}
	if bucket.tokens >= 1 {
		bucket.tokens--
		info.Remaining = int(bucket.tokens)
		return true, info
	}
	return false, info
}

func (l *TokenBucketLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup(interval)
		case <-l.stop:
			return
		}
	}
}

// cleanup removes buckets idle for longer than idle.  An idle bucket has
// refilled completely, so dropping it changes nothing.
func (l *TokenBucketLimiter) cleanup(idle time.Duration) {
	threshold := l.now().Add(-idle)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		b.mu.Lock()
		if b.lastRefill.Before(threshold) {
			delete(l.buckets, key)
		}
		b.mu.Unlock()
	}
}

func (l *TokenBucketLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

// BucketCount returns the number of tracked keys.
func (l *TokenBucketLimiter) BucketCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

// RateLimit rejects requests over the per-client budget with 429.  route
// labels the rejection metric.
func RateLimit(limiter *TokenBucketLimiter, m *prometheus.AppMetrics, route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, info := limiter.Allow(c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))

		if !allowed {
			retry := int(math.Ceil(time.Until(info.ResetAt).Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			m.RateLimitedTotal.WithLabelValues(route).Inc()
			AbortWithAppError(c, errors.RateLimit("rate limit exceeded, please retry later"))
			return
		}
		c.Next()
	}
}
