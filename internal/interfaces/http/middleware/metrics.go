package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts, latency and in-flight requests.  Paths
// are labelled by route template so the label set stays bounded.
func Metrics(m *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		active := m.HTTPActiveRequests.WithLabelValues()
		active.Inc()
		defer active.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
