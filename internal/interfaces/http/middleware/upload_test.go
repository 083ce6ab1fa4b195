package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MolScope/pkg/errors"
)

func newBodyLimitRouter(reject gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/", BodyLimit(8, prometheus.NewNoopAppMetrics(), reject), func(c *gin.Context) {
		var tooLarge *http.MaxBytesError
		if _, err := io.ReadAll(c.Request.Body); errors.As(err, &tooLarge) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})
	return r
}

func TestBodyLimit(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		unknownLength bool
		want          int
	}{
		{"under limit", "12345678", false, http.StatusOK},
		{"declared too large", "123456789", false, http.StatusRequestEntityTooLarge},
		{"streamed too large", "123456789", true, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.unknownLength {
				req.ContentLength = -1
			}
			w := httptest.NewRecorder()
			newBodyLimitRouter(nil).ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestBodyLimit_CustomReject(t *testing.T) {
	r := newBodyLimitRouter(func(c *gin.Context) {
		c.String(http.StatusRequestEntityTooLarge, "too big")
	})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "too big", w.Body.String())
	assert.Equal(t, "close", w.Header().Get("Connection"))
}

func TestBodyLimit_DefaultRejectIsJSON(t *testing.T) {
	w := httptest.NewRecorder()
	newBodyLimitRouter(nil).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	assert.Contains(t, w.Body.String(), `"UPL_003"`)
}
