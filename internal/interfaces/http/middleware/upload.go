package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/MolScope/pkg/errors"
)

// BodyLimit caps the request body at maxBytes.  Requests that declare a
// larger Content-Length are refused with 413 before any byte is read; the
// rest get a reader that fails once the cap is crossed, which handlers map
// to 413 as well.  reject writes the 413 response; nil writes JSON.
func BodyLimit(maxBytes int64, m *prometheus.AppMetrics, reject gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			m.RecordUpload(prometheus.OutcomeTooLarge, c.Request.ContentLength, 0)
			c.Header("Connection", "close")
			if reject != nil {
				reject(c)
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorBody{Error: ErrorDetail{
				Code:    errors.ErrCodeUploadTooLarge.String(),
				Message: errors.DefaultMessageForCode(errors.ErrCodeUploadTooLarge),
			}})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
