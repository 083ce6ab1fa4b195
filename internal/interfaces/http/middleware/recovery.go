package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/MolScope/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MolScope/pkg/errors"
)

// Recovery turns a handler panic into a logged 500.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			logger.Error("panic recovered",
				logging.String("panic", fmt.Sprint(rec)),
				logging.String("path", c.Request.URL.Path),
				logging.String("request_id", GetRequestID(c)),
				logging.String("stack", string(debug.Stack())))
			if c.Writer.Written() {
				c.Abort()
				return
			}
			AbortWithAppError(c, errors.Internal("internal server error"))
		}()
		c.Next()
	}
}
