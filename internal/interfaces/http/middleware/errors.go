package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/MolScope/pkg/errors"
)

// ErrorBody is the JSON error envelope shared by middleware and handlers.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AbortWithAppError stops the chain and writes err as JSON.  Only the
// user-facing message of err is exposed.
func AbortWithAppError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	c.AbortWithStatusJSON(errors.HTTPStatusForCode(code), ErrorBody{Error: ErrorDetail{
		Code:    code.String(),
		Message: errors.UserMessage(err),
	}})
}
