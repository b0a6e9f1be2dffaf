package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kylewspence/FinSight/pkg/apperror"
	"github.com/kylewspence/FinSight/pkg/response"
)

const internalErrorMessage = "An unexpected error occurred"

// ErrorHandler translates the last error attached with c.Error into
// a JSON error response. Internal causes are logged, never returned.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		var appErr *apperror.Error
		switch {
		case errors.As(err, &appErr) && appErr.Kind != apperror.Internal:
			if appErr.Err != nil {
				LogError("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			}
			response.Error(c, appErr.Kind.Status(), appErr.Message)
		case errors.Is(err, context.Canceled):
			c.Status(499)
		case errors.Is(err, context.DeadlineExceeded):
			LogError("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			response.Error(c, http.StatusGatewayTimeout, "Request timed out")
		default:
			LogError("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			response.InternalError(c, internalErrorMessage)
		}
	}
}
