package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kylewspence/FinSight/internal/middleware"
	"github.com/kylewspence/FinSight/internal/service"
	"github.com/kylewspence/FinSight/pkg/apperror"
)

// identity returns the caller identity or records an Unauthorized error
func identity(c *gin.Context) (service.Identity, bool) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		_ = c.Error(apperror.New(apperror.Unauthorized, "Authentication required"))
	}
	return id, ok
}

// paramID parses a positive integer path parameter
func paramID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		_ = c.Error(apperror.BadRequestf("%s must be a positive integer", name))
		return 0, false
	}
	return uint(v), true
}

// bindJSON decodes the request body or records a BadRequest error
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		_ = c.Error(apperror.Wrap(apperror.BadRequest, "Invalid JSON body", err))
		return false
	}
	return true
}
