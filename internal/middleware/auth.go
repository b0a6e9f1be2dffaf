package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kylewspence/FinSight/internal/service"
	"github.com/kylewspence/FinSight/pkg/response"
)

// ContextKeyIdentity is the key for the caller identity in gin context
const ContextKeyIdentity = "identity"

// TokenVerifier validates session tokens
type TokenVerifier interface {
	VerifyToken(token string) (service.Identity, error)
}

// AuthMiddleware creates a bearer token authentication middleware
func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authentication required")
			return
		}

		// Check Bearer prefix
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Unauthorized(c, "Invalid authorization header format")
			return
		}

		identity, err := verifier.VerifyToken(strings.TrimSpace(parts[1]))
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(ContextKeyIdentity, identity)
		c.Next()
	}
}

// GetIdentity returns the caller identity stored by AuthMiddleware.
// The boolean is false on routes that did not run the middleware.
func GetIdentity(c *gin.Context) (service.Identity, bool) {
	v, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return service.Identity{}, false
	}
	id, ok := v.(service.Identity)
	return id, ok && id.UserID != 0
}
