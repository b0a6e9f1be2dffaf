package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/kylewspence/FinSight/internal/service"
	"github.com/kylewspence/FinSight/pkg/response"
)

// AuthHandler handles authentication API requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles user registration
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.Credentials
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Created(c, result)
}

// Login handles user login
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.Credentials
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, result)
}

// Me returns the authenticated user
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	user, err := h.authService.CurrentUser(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, user)
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/me", authMiddleware, h.Me)
	}
}
