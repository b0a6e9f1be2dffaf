package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kylewspence/FinSight/internal/middleware"
	"github.com/rs/cors"
)

// Handlers groups every API handler mounted under /api
type Handlers struct {
	Auth        *AuthHandler
	Property    *PropertyHandler
	Transaction *TransactionHandler
	Insight     *InsightHandler
	Upload      *UploadHandler
	RentCast    *RentCastHandler
}

// RouterConfig holds router-level settings
type RouterConfig struct {
	Version        string
	AllowedOrigins []string
	// GenerateLimit throttles insight generation; nil disables it
	GenerateLimit gin.HandlerFunc
}

// NewRouter builds the gin engine and wraps it with CORS
func NewRouter(h Handlers, authMiddleware gin.HandlerFunc, cfg RouterConfig) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLoggerMiddleware())
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": cfg.Version,
			"time":    time.Now().Unix(),
		})
	})

	api := router.Group("/api")
	{
		h.Auth.RegisterRoutes(api, authMiddleware)
		h.Property.RegisterRoutes(api, authMiddleware)
		h.Transaction.RegisterRoutes(api, authMiddleware)
		h.Insight.RegisterRoutes(api, authMiddleware, cfg.GenerateLimit)
		h.Upload.RegisterRoutes(api, authMiddleware)
		h.RentCast.RegisterRoutes(api, authMiddleware)
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposedHeaders: []string{middleware.HeaderRequestID},
		MaxAge:         86400,
	})

	return c.Handler(router)
}
