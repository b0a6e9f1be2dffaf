package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/kylewspence/FinSight/internal/service"
	"github.com/kylewspence/FinSight/pkg/response"
)

// InsightHandler handles AI insight API requests
type InsightHandler struct {
	insightService *service.InsightService
}

// NewInsightHandler creates a new InsightHandler
func NewInsightHandler(insightService *service.InsightService) *InsightHandler {
	return &InsightHandler{
		insightService: insightService,
	}
}

// GenerateInsights asks the model for portfolio insights
// POST /api/ai/insights
func (h *InsightHandler) GenerateInsights(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req service.GenerateInsightsRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	insights, err := h.insightService.Generate(c.Request.Context(), id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, gin.H{"insights": insights})
}

// ListInsights returns every saved insight
// GET /api/ai/insights
func (h *InsightHandler) ListInsights(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	insights, err := h.insightService.List(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, insights)
}

// LatestInsight returns the most recently saved insight
// GET /api/ai/insights/latest
func (h *InsightHandler) LatestInsight(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	insight, err := h.insightService.Latest(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, insight)
}

// SaveInsight stores a generated insight
// POST /api/ai/insights/save
func (h *InsightHandler) SaveInsight(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req service.Insights
	if !bindJSON(c, &req) {
		return
	}

	insight, err := h.insightService.Save(c.Request.Context(), id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Created(c, insight)
}

// RegisterRoutes registers insight routes. generateLimit throttles
// generation and may be nil.
func (h *InsightHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc, generateLimit gin.HandlerFunc) {
	ai := rg.Group("/ai/insights")
	ai.Use(authMiddleware)
	{
		generate := []gin.HandlerFunc{h.GenerateInsights}
		if generateLimit != nil {
			generate = append([]gin.HandlerFunc{generateLimit}, generate...)
		}
		ai.POST("", generate...)
		ai.GET("", h.ListInsights)
		ai.GET("/latest", h.LatestInsight)
		ai.POST("/save", h.SaveInsight)
	}
}
