package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/kylewspence/FinSight/internal/service"
	"github.com/kylewspence/FinSight/pkg/response"
)

// PropertyHandler handles property API requests
type PropertyHandler struct {
	propertyService *service.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(propertyService *service.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
	}
}

// ListProperties handles listing the caller's properties
// GET /api/properties
func (h *PropertyHandler) ListProperties(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	properties, err := h.propertyService.List(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, properties)
}

// GetProperty handles getting a single property
// GET /api/properties/:id
func (h *PropertyHandler) GetProperty(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	propertyID, ok := paramID(c, "id")
	if !ok {
		return
	}

	property, err := h.propertyService.Get(c.Request.Context(), id, propertyID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, property)
}

// CreateProperty handles property creation
// POST /api/properties
func (h *PropertyHandler) CreateProperty(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req service.CreatePropertyRequest
	if !bindJSON(c, &req) {
		return
	}

	property, err := h.propertyService.Create(c.Request.Context(), id, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Created(c, property)
}

// UpdateProperty handles updating the editable property fields
// PUT /api/properties/:id
func (h *PropertyHandler) UpdateProperty(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	propertyID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req service.UpdatePropertyRequest
	if !bindJSON(c, &req) {
		return
	}

	property, err := h.propertyService.Update(c.Request.Context(), id, propertyID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, property)
}

// DeleteProperty handles deleting a property
// DELETE /api/properties/:id
func (h *PropertyHandler) DeleteProperty(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	propertyID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.propertyService.Delete(c.Request.Context(), id, propertyID); err != nil {
		_ = c.Error(err)
		return
	}

	response.NoContent(c)
}

// RegisterRoutes registers property routes
func (h *PropertyHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	properties := rg.Group("/properties")
	properties.Use(authMiddleware)
	{
		properties.GET("", h.ListProperties)
		properties.POST("", h.CreateProperty)
		properties.GET("/:id", h.GetProperty)
		properties.PUT("/:id", h.UpdateProperty)
		properties.DELETE("/:id", h.DeleteProperty)
	}
}
