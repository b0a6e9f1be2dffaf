package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kylewspence/FinSight/internal/external"
	"github.com/kylewspence/FinSight/internal/service"
	"github.com/kylewspence/FinSight/pkg/response"
)

// RentCastHandler proxies property lookups to the valuation service
type RentCastHandler struct {
	valuationService *service.ValuationService
}

// NewRentCastHandler creates a new RentCastHandler
func NewRentCastHandler(valuationService *service.ValuationService) *RentCastHandler {
	return &RentCastHandler{
		valuationService: valuationService,
	}
}

// GetProperty looks up the public record for an address
// GET /api/rentcast/property?address=
func (h *RentCastHandler) GetProperty(c *gin.Context) {
	facts, err := h.valuationService.LookupProperty(c.Request.Context(), c.Query("address"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	// price fields are present but zero; use /details for a valuation
	response.Success(c, service.PropertyDetails{PropertyFacts: *facts})
}

// GetValue returns a valuation estimate for an address
// GET /api/rentcast/value?address=&propertyType=&bedrooms=&bathrooms=&squareFootage=
func (h *RentCastHandler) GetValue(c *gin.Context) {
	params := external.ValueParams{
		PropertyType:  c.Query("propertyType"),
		Bedrooms:      queryFloat(c, "bedrooms"),
		Bathrooms:     queryFloat(c, "bathrooms"),
		SquareFootage: queryFloat(c, "squareFootage"),
	}

	est, err := h.valuationService.LookupValue(c.Request.Context(), c.Query("address"), params)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, est)
}

// GetDetails returns the property record merged with a best-effort valuation
// GET /api/rentcast/details?address=
func (h *RentCastHandler) GetDetails(c *gin.Context) {
	details, err := h.valuationService.GetPropertyDetails(c.Request.Context(), c.Query("address"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, details)
}

// queryFloat returns 0 for absent or non-numeric values
func queryFloat(c *gin.Context, key string) float64 {
	v, err := strconv.ParseFloat(c.Query(key), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// RegisterRoutes registers RentCast proxy routes
func (h *RentCastHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	rentcast := rg.Group("/rentcast")
	rentcast.Use(authMiddleware)
	{
		rentcast.GET("/property", h.GetProperty)
		rentcast.GET("/value", h.GetValue)
		rentcast.GET("/details", h.GetDetails)
	}
}
