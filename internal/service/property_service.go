package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/kylewspence/FinSight/internal/models"
	"github.com/kylewspence/FinSight/internal/repository"
	"github.com/kylewspence/FinSight/pkg/apperror"
)

const streetViewURL = "https://maps.googleapis.com/maps/api/streetview"

var (
	ErrPropertyNotFound  = apperror.New(apperror.NotFound, "Property not found")
	ErrPropertyForbidden = apperror.New(apperror.Forbidden, "Not authorized to modify this property")
)

// PropertyLookup fills in property details from an address
type PropertyLookup interface {
	GetPropertyDetails(ctx context.Context, address string) (*PropertyDetails, error)
}

// PropertyService handles property operations
type PropertyService struct {
	repo       *repository.PropertyRepository
	lookup     PropertyLookup
	mapsAPIKey string
}

// NewPropertyService creates a new PropertyService. lookup may be nil.
func NewPropertyService(repo *repository.PropertyRepository, lookup PropertyLookup, mapsAPIKey string) *PropertyService {
	if mapsAPIKey == "" {
		log.Printf("[PropertyService] Warning: maps API key not set, property images will be empty")
	}
	return &PropertyService{
		repo:       repo,
		lookup:     lookup,
		mapsAPIKey: mapsAPIKey,
	}
}

// CreatePropertyRequest is the body of a property create request.
// Missing numbers default to zero.
type CreatePropertyRequest struct {
	FormattedAddress string  `json:"formattedAddress"`
	PropertyType     string  `json:"propertyType"`
	Bedrooms         float64 `json:"bedrooms"`
	Bathrooms        float64 `json:"bathrooms"`
	SquareFootage    float64 `json:"squareFootage"`
	YearBuilt        float64 `json:"yearBuilt"`
	LastSale         string  `json:"lastSale"`
	LastSalePrice    float64 `json:"lastSalePrice"`
	Price            float64 `json:"price"`
	PriceRangeLow    float64 `json:"priceRangeLow"`
	PriceRangeHigh   float64 `json:"priceRangeHigh"`
	Notes            string  `json:"notes"`
	MonthlyRent      float64 `json:"monthlyRent"`
	MortgagePayment  float64 `json:"mortgagePayment"`
	MortgageBalance  float64 `json:"mortgageBalance"`
	HOAPayment       float64 `json:"hoaPayment"`
	InterestRate     float64 `json:"interestRate"`

	// Lookup fills blank structural and value fields from the property data service
	Lookup bool `json:"lookup"`
}

// UpdatePropertyRequest carries the editable fields. Nil fields are left unchanged.
type UpdatePropertyRequest struct {
	Notes           *string  `json:"notes"`
	MonthlyRent     *float64 `json:"monthlyRent"`
	MortgagePayment *float64 `json:"mortgagePayment"`
	MortgageBalance *float64 `json:"mortgageBalance"`
	HOAPayment      *float64 `json:"hoaPayment"`
	InterestRate    *float64 `json:"interestRate"`
}

// List returns the caller's properties in creation order
func (s *PropertyService) List(ctx context.Context, id Identity) ([]models.Property, error) {
	return s.repo.GetByUserID(ctx, id.UserID)
}

// Get returns one of the caller's properties
func (s *PropertyService) Get(ctx context.Context, id Identity, propertyID uint) (*models.Property, error) {
	property, err := s.repo.GetByIDAndUserID(ctx, propertyID, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return property, nil
}

// Create stores a new property for the caller
func (s *PropertyService) Create(ctx context.Context, id Identity, req CreatePropertyRequest) (*models.Property, error) {
	req.FormattedAddress = strings.TrimSpace(req.FormattedAddress)
	if req.FormattedAddress == "" {
		return nil, apperror.New(apperror.BadRequest, "formattedAddress is required")
	}

	if req.Lookup {
		s.enrich(ctx, &req)
	}

	propertyType := strings.TrimSpace(req.PropertyType)
	if propertyType == "" {
		propertyType = defaultPropertyType
	}

	property := &models.Property{
		UserID:           id.UserID,
		FormattedAddress: req.FormattedAddress,
		PropertyType:     propertyType,
		Bedrooms:         roundInt(req.Bedrooms),
		Bathrooms:        roundTo(req.Bathrooms, 1),
		SquareFootage:    roundInt(req.SquareFootage),
		YearBuilt:        roundInt(req.YearBuilt),
		LastSale:         req.LastSale,
		LastSalePrice:    roundWhole(req.LastSalePrice),
		Price:            roundWhole(req.Price),
		PriceRangeLow:    roundWhole(req.PriceRangeLow),
		PriceRangeHigh:   roundWhole(req.PriceRangeHigh),
		Image:            s.streetViewImage(req.FormattedAddress),
		Notes:            req.Notes,
		MonthlyRent:      roundWhole(req.MonthlyRent),
		MortgagePayment:  roundWhole(req.MortgagePayment),
		MortgageBalance:  roundWhole(req.MortgageBalance),
		HOAPayment:       roundWhole(req.HOAPayment),
		InterestRate:     roundTo(req.InterestRate, 3),
	}

	if err := s.repo.Create(ctx, property); err != nil {
		return nil, fmt.Errorf("create property: %w", err)
	}
	return property, nil
}

// Update applies the editable fields present in req
func (s *PropertyService) Update(ctx context.Context, id Identity, propertyID uint, req UpdatePropertyRequest) (*models.Property, error) {
	property, err := s.owned(ctx, id, propertyID)
	if err != nil {
		return nil, err
	}

	if req.Notes != nil {
		property.Notes = *req.Notes
	}
	if req.MonthlyRent != nil {
		property.MonthlyRent = roundWhole(*req.MonthlyRent)
	}
	if req.MortgagePayment != nil {
		property.MortgagePayment = roundWhole(*req.MortgagePayment)
	}
	if req.MortgageBalance != nil {
		property.MortgageBalance = roundWhole(*req.MortgageBalance)
	}
	if req.HOAPayment != nil {
		property.HOAPayment = roundWhole(*req.HOAPayment)
	}
	if req.InterestRate != nil {
		property.InterestRate = roundTo(*req.InterestRate, 3)
	}

	if err := s.repo.Update(ctx, property); err != nil {
		return nil, fmt.Errorf("update property: %w", err)
	}
	return property, nil
}

// Delete removes one of the caller's properties
func (s *PropertyService) Delete(ctx context.Context, id Identity, propertyID uint) error {
	if _, err := s.owned(ctx, id, propertyID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, propertyID); err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return ErrPropertyNotFound
		}
		return fmt.Errorf("delete property: %w", err)
	}
	return nil
}

// owned loads a property and checks it belongs to the caller
func (s *PropertyService) owned(ctx context.Context, id Identity, propertyID uint) (*models.Property, error) {
	property, err := s.repo.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, repository.ErrPropertyNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	if property.UserID != id.UserID {
		return nil, ErrPropertyForbidden
	}
	return property, nil
}

// enrich fills zero-valued fields from a property lookup. Failures are logged only.
func (s *PropertyService) enrich(ctx context.Context, req *CreatePropertyRequest) {
	if s.lookup == nil {
		return
	}
	details, err := s.lookup.GetPropertyDetails(ctx, req.FormattedAddress)
	if err != nil {
		log.Printf("[PropertyService] lookup for %q failed, creating without it: %v", req.FormattedAddress, err)
		return
	}

	if req.PropertyType == "" {
		req.PropertyType = details.PropertyType
	}
	fill := func(dst *float64, v float64) {
		if *dst == 0 {
			*dst = v
		}
	}
	fill(&req.Bedrooms, float64(details.Bedrooms))
	fill(&req.Bathrooms, details.Bathrooms)
	fill(&req.SquareFootage, float64(details.SquareFootage))
	fill(&req.YearBuilt, float64(details.YearBuilt))
	fill(&req.LastSalePrice, details.LastSalePrice)
	fill(&req.Price, details.Price)
	fill(&req.PriceRangeLow, details.PriceRangeLow)
	fill(&req.PriceRangeHigh, details.PriceRangeHigh)
	if req.LastSale == "" {
		req.LastSale = details.LastSale
	}
}

func (s *PropertyService) streetViewImage(address string) string {
	if s.mapsAPIKey == "" {
		log.Printf("[PropertyService] Warning: no maps API key, skipping image for %q", address)
		return ""
	}
	return streetViewURL + "?size=600x400&location=" + url.QueryEscape(address) + "&key=" + url.QueryEscape(s.mapsAPIKey)
}
