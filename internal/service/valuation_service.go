package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/kylewspence/FinSight/internal/cache"
	"github.com/kylewspence/FinSight/internal/external"
	"github.com/kylewspence/FinSight/pkg/apperror"
)

const defaultPropertyType = "Single Family"

// DetailsCache stores looked-up property details
type DetailsCache interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// PropertyFacts is the structural description of a property
type PropertyFacts struct {
	FormattedAddress string  `json:"formattedAddress"`
	PropertyType     string  `json:"propertyType"`
	Bedrooms         int     `json:"bedrooms"`
	Bathrooms        float64 `json:"bathrooms"`
	SquareFootage    int     `json:"squareFootage"`
	YearBuilt        int     `json:"yearBuilt"`
	LastSale         string  `json:"lastSale"`
	LastSalePrice    float64 `json:"lastSalePrice"`
}

// ValueEstimate is an estimated value with its range
type ValueEstimate struct {
	Price          float64 `json:"price"`
	PriceRangeLow  float64 `json:"priceRangeLow"`
	PriceRangeHigh float64 `json:"priceRangeHigh"`
}

// PropertyDetails merges facts with a best-effort valuation
type PropertyDetails struct {
	PropertyFacts
	ValueEstimate
	EstimatedValue float64 `json:"estimatedValue"`
}

// ValuationService looks up property facts and values from the
// property data provider
type ValuationService struct {
	provider external.PropertyDataProvider
	cache    DetailsCache
	cacheTTL time.Duration
}

// NewValuationService creates a new ValuationService. provider may be nil
// when no API key is configured; cache may be nil to disable caching.
func NewValuationService(provider external.PropertyDataProvider, cache DetailsCache, cacheTTL time.Duration) *ValuationService {
	return &ValuationService{
		provider: provider,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

// LookupProperty returns the public-record facts for an address
func (s *ValuationService) LookupProperty(ctx context.Context, address string) (*PropertyFacts, error) {
	address, err := s.prepare(address)
	if err != nil {
		return nil, err
	}

	record, err := s.provider.GetProperty(ctx, address)
	if err != nil {
		return nil, translateProviderError(err, "property")
	}
	return factsFromRecord(record, address), nil
}

// LookupValue returns a valuation for an address
func (s *ValuationService) LookupValue(ctx context.Context, address string, params external.ValueParams) (*ValueEstimate, error) {
	address, err := s.prepare(address)
	if err != nil {
		return nil, err
	}

	est, err := s.provider.GetValue(ctx, address, params)
	if err != nil {
		return nil, translateProviderError(err, "value estimate")
	}
	return &ValueEstimate{
		Price:          roundWhole(est.Price),
		PriceRangeLow:  roundWhole(est.PriceRangeLow),
		PriceRangeHigh: roundWhole(est.PriceRangeHigh),
	}, nil
}

// GetPropertyDetails looks up the property record and then, best effort,
// its value. A failed value lookup leaves the price fields at zero.
func (s *ValuationService) GetPropertyDetails(ctx context.Context, address string) (*PropertyDetails, error) {
	address, err := s.prepare(address)
	if err != nil {
		return nil, err
	}

	key := cache.Key("property-details", address)
	if s.cache != nil {
		var cached PropertyDetails
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Printf("[ValuationService] cache read failed for %q: %v", address, err)
		} else if hit {
			return &cached, nil
		}
	}

	facts, err := s.LookupProperty(ctx, address)
	if err != nil {
		return nil, err
	}

	details := &PropertyDetails{PropertyFacts: *facts}

	est, err := s.LookupValue(ctx, address, external.ValueParams{
		PropertyType:  facts.PropertyType,
		Bedrooms:      float64(facts.Bedrooms),
		Bathrooms:     facts.Bathrooms,
		SquareFootage: float64(facts.SquareFootage),
	})
	if err != nil {
		log.Printf("[ValuationService] value lookup failed for %q, returning facts only: %v", address, err)
		return details, nil
	}

	details.ValueEstimate = *est
	details.EstimatedValue = est.Price

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.Set(ctx, key, details, s.cacheTTL); err != nil {
			log.Printf("[ValuationService] cache write failed for %q: %v", address, err)
		}
	}
	return details, nil
}

func (s *ValuationService) prepare(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", apperror.New(apperror.BadRequest, "Address is required")
	}
	if s.provider == nil {
		return "", apperror.New(apperror.Unavailable, "Property data service is not configured")
	}
	return address, nil
}

func factsFromRecord(r *external.PropertyRecord, address string) *PropertyFacts {
	facts := &PropertyFacts{
		FormattedAddress: r.FormattedAddress,
		PropertyType:     r.PropertyType,
		Bedrooms:         roundInt(r.Bedrooms),
		Bathrooms:        roundTo(r.Bathrooms, 1),
		SquareFootage:    roundInt(r.SquareFootage),
		YearBuilt:        r.YearBuilt,
		LastSale:         r.LastSaleDate,
		LastSalePrice:    roundWhole(r.LastSalePrice),
	}
	if facts.FormattedAddress == "" {
		facts.FormattedAddress = address
	}
	if facts.PropertyType == "" {
		facts.PropertyType = defaultPropertyType
	}
	return facts
}

func translateProviderError(err error, what string) error {
	var apiErr *external.APIError
	switch {
	case errors.Is(err, external.ErrNotFound):
		return apperror.Wrap(apperror.NotFound, "No "+what+" found for that address", err)
	case errors.As(err, &apiErr):
		return apperror.Wrap(apperror.BadGateway, "Property data service returned an error", err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return apperror.Wrap(apperror.BadGateway, "Property data service is unreachable", err)
	}
}
