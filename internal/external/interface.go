package external

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when the remote service has no record for the query
var ErrNotFound = errors.New("record not found")

// APIError is a non-2xx response from a remote service
type APIError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Service, e.StatusCode, e.Body)
}

// PropertyRecord is the public-record description of a property
type PropertyRecord struct {
	ID               string  `json:"id"`
	FormattedAddress string  `json:"formattedAddress"`
	PropertyType     string  `json:"propertyType"`
	Bedrooms         float64 `json:"bedrooms"`
	Bathrooms        float64 `json:"bathrooms"`
	SquareFootage    float64 `json:"squareFootage"`
	YearBuilt        int     `json:"yearBuilt"`
	LastSaleDate     string  `json:"lastSaleDate"`
	LastSalePrice    float64 `json:"lastSalePrice"`
}

// ValueEstimate is an automated valuation with its confidence range
type ValueEstimate struct {
	Price          float64 `json:"price"`
	PriceRangeLow  float64 `json:"priceRangeLow"`
	PriceRangeHigh float64 `json:"priceRangeHigh"`
}

// ValueParams narrows a valuation request. Zero values are omitted.
type ValueParams struct {
	PropertyType  string
	Bedrooms      float64
	Bathrooms     float64
	SquareFootage float64
}

// PropertyDataProvider looks up property records and valuations
type PropertyDataProvider interface {
	// GetProperty returns the record for an address or ErrNotFound
	GetProperty(ctx context.Context, address string) (*PropertyRecord, error)

	// GetValue returns a valuation estimate for an address
	GetValue(ctx context.Context, address string, params ValueParams) (*ValueEstimate, error)
}

// Completer sends prompts to a language model and returns its raw text
type Completer interface {
	Complete(ctx context.Context, system string, prompts []string) (string, error)
}
