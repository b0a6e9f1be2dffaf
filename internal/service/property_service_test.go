package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kylewspence/FinSight/internal/repository"
	"github.com/kylewspence/FinSight/internal/testutil"
	"github.com/kylewspence/FinSight/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLookup struct {
	details *PropertyDetails
	err     error
	calls   int
}

func (s *stubLookup) GetPropertyDetails(ctx context.Context, address string) (*PropertyDetails, error) {
	s.calls++
	return s.details, s.err
}

var (
	alice = Identity{UserID: 1, UserName: "alice"}
	bob   = Identity{UserID: 2, UserName: "bob"}
)

func newPropertyService(t *testing.T, lookup PropertyLookup, mapsKey string) *PropertyService {
	t.Helper()
	db := testutil.NewTestDB(t)
	return NewPropertyService(repository.NewPropertyRepository(db), lookup, mapsKey)
}

func TestCreatePropertyDefaults(t *testing.T) {
	svc := newPropertyService(t, nil, "maps-key")
	ctx := context.Background()

	p, err := svc.Create(ctx, alice, CreatePropertyRequest{
		FormattedAddress: "  12 Pine Rd, Boise, ID  ",
		Price:            350000.6,
		MonthlyRent:      2100.5,
		InterestRate:     6.12549,
		Bathrooms:        2.46,
	})
	require.NoError(t, err)

	assert.Equal(t, "12 Pine Rd, Boise, ID", p.FormattedAddress)
	assert.Equal(t, "Single Family", p.PropertyType)
	assert.Equal(t, 350001.0, p.Price)
	assert.Equal(t, 2101.0, p.MonthlyRent)
	assert.Equal(t, 6.125, p.InterestRate)
	assert.Equal(t, 2.5, p.Bathrooms)
	assert.Equal(t, "", p.LastSale)
	assert.True(t, strings.HasPrefix(p.Image, "https://maps.googleapis.com/maps/api/streetview?size=600x400&location=12+Pine+Rd%2C+Boise%2C+ID&key=maps-key"), p.Image)
}

func TestCreatePropertyWithoutMapsKey(t *testing.T) {
	svc := newPropertyService(t, nil, "")

	p, err := svc.Create(context.Background(), alice, CreatePropertyRequest{FormattedAddress: "1 A St"})
	require.NoError(t, err)
	assert.Empty(t, p.Image)
}

func TestCreatePropertyRequiresAddress(t *testing.T) {
	svc := newPropertyService(t, nil, "")

	_, err := svc.Create(context.Background(), alice, CreatePropertyRequest{FormattedAddress: "   "})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestCreatePropertyLookupFillsBlanks(t *testing.T) {
	lookup := &stubLookup{details: &PropertyDetails{
		PropertyFacts: PropertyFacts{PropertyType: "Condo", Bedrooms: 2, Bathrooms: 1, SquareFootage: 850, YearBuilt: 2004},
		ValueEstimate: ValueEstimate{Price: 300000, PriceRangeLow: 280000, PriceRangeHigh: 320000},
	}}
	svc := newPropertyService(t, lookup, "")

	p, err := svc.Create(context.Background(), alice, CreatePropertyRequest{
		FormattedAddress: "5 Bay St",
		Bedrooms:         3,
		Lookup:           true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, lookup.calls)
	assert.Equal(t, "Condo", p.PropertyType)
	assert.Equal(t, 3, p.Bedrooms, "caller-supplied value wins")
	assert.Equal(t, 850, p.SquareFootage)
	assert.Equal(t, 300000.0, p.Price)
}

func TestCreatePropertyLookupFailureIsNotFatal(t *testing.T) {
	lookup := &stubLookup{err: errors.New("upstream down")}
	svc := newPropertyService(t, lookup, "")

	p, err := svc.Create(context.Background(), alice, CreatePropertyRequest{FormattedAddress: "5 Bay St", Lookup: true})
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Price)
}

func TestPropertyOwnership(t *testing.T) {
	svc := newPropertyService(t, nil, "")
	ctx := context.Background()

	p, err := svc.Create(ctx, alice, CreatePropertyRequest{FormattedAddress: "9 Elm"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob, p.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound, "foreign rows look absent on read")

	rent := 1500.0
	_, err = svc.Update(ctx, bob, p.ID, UpdatePropertyRequest{MonthlyRent: &rent})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	err = svc.Delete(ctx, bob, p.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.Update(ctx, alice, 9999, UpdatePropertyRequest{MonthlyRent: &rent})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	list, err := svc.List(ctx, bob)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestUpdatePropertyIsPartial(t *testing.T) {
	svc := newPropertyService(t, nil, "")
	ctx := context.Background()

	p, err := svc.Create(ctx, alice, CreatePropertyRequest{
		FormattedAddress: "9 Elm",
		Notes:            "original",
		MonthlyRent:      1200,
		MortgagePayment:  900,
		Price:            250000,
	})
	require.NoError(t, err)

	rent := 1350.4
	updated, err := svc.Update(ctx, alice, p.ID, UpdatePropertyRequest{MonthlyRent: &rent})
	require.NoError(t, err)

	assert.Equal(t, 1350.0, updated.MonthlyRent)
	assert.Equal(t, "original", updated.Notes)
	assert.Equal(t, 900.0, updated.MortgagePayment)
	assert.Equal(t, 250000.0, updated.Price)

	reloaded, err := svc.Get(ctx, alice, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1350.0, reloaded.MonthlyRent)
}

func TestDeletePropertyTwice(t *testing.T) {
	svc := newPropertyService(t, nil, "")
	ctx := context.Background()

	p, err := svc.Create(ctx, alice, CreatePropertyRequest{FormattedAddress: "9 Elm"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, alice, p.ID))
	assert.ErrorIs(t, svc.Delete(ctx, alice, p.ID), apperror.ErrNotFound)
}
