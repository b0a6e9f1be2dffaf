package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kylewspence/FinSight/internal/external"
	"github.com/kylewspence/FinSight/internal/external/rentcast"
	"github.com/kylewspence/FinSight/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	data map[string][]byte
}

func (m *mapCache) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *mapCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func rentcastServer(t *testing.T, valueStatus int, propertyCalls *int32) *rentcast.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/properties":
			atomic.AddInt32(propertyCalls, 1)
			if r.URL.Query().Get("address") == "missing" {
				_, _ = w.Write([]byte(`[]`))
				return
			}
			_, _ = w.Write([]byte(`[{"id":"p1","formattedAddress":"7 Lake Dr, Reno, NV","bedrooms":3,"bathrooms":2,"squareFootage":1600,"yearBuilt":1988,"lastSaleDate":"2019-06-01","lastSalePrice":289999.5}]`))
		case "/avm/value":
			if valueStatus != http.StatusOK {
				w.WriteHeader(valueStatus)
				return
			}
			assert.Equal(t, "Single Family", r.URL.Query().Get("propertyType"))
			assert.Equal(t, "1600", r.URL.Query().Get("squareFootage"))
			_, _ = w.Write([]byte(`{"price":455000.4,"priceRangeLow":430000,"priceRangeHigh":480000}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return rentcast.NewClient("key", srv.URL, 5*time.Second)
}

func TestGetPropertyDetailsMergesValue(t *testing.T) {
	var calls int32
	cache := &mapCache{data: map[string][]byte{}}
	svc := NewValuationService(rentcastServer(t, http.StatusOK, &calls), cache, time.Hour)

	details, err := svc.GetPropertyDetails(context.Background(), "7 Lake Dr, Reno, NV")
	require.NoError(t, err)

	assert.Equal(t, "Single Family", details.PropertyType, "missing type defaults")
	assert.Equal(t, 3, details.Bedrooms)
	assert.Equal(t, "2019-06-01", details.LastSale)
	assert.Equal(t, 290000.0, details.LastSalePrice)
	assert.Equal(t, 455000.0, details.Price)
	assert.Equal(t, 455000.0, details.EstimatedValue)

	_, err = svc.GetPropertyDetails(context.Background(), "7 lake dr,  reno, nv")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second lookup served from cache")
}

func TestGetPropertyDetailsValueFailureIsBestEffort(t *testing.T) {
	var calls int32
	svc := NewValuationService(rentcastServer(t, http.StatusInternalServerError, &calls), nil, 0)

	details, err := svc.GetPropertyDetails(context.Background(), "7 Lake Dr")
	require.NoError(t, err)
	assert.Equal(t, 1600, details.SquareFootage)
	assert.Zero(t, details.Price)
	assert.Zero(t, details.PriceRangeLow)
	assert.Zero(t, details.PriceRangeHigh)
	assert.Zero(t, details.EstimatedValue)
}

func TestLookupErrors(t *testing.T) {
	var calls int32
	svc := NewValuationService(rentcastServer(t, http.StatusBadGateway, &calls), nil, 0)
	ctx := context.Background()

	_, err := svc.LookupProperty(ctx, "  ")
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	_, err = svc.GetPropertyDetails(ctx, "missing")
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.LookupValue(ctx, "7 Lake Dr", external.ValueParams{})
	assert.ErrorIs(t, err, apperror.ErrBadGateway)

	unconfigured := NewValuationService(nil, nil, 0)
	_, err = unconfigured.LookupProperty(ctx, "7 Lake Dr")
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
}
