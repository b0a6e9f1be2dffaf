package rentcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kylewspence/FinSight/internal/external"
)

const (
	defaultBaseURL = "https://api.rentcast.io/v1"
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 512
)

// ErrMissingAPIKey is returned when no API key is configured
var ErrMissingAPIKey = errors.New("rentcast api key is not configured")

// Client is a RentCast REST API client
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new RentCast client
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetProperty fetches the property record for an address.
// The API answers with either an array or a single object.
func (c *Client) GetProperty(ctx context.Context, address string) (*external.PropertyRecord, error) {
	q := url.Values{}
	q.Set("address", address)

	body, err := c.get(ctx, "/properties", q)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var records []external.PropertyRecord
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, fmt.Errorf("decode property list: %w", err)
		}
		if len(records) == 0 {
			return nil, external.ErrNotFound
		}
		return &records[0], nil
	}

	var record external.PropertyRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("decode property: %w", err)
	}
	if record.ID == "" && record.FormattedAddress == "" {
		return nil, external.ErrNotFound
	}
	return &record, nil
}

// GetValue fetches an automated valuation for an address
func (c *Client) GetValue(ctx context.Context, address string, params external.ValueParams) (*external.ValueEstimate, error) {
	q := url.Values{}
	q.Set("address", address)
	if params.PropertyType != "" {
		q.Set("propertyType", params.PropertyType)
	}
	if params.Bedrooms > 0 {
		q.Set("bedrooms", formatNumber(params.Bedrooms))
	}
	if params.Bathrooms > 0 {
		q.Set("bathrooms", formatNumber(params.Bathrooms))
	}
	if params.SquareFootage > 0 {
		q.Set("squareFootage", formatNumber(params.SquareFootage))
	}

	body, err := c.get(ctx, "/avm/value", q)
	if err != nil {
		return nil, err
	}

	var estimate external.ValueEstimate
	if err := json.Unmarshal(body, &estimate); err != nil {
		return nil, fmt.Errorf("decode value estimate: %w", err)
	}
	return &estimate, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rentcast request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rentcast response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, external.ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		msg := string(body)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		log.Printf("[RentCast] %s returned status %d", path, resp.StatusCode)
		return nil, &external.APIError{Service: "rentcast", StatusCode: resp.StatusCode, Body: msg}
	}

	return body, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
