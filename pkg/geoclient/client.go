// Package geoclient provides address lookup via the NYC Geoclient API.
package geoclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.nyc.gov/geo/geoclient/v1"

// Client looks up a single NYC street address.
type Client interface {
	// Lookup resolves houseNumber + street (+ optional borough) to a tax lot.
	Lookup(ctx context.Context, houseNumber, street, borough string) (*Address, error)
}

// Address holds the lookup output for an address.
type Address struct {
	BBL         string
	HouseNumber string
	StreetName  string
	Borough     string
	ZipCode     string
	BIN         string
	Latitude    float64
	Longitude   float64
	Matched     bool
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second rate limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type client struct {
	baseURL    string
	appID      string
	appKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Client authenticated with the given credentials.
func NewClient(appID, appKey string, opts ...Option) Client {
	c := &client{
		baseURL:    defaultBaseURL,
		appID:      appID,
		appKey:     appKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(5, 5), // Geoclient default: 5 req/s
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// addressResponse is the JSON response from the Geoclient address endpoint.
type addressResponse struct {
	Address struct {
		BBL          string  `json:"bbl"`
		HouseNumber  string  `json:"houseNumber"`
		FirstStreet  string  `json:"firstStreetNameNormalized"`
		FirstBorough string  `json:"firstBoroughName"`
		ZipCode      string  `json:"zipCode"`
		BIN          string  `json:"buildingIdentificationNumber"`
		Latitude     float64 `json:"latitude"`
		Longitude    float64 `json:"longitude"`
		ReturnCode   string  `json:"geosupportReturnCode"`
		Message      string  `json:"message"`
	} `json:"address"`
}

// Lookup calls the single-address endpoint. A response without a bbl field is
// an unmatched result, not an error.
func (c *client) Lookup(ctx context.Context, houseNumber, street, borough string) (*Address, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geoclient: rate limit")
	}

	params := url.Values{
		"houseNumber": {houseNumber},
		"street":      {street},
	}
	if borough != "" {
		params.Set("borough", borough)
	}
	if c.appID != "" {
		params.Set("app_id", c.appID)
	}
	if c.appKey != "" {
		params.Set("app_key", c.appKey)
	}

	reqURL := c.baseURL + "/address.json?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "geoclient: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geoclient: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geoclient: returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geoclient: read body")
	}

	var parsed addressResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "geoclient: parse response")
	}

	if parsed.Address.BBL == "" {
		return &Address{Matched: false}, nil
	}

	return &Address{
		BBL:         parsed.Address.BBL,
		HouseNumber: parsed.Address.HouseNumber,
		StreetName:  parsed.Address.FirstStreet,
		Borough:     parsed.Address.FirstBorough,
		ZipCode:     parsed.Address.ZipCode,
		BIN:         parsed.Address.BIN,
		Latitude:    parsed.Address.Latitude,
		Longitude:   parsed.Address.Longitude,
		Matched:     true,
	}, nil
}
