package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"bloomkart/internal/geo"
)

// Result is a resolved delivery address.
type Result struct {
	Coordinate        geo.Coordinate `json:"coordinate"`
	NormalizedAddress string         `json:"normalizedAddress"`
	CountryCode       string         `json:"countryCode"`
}

// Geocoder resolves free-text addresses to coordinates. A nil result with
// a nil error means the address could not be resolved; the pipeline
// degrades to distance-less matching in that case.
type Geocoder interface {
	Resolve(ctx context.Context, addressText string) (*Result, error)
}

// Config holds geocoding provider settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// httpGeocoder calls an external geocoding API.
type httpGeocoder struct {
	config Config
	client *http.Client
	logger zerolog.Logger
}

// NewHTTPGeocoder creates a geocoder backed by an HTTP provider.
func NewHTTPGeocoder(config Config, logger zerolog.Logger) (Geocoder, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("geocoder base URL is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}

	return &httpGeocoder{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: logger.With().Str("component", "geocoder").Logger(),
	}, nil
}

type geocodeResponse struct {
	Lat               float64 `json:"lat"`
	Lon               float64 `json:"lon"`
	NormalizedAddress string  `json:"normalized_address"`
	CountryCode       string  `json:"country_code"`
}

// Resolve looks the address up with the provider. Provider failures and
// empty results both come back as (nil, nil): geocoding is best-effort and
// must never block checkout.
func (g *httpGeocoder) Resolve(ctx context.Context, addressText string) (*Result, error) {
	if addressText == "" {
		return nil, nil
	}

	reqURL := fmt.Sprintf("%s/v1/geocode?q=%s", g.config.BaseURL, url.QueryEscape(addressText))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build geocode request: %w", err)
	}
	if g.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.config.APIKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn().Err(err).Msg("geocode call failed")
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.logger.Warn().Int("status", resp.StatusCode).Msg("geocoder returned error status")
		return nil, nil
	}

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		g.logger.Warn().Err(err).Msg("failed to decode geocode response")
		return nil, nil
	}

	coord := geo.Coordinate{Lat: decoded.Lat, Lon: decoded.Lon}
	if !coord.Valid() {
		return nil, nil
	}

	return &Result{
		Coordinate:        coord,
		NormalizedAddress: decoded.NormalizedAddress,
		CountryCode:       decoded.CountryCode,
	}, nil
}

// Disabled is a Geocoder that never resolves anything; used when no
// provider is configured.
type Disabled struct{}

func (Disabled) Resolve(ctx context.Context, addressText string) (*Result, error) {
	return nil, nil
}
