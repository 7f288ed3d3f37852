package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"floodroute/internal/types"
)

// googleGeocodeURL is the default Google Geocoding API endpoint.
// Overridable in tests via GeocodeClientConfig.GeocodeURL.
const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GeocodeClientConfig holds the configuration for creating a GoogleGeocoder.
type GeocodeClientConfig struct {
	APIKey     string
	GeocodeURL string // Override for testing; defaults to googleGeocodeURL
	Region     string // region bias, e.g. "my"
	Logger     *slog.Logger
}

// geocodeAPIResponse is the subset of the Geocoding API response we read.
type geocodeAPIResponse struct {
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
	Status string `json:"status"`
}

// GoogleGeocoder implements Geocoder against the Google Geocoding API through
// BaseClient.
type GoogleGeocoder struct {
	base       *BaseClient
	apiKey     string
	geocodeURL string
	region     string
	logger     *slog.Logger
}

// NewGoogleGeocoder creates a GoogleGeocoder.
func NewGoogleGeocoder(httpClient *http.Client, cfg GeocodeClientConfig) *GoogleGeocoder {
	base := NewBaseClient(
		httpClient,
		"google-geocode",
		types.ErrCodeUpstreamGeocoding,
		DefaultRetryPolicy(),
		"FloodRoute/1.0",
	)
	return NewGoogleGeocoderWithBase(base, cfg)
}

// NewGoogleGeocoderWithBase creates a GoogleGeocoder with a pre-configured
// BaseClient.
func NewGoogleGeocoderWithBase(base *BaseClient, cfg GeocodeClientConfig) *GoogleGeocoder {
	geocodeURL := cfg.GeocodeURL
	if geocodeURL == "" {
		geocodeURL = googleGeocodeURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &GoogleGeocoder{
		base:       base,
		apiKey:     cfg.APIKey,
		geocodeURL: geocodeURL,
		region:     cfg.Region,
		logger:     logger,
	}
}

// Geocode resolves a place name to coordinates. A "lat,lon" shorthand is
// parsed locally without an API call; anything else goes to the provider.
func (c *GoogleGeocoder) Geocode(ctx context.Context, place string) (types.Location, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return types.Location{}, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"place is required for geocoding",
			nil,
		)
	}

	if loc, ok := ParseLatLng(place); ok {
		return loc, nil
	}

	params := url.Values{}
	params.Set("address", place)
	params.Set("key", c.apiKey)
	if c.region != "" {
		params.Set("region", c.region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.geocodeURL+"?"+params.Encode(), nil)
	if err != nil {
		return types.Location{}, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to create geocode request",
			err,
		)
	}

	resp, err := c.base.Do(req)
	if err != nil {
		return types.Location{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("Geocoding API error",
			"status_code", resp.StatusCode,
			"response_body", string(respBytes),
		)
		return types.Location{}, types.NewAppError(
			types.ErrCodeUpstreamGeocoding,
			fmt.Sprintf("geocoding returned %d", resp.StatusCode),
			fmt.Errorf("geocode returned %d: %s", resp.StatusCode, respBytes),
		)
	}

	var apiResp geocodeAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return types.Location{}, types.NewAppError(
			types.ErrCodeUpstreamGeocoding,
			"failed to decode geocode response",
			err,
		)
	}

	if len(apiResp.Results) == 0 {
		return types.Location{}, types.NewAppErrorWithDetails(
			types.ErrCodeNotFoundLocation,
			fmt.Sprintf("could not geocode %q", place),
			nil,
			map[string]any{"place": place, "status": apiResp.Status},
		)
	}

	first := apiResp.Results[0]
	return types.Location{
		Lat:         first.Geometry.Location.Lat,
		Lon:         first.Geometry.Location.Lng,
		DisplayName: first.FormattedAddress,
	}, nil
}

// ParseLatLng parses a "lat,lon" shorthand into a Location. It returns false
// for anything that is not exactly two comma-separated numbers inside valid
// coordinate ranges.
func ParseLatLng(text string) (types.Location, bool) {
	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return types.Location{}, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return types.Location{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return types.Location{}, false
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return types.Location{}, false
	}

	return types.Location{Lat: lat, Lon: lon}, true
}

// Compile-time interface compliance check.
var _ Geocoder = (*GoogleGeocoder)(nil)
