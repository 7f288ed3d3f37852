package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/twpayne/go-polyline"

	"floodroute/internal/types"
)

// googleRoutesURL is the default Google Routes API computeRoutes endpoint.
// Overridable in tests via RoutesClientConfig.RoutesURL.
const googleRoutesURL = "https://routes.googleapis.com/directions/v2:computeRoutes"

// routesFieldMask limits the computeRoutes response to the fields the safety
// filter consumes. Keep in sync with routesAPIRoute.
const routesFieldMask = "routes.duration,routes.distanceMeters,routes.polyline.encodedPolyline"

// RoutesClientConfig holds the configuration for creating a GoogleRoutesClient.
type RoutesClientConfig struct {
	APIKey    string
	RoutesURL string // Override for testing; defaults to googleRoutesURL
	Logger    *slog.Logger
}

// routesAPILatLng mirrors the Routes API coordinate shape.
type routesAPILatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type routesAPIWaypoint struct {
	Location struct {
		LatLng routesAPILatLng `json:"latLng"`
	} `json:"location"`
}

// routesAPIRequest is the computeRoutes request body.
type routesAPIRequest struct {
	Origin                   routesAPIWaypoint `json:"origin"`
	Destination              routesAPIWaypoint `json:"destination"`
	TravelMode               string            `json:"travelMode"`
	ComputeAlternativeRoutes bool              `json:"computeAlternativeRoutes"`
}

// routesAPIRoute is one route in the computeRoutes response. Duration comes
// back as a protobuf duration string like "1234s".
type routesAPIRoute struct {
	Duration       string `json:"duration"`
	DistanceMeters int    `json:"distanceMeters"`
	Polyline       struct {
		EncodedPolyline string `json:"encodedPolyline"`
	} `json:"polyline"`
}

type routesAPIResponse struct {
	Routes []routesAPIRoute `json:"routes"`
}

// GoogleRoutesClient implements RouteProvider against the Google Routes API
// through BaseClient.
type GoogleRoutesClient struct {
	base      *BaseClient
	apiKey    string
	routesURL string
	logger    *slog.Logger
}

// NewGoogleRoutesClient creates a GoogleRoutesClient.
func NewGoogleRoutesClient(httpClient *http.Client, cfg RoutesClientConfig) *GoogleRoutesClient {
	base := NewBaseClient(
		httpClient,
		"google-routes",
		types.ErrCodeUpstreamRouting,
		DefaultRetryPolicy(),
		"FloodRoute/1.0",
	)
	return NewGoogleRoutesClientWithBase(base, cfg)
}

// NewGoogleRoutesClientWithBase creates a GoogleRoutesClient with a
// pre-configured BaseClient.
func NewGoogleRoutesClientWithBase(base *BaseClient, cfg RoutesClientConfig) *GoogleRoutesClient {
	routesURL := cfg.RoutesURL
	if routesURL == "" {
		routesURL = googleRoutesURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &GoogleRoutesClient{
		base:      base,
		apiKey:    cfg.APIKey,
		routesURL: routesURL,
		logger:    logger,
	}
}

// Routes calls computeRoutes with alternatives enabled and returns every
// returned route with its polyline decoded. A provider response with zero
// routes yields an empty slice, not an error.
func (c *GoogleRoutesClient) Routes(ctx context.Context, origin, dest types.Location, travelMode string) ([]types.RouteCandidate, error) {
	if travelMode == "" {
		travelMode = "DRIVE"
	}

	reqBody := routesAPIRequest{
		TravelMode:               strings.ToUpper(travelMode),
		ComputeAlternativeRoutes: true,
	}
	reqBody.Origin.Location.LatLng = routesAPILatLng{Latitude: origin.Lat, Longitude: origin.Lon}
	reqBody.Destination.Location.LatLng = routesAPILatLng{Latitude: dest.Lat, Longitude: dest.Lon}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to serialize route request",
			err,
		)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.routesURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to create route request",
			err,
		)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", routesFieldMask)

	resp, err := c.base.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("Routes API error",
			"status_code", resp.StatusCode,
			"response_body", string(respBytes),
		)
		return nil, types.NewAppError(
			types.ErrCodeUpstreamRouting,
			fmt.Sprintf("route computation returned %d", resp.StatusCode),
			fmt.Errorf("computeRoutes returned %d: %s", resp.StatusCode, respBytes),
		)
	}

	var apiResp routesAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, types.NewAppError(
			types.ErrCodeUpstreamRouting,
			"failed to decode route response",
			err,
		)
	}

	candidates := make([]types.RouteCandidate, 0, len(apiResp.Routes))
	for _, r := range apiResp.Routes {
		enc := r.Polyline.EncodedPolyline
		if enc == "" {
			continue
		}

		points, err := decodePolyline(enc)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping route with undecodable polyline", "error", err)
			continue
		}

		candidates = append(candidates, types.RouteCandidate{
			Polyline:  enc,
			Points:    points,
			DurationS: parseProtoDuration(r.Duration),
			DistanceM: r.DistanceMeters,
		})
	}

	c.logger.InfoContext(ctx, "routes fetched",
		"travel_mode", reqBody.TravelMode,
		"route_count", len(candidates),
	)

	return candidates, nil
}

// decodePolyline decodes a Google encoded polyline into route points.
func decodePolyline(encoded string) ([]types.RoutePoint, error) {
	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, err
	}
	points := make([]types.RoutePoint, len(coords))
	for i, c := range coords {
		points[i] = types.RoutePoint{Lat: c[0], Lon: c[1]}
	}
	return points, nil
}

// parseProtoDuration parses a protobuf duration string ("1234s") into whole
// seconds. Malformed values parse as zero.
func parseProtoDuration(d string) int {
	if d == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSuffix(d, "s"))
	if err != nil || secs < 0 {
		return 0
	}
	return secs
}

// Compile-time interface compliance check.
var _ RouteProvider = (*GoogleRoutesClient)(nil)
