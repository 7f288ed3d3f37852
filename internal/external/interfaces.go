package external

import (
	"context"

	"floodroute/internal/types"
)

// WarningSource fetches active official weather warnings for a location.
type WarningSource interface {
	// ActiveWarnings returns today's warnings for the given location ID,
	// together with the data category that produced them. An empty slice with
	// no error means no warnings are in effect.
	ActiveWarnings(ctx context.Context, locationID string) ([]types.WarningResult, string, error)
}

// RouteProvider computes candidate routes between an origin and destination,
// alternatives included.
type RouteProvider interface {
	Routes(ctx context.Context, origin, dest types.Location, travelMode string) ([]types.RouteCandidate, error)
}

// Geocoder resolves a free-form place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, place string) (types.Location, error)
}
