package georoute

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floodroute/internal/types"
)

func routeAt(points ...types.RoutePoint) types.RouteCandidate {
	return types.RouteCandidate{Points: points}
}

func TestIsUnsafe_EmptyHazards(t *testing.T) {
	route := routeAt(types.RoutePoint{Lat: 3.1, Lon: 101.6})
	assert.False(t, IsUnsafe(route, nil))
	assert.False(t, IsUnsafe(route, []types.Hazard{}))
}

func TestIsUnsafe_PointInsideRadius(t *testing.T) {
	hz := types.Hazard{Lat: 3.1, Lon: 101.6, RadiusM: 5000}
	// ~1.6 km from the hazard center.
	route := routeAt(types.RoutePoint{Lat: 3.11, Lon: 101.61})
	assert.True(t, IsUnsafe(route, []types.Hazard{hz}))
}

func TestIsUnsafe_AllPointsOutside(t *testing.T) {
	hz := types.Hazard{Lat: 3.1, Lon: 101.6, RadiusM: 5000}
	route := routeAt(
		types.RoutePoint{Lat: 3.5, Lon: 101.6},
		types.RoutePoint{Lat: 3.6, Lon: 101.7},
	)
	assert.False(t, IsUnsafe(route, []types.Hazard{hz}))
}

func TestIsUnsafe_BoundaryIsStrict(t *testing.T) {
	// Distance equal to the radius is safe; only strictly inside is unsafe.
	center := types.RoutePoint{Lat: 3.1, Lon: 101.6}
	point := types.RoutePoint{Lat: 3.14, Lon: 101.63}
	d := HaversineM(point.Lat, point.Lon, center.Lat, center.Lon)
	require.Greater(t, d, 0.0)

	atBoundary := types.Hazard{Lat: center.Lat, Lon: center.Lon, RadiusM: int(math.Floor(d))}
	justInside := types.Hazard{Lat: center.Lat, Lon: center.Lon, RadiusM: int(math.Floor(d)) + 1}

	assert.False(t, IsUnsafe(routeAt(point), []types.Hazard{atBoundary}))
	assert.True(t, IsUnsafe(routeAt(point), []types.Hazard{justInside}))

	// Exact equality: a point on the hazard center with a zero radius is safe.
	assert.False(t, IsUnsafe(routeAt(center), []types.Hazard{{Lat: center.Lat, Lon: center.Lon, RadiusM: 0}}))
	assert.True(t, IsUnsafe(routeAt(center), []types.Hazard{{Lat: center.Lat, Lon: center.Lon, RadiusM: 1}}))
}

func TestIsUnsafe_AnyHazardTriggers(t *testing.T) {
	far := types.Hazard{Lat: 5.0, Lon: 100.0, RadiusM: 1000}
	near := types.Hazard{Lat: 3.1, Lon: 101.6, RadiusM: 5000}
	route := routeAt(types.RoutePoint{Lat: 3.1, Lon: 101.6})

	assert.False(t, IsUnsafe(route, []types.Hazard{far}))
	assert.True(t, IsUnsafe(route, []types.Hazard{far, near}))
}

func TestMinDistanceM(t *testing.T) {
	hz := []types.Hazard{
		{Lat: 3.1, Lon: 101.6, RadiusM: 1000},
		{Lat: 4.0, Lon: 102.0, RadiusM: 1000},
	}
	route := routeAt(
		types.RoutePoint{Lat: 3.3, Lon: 101.7},
		types.RoutePoint{Lat: 3.2, Lon: 101.65},
	)

	got := MinDistanceM(route, hz)
	require.NotNil(t, got)

	want := math.Inf(1)
	for _, p := range route.Points {
		for _, h := range hz {
			if d := HaversineM(p.Lat, p.Lon, h.Lat, h.Lon); d < want {
				want = d
			}
		}
	}
	assert.Equal(t, want, *got)
}

func TestMinDistanceM_NoHazards(t *testing.T) {
	route := routeAt(types.RoutePoint{Lat: 3.1, Lon: 101.6})
	assert.Nil(t, MinDistanceM(route, nil))
}

func TestMinDistanceM_NoPoints(t *testing.T) {
	hz := []types.Hazard{{Lat: 3.1, Lon: 101.6, RadiusM: 1000}}
	assert.Nil(t, MinDistanceM(types.RouteCandidate{}, hz))
}
