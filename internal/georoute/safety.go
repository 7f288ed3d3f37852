package georoute

import "floodroute/internal/types"

// IsUnsafe reports whether any decoded point of the route lies strictly
// inside any hazard's exclusion radius. A point exactly on the boundary
// (distance == radius) is safe. An empty hazard set makes every route safe.
//
// Complexity is O(points x hazards); hazard sets are bounded (the most recent
// handful of assessments), so no spatial index is needed.
func IsUnsafe(route types.RouteCandidate, hazards []types.Hazard) bool {
	for _, p := range route.Points {
		for _, hz := range hazards {
			if HaversineM(p.Lat, p.Lon, hz.Lat, hz.Lon) < float64(hz.RadiusM) {
				return true
			}
		}
	}
	return false
}

// MinDistanceM returns the smallest haversine distance in meters from any
// point of the route to any hazard center. Returns nil when either the
// hazard set or the point list is empty: there is no distance to report,
// and a nil is safer to serialize than an infinity.
func MinDistanceM(route types.RouteCandidate, hazards []types.Hazard) *float64 {
	if len(hazards) == 0 || len(route.Points) == 0 {
		return nil
	}
	min := HaversineM(route.Points[0].Lat, route.Points[0].Lon, hazards[0].Lat, hazards[0].Lon)
	for _, p := range route.Points {
		for _, hz := range hazards {
			if d := HaversineM(p.Lat, p.Lon, hz.Lat, hz.Lon); d < min {
				min = d
			}
		}
	}
	return &min
}
