// Package georoute implements the geometric half of the engine: great-circle
// distance, the route safety predicate, and best-route selection over a set
// of candidate routes and active hazards.
package georoute

import "math"

// earthRadiusKM is the mean Earth radius used for haversine distances.
const earthRadiusKM = 6371.0

// HaversineM returns the great-circle distance in meters between two
// latitude/longitude points on a sphere of mean Earth radius.
func HaversineM(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)

	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a)) * 1000
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
