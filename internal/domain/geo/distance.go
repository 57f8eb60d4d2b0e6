// Package geo computes distances between coordinates.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by the haversine formula
const EarthRadiusKm = 6371.0

// Point is a latitude/longitude pair in degrees
type Point struct {
	Lat float64
	Lon float64
}

// DistanceKm returns the great-circle distance in kilometres between two
// coordinates given in degrees.
func DistanceKm(originLat, originLon, destLat, destLon float64) float64 {
	dLat := degToRad(destLat - originLat)
	dLon := degToRad(destLon - originLon)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(degToRad(originLat))*math.Cos(degToRad(destLat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// Between is DistanceKm for two points
func Between(from, to Point) float64 {
	return DistanceKm(from.Lat, from.Lon, to.Lat, to.Lon)
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
