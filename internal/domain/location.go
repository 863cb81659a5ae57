package domain

import "math"

// Location is a WGS 84 point.
type Location struct {
	Lon float64
	Lat float64
}

const earthRadiusKm = 6371

// DistanceKm returns the great-circle distance to other in kilometers
// using the haversine formula. The store's spatial query is authoritative
// for proximity ordering; this is for application-level logging only.
func (l Location) DistanceKm(other Location) float64 {
	dLat := toRadians(other.Lat - l.Lat)
	dLon := toRadians(other.Lon - l.Lon)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(l.Lat))*math.Cos(toRadians(other.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
