package geo

import (
	"math"

	"restaurant_map/internal/models"
)

// EarthRadius is the mean earth radius in meters used for sphere geometry.
const EarthRadius = 6371008.8

// Distance returns the great-circle distance in meters between two points.
func Distance(a, b models.LngLat) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadius * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
