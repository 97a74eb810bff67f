// Package geo computes distances between locations and picks runners by proximity.
package geo

import (
	"math"

	"hustle/internal/domain"
)

const (
	earthRadiusKm = 6371.0

	// averageSpeedKmh is the assumed runner speed for arrival estimates.
	averageSpeedKmh = 20.0
	// handlingMinutes covers pickup and hand-off.
	handlingMinutes = 10.0
)

// Distance returns the haversine great-circle distance between a and b in
// kilometers, rounded to two decimal places.
func Distance(a, b domain.Location) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return math.Round(earthRadiusKm*c*100) / 100
}

// EstimateDeliveryTime returns the expected minutes to cover distanceKm,
// including handling time, rounded up.
func EstimateDeliveryTime(distanceKm float64) int {
	return int(math.Ceil(distanceKm/averageSpeedKmh*60 + handlingMinutes))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
