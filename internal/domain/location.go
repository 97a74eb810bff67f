package domain

import "github.com/mmcloughlin/geohash"

// Location is a point on the map as picked or detected by a user.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
	City      string  `json:"city,omitempty"`
}

// DefaultGeohashPrecision gives cells of roughly 150m.
const DefaultGeohashPrecision uint = 7

// Geohash encodes the location with the given precision.
func (l Location) Geohash(precision uint) string {
	return geohash.EncodeWithPrecision(l.Latitude, l.Longitude, precision)
}

// Valid reports whether the coordinates are within range.
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}
