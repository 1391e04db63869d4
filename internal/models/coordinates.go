package models

import "math"

// Coordinates represents a geographical point defined by its latitude and longitude (WGS84).
type Coordinates struct {
	Latitude  float64 `json:"latitude"`  // Latitude of the geographical point.
	Longitude float64 `json:"longitude"` // Longitude of the geographical point.
}

// Valid reports whether both components are finite and inside the WGS84 ranges.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0) ||
		math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0) {
		return false
	}

	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// GeoResult is a single match returned by a geocoding provider.
type GeoResult struct {
	Coordinates

	DisplayName string `json:"displayName"` // Human-readable echo of the matched location.
}
