package geocode

import (
	"github.com/golang/geo/s2"

	"github.com/fixthesign/fixthesign/app/models"
)

// Mean earth radius in meters.
const earthRadiusMeters = 6371010.0

// DistanceMeters returns the great-circle distance between two coordinates.
func DistanceMeters(a, b models.Location) float64 {
	la := s2.LatLngFromDegrees(a.Lat, a.Lng)
	lb := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return la.Distance(lb).Radians() * earthRadiusMeters
}

// WithinMeters reports whether two coordinates lie within radius meters of
// each other. Used to sanity-check a manually entered address against the
// device position before submitting.
func WithinMeters(a, b models.Location, radius float64) bool {
	return DistanceMeters(a, b) <= radius
}
