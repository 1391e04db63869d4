package geocoding

import (
	"context"

	"github.com/UnknownOlympus/waypoint/internal/models"
)

// Provider is an interface that defines a method for geocoding a free-text query.
// Geocode returns the provider's matches ordered by rank. Zero matches is an empty
// slice with a nil error; an error means the provider could not be asked or answered
// with something unusable.
type Provider interface {
	Geocode(ctx context.Context, query string) ([]models.GeoResult, error)
}
