package geocoding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/waypoint/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider is a struct that holds the client for Google Maps API
// and a logger for logging purposes. It is used to interact with the
// Google Maps geocoding services.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	region string          // region is the ccTLD used to bias results, e.g. "de"
	log    *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	Geocode(ctx context.Context, r *maps.GeocodingRequest) ([]maps.GeocodingResult, error)
}

// NewGoogleProvider wraps an initialized Google Maps client. An empty region disables region biasing.
func NewGoogleProvider(client GoogleAPIClient, region string, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, region: region, log: log}
}

// Geocode takes a context and a query string as input, and returns the ranked matches
// of the Google Maps Geocoding API. ZERO_RESULTS is reported by the client as an empty
// result list, which is passed through unchanged.
func (gp *GoogleProvider) Geocode(ctx context.Context, query string) ([]models.GeoResult, error) {
	gp.log.DebugContext(ctx, "Geocoding using Google Maps", "query", query)

	req := maps.GeocodingRequest{Address: query, Region: gp.region}
	geocodeResponse, err := gp.client.Geocode(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode address: %w", err)
	}

	results := make([]models.GeoResult, 0, len(geocodeResponse))
	for _, res := range geocodeResponse {
		loc := res.Geometry.Location
		results = append(results, models.GeoResult{
			Coordinates: models.Coordinates{Latitude: loc.Lat, Longitude: loc.Lng},
			DisplayName: res.FormattedAddress,
		})
	}

	return results, nil
}
