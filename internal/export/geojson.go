// Package export renders stored points for map frontends.
package export

import (
	"encoding/json"
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/UnknownOlympus/waypoint/internal/models"
)

// FeatureCollection converts points into GeoJSON point features. Coordinates are in
// longitude, latitude order; properties carry the record fields and the marker colour.
func FeatureCollection(points []models.PointRecord) *geojson.FeatureCollection {
	features := make([]*geojson.Feature, 0, len(points))
	for _, p := range points {
		features = append(features, &geojson.Feature{
			ID:       p.ID,
			Geometry: geom.NewPointFlat(geom.XY, []float64{p.Location.Longitude, p.Location.Latitude}),
			Properties: map[string]any{
				"sourceAddress": p.SourceAddress,
				"displayName":   p.DisplayName,
				"referenceCode": p.ReferenceCode,
				"deviceId":      p.DeviceID,
				"reasonText":    p.ReasonText,
				"ticket":        p.Ticket,
				"orderNumber":   p.OrderNumber,
				"priority":      string(p.Priority),
				"marker-color":  p.Priority.Color(),
				"createdAt":     p.CreatedAt,
			},
		})
	}

	return &geojson.FeatureCollection{Features: features}
}

// MarshalGeoJSON returns the points as a GeoJSON FeatureCollection document.
func MarshalGeoJSON(points []models.PointRecord) ([]byte, error) {
	data, err := json.Marshal(FeatureCollection(points))
	if err != nil {
		return nil, fmt.Errorf("failed to encode geojson: %w", err)
	}

	return data, nil
}
