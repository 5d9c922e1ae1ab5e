package windfield

import (
	"encoding/json"
	"fmt"
)

// GeoJSON document types for the export surface. Geometry squares are
// rendered in degrees with half = cellSize / 111000 / 2, consistent with
// the interpolator's conversion.

type geoJSONGeometry struct {
	Type        string         `json:"type"`
	Coordinates [][][2]float64 `json:"coordinates"`
}

type geoJSONFeature struct {
	Type       string                 `json:"type"`
	Geometry   geoJSONGeometry        `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

type geoJSONMetadata struct {
	Date           string `json:"date"`
	Timestamp      string `json:"timestamp"`
	CellSizeMeters int    `json:"cellSizeMeters"`
}

type geoJSONFeatureCollection struct {
	Type     string           `json:"type"`
	Metadata geoJSONMetadata  `json:"metadata"`
	Features []geoJSONFeature `json:"features"`
}

// BuildGeoJSON renders an interpolated field as a GeoJSON FeatureCollection:
// one square Polygon feature per cell carrying windSpeedKnots and a stable
// cellId, plus date/timestamp/cellSizeMeters metadata at collection level.
func BuildGeoJSON(field Interpolated) (string, error) {
	collection := geoJSONFeatureCollection{
		Type: "FeatureCollection",
		Metadata: geoJSONMetadata{
			Date:           field.DateString(),
			Timestamp:      field.ClockString(),
			CellSizeMeters: field.CellSizeMeters,
		},
		Features: make([]geoJSONFeature, 0, len(field.Cells)),
	}

	for _, cell := range field.Cells {
		half := float64(cell.CellSizeMeters) / metersPerDegree / 2.0
		cx, cy := cell.Center.Lng, cell.Center.Lat

		ring := [][2]float64{
			{cx - half, cy - half},
			{cx + half, cy - half},
			{cx + half, cy + half},
			{cx - half, cy + half},
			{cx - half, cy - half},
		}

		collection.Features = append(collection.Features, geoJSONFeature{
			Type: "Feature",
			Geometry: geoJSONGeometry{
				Type:        "Polygon",
				Coordinates: [][][2]float64{ring},
			},
			Properties: map[string]interface{}{
				"windSpeedKnots": cell.SpeedKnots,
				"cellId":         cell.ID,
			},
		})
	}

	data, err := json.Marshal(collection)
	if err != nil {
		return "", fmt.Errorf("marshal geojson: %w", err)
	}
	return string(data), nil
}
