package windfield

import (
	"fmt"
	"math"

	"surfscout/internal/geo"
)

// metersPerDegree is the flat-earth conversion used for cell sizing. It is
// intentionally a different constant from the sampler's 111320: the two are
// independently tunable and reconciling them would shift grid alignment.
const metersPerDegree = 111000.0

// maxCells bounds grid iteration so a degenerate or malformed envelope
// cannot produce a runaway loop.
const maxCells = 250000

// DefaultCellSizeMeters matches the resolution the frontend renders at.
const DefaultCellSizeMeters = 1500

// Interpolate produces the dense regular-grid derivative of a field using
// inverse distance weighting. Cell centers are placed at (x+step/2,
// y+step/2) over the polygon envelope and kept only when strictly inside
// the polygon, the same containment test the sampler uses. Distances in the
// weighting stay in degree space, which makes the effective smoothing
// radius latitude-dependent; that simplification is part of the contract.
func Interpolate(field Field, polygon geo.Polygon, cellSizeMeters int, power float64) (Interpolated, error) {
	if len(field.Points) == 0 {
		return Interpolated{}, fmt.Errorf("interpolate field at %s: %w", field.At.Format("2006-01-02 15:04"), ErrInsufficientData)
	}
	if power <= 0 {
		power = 2.0
	}

	env := polygon.Envelope()
	cellSizeDeg := float64(cellSizeMeters) / metersPerDegree

	if estimate := (env.Width() / cellSizeDeg) * (env.Height() / cellSizeDeg); estimate > maxCells {
		return Interpolated{}, fmt.Errorf("envelope would produce %.0f cells, above the %d cap", estimate, maxCells)
	}

	result := Interpolated{
		SessionID:      field.SessionID,
		At:             field.At,
		CellSizeMeters: cellSizeMeters,
	}

	cellID := 0
	for x := env.MinLng; x <= env.MaxLng; x += cellSizeDeg {
		for y := env.MinLat; y <= env.MaxLat; y += cellSizeDeg {
			center := geo.Point{Lng: x + cellSizeDeg/2, Lat: y + cellSizeDeg/2}
			if !polygon.Contains(center) {
				continue
			}

			result.Cells = append(result.Cells, Cell{
				ID:             cellID,
				Center:         center,
				CellSizeMeters: cellSizeMeters,
				SpeedKnots:     interpolateIDW(center, field.Points, power),
			})
			cellID++
		}
	}

	return result, nil
}

// interpolateIDW computes the inverse-distance-weighted speed at a target
// point. The epsilon keeps the weight finite when a sample coincides with
// the target.
func interpolateIDW(target geo.Point, samples []SamplePoint, power float64) float64 {
	const epsilon = 1e-6

	numerator := 0.0
	denominator := 0.0
	for _, s := range samples {
		dx := target.Lng - s.Location.Lng
		dy := target.Lat - s.Location.Lat
		dist := math.Sqrt(dx*dx+dy*dy) + epsilon

		weight := 1.0 / math.Pow(dist, power)
		numerator += weight * s.SpeedKnots
		denominator += weight
	}
	return numerator / denominator
}
