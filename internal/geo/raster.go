package geo

import "math"

// metersPerDegreeLat is the flat-earth conversion used for raster spacing.
// One degree of latitude is roughly 111320 m; longitude shrinks with
// cos(latitude). This approximation holds for polygon extents of a few tens
// of kilometers and breaks down near the poles, where cos approaches zero
// and the longitude step degenerates. Known limitation, not fixed.
const metersPerDegreeLat = 111320.0

// SamplePoints generates a regular lattice of points inside the polygon at
// the given spacing. Iteration runs longitude-outer, latitude-inner from the
// envelope minimum, inclusive of the maximum bound, keeping only points that
// pass the strict containment test. A degenerate (zero-area) envelope yields
// no points.
func SamplePoints(polygon Polygon, spacingMeters float64) []Point {
	if spacingMeters <= 0 {
		return nil
	}

	env := polygon.Envelope()
	if env.Width() <= 0 || env.Height() <= 0 {
		return nil
	}

	stepLat := spacingMeters / metersPerDegreeLat

	centerLatRad := (env.MinLat + env.MaxLat) / 2.0 * math.Pi / 180.0
	stepLng := spacingMeters / (metersPerDegreeLat * math.Cos(centerLatRad))

	var points []Point
	for lng := env.MinLng; lng <= env.MaxLng; lng += stepLng {
		for lat := env.MinLat; lat <= env.MaxLat; lat += stepLat {
			candidate := Point{Lng: lng, Lat: lat}
			if polygon.Contains(candidate) {
				points = append(points, candidate)
			}
		}
	}
	return points
}
