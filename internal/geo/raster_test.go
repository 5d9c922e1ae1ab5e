package geo

import (
	"math"
	"testing"
)

func TestSamplePointsAllInsidePolygon(t *testing.T) {
	square := squarePolygon(4.0, 52.0, 5.0, 53.0)

	points := SamplePoints(square, 10000)
	if len(points) == 0 {
		t.Fatal("expected at least one sample point")
	}
	for _, p := range points {
		if !square.Contains(p) {
			t.Errorf("sample point %v is outside the polygon", p)
		}
	}
}

func TestSamplePointsLatticeAlignment(t *testing.T) {
	square := squarePolygon(4.0, 52.0, 5.0, 53.0)
	spacing := 10000.0

	env := square.Envelope()
	latStep := spacing / metersPerDegreeLat
	centerLat := (env.MinLat + env.MaxLat) / 2
	lngStep := spacing / (metersPerDegreeLat * math.Cos(centerLat*math.Pi/180))

	for _, p := range SamplePoints(square, spacing) {
		latSteps := (p.Lat - env.MinLat) / latStep
		lngSteps := (p.Lng - env.MinLng) / lngStep
		if math.Abs(latSteps-math.Round(latSteps)) > 1e-9 {
			t.Errorf("latitude %f is not on the lattice", p.Lat)
		}
		if math.Abs(lngSteps-math.Round(lngSteps)) > 1e-9 {
			t.Errorf("longitude %f is not on the lattice", p.Lng)
		}
	}
}

func TestSamplePointsPolygonSmallerThanSpacing(t *testing.T) {
	// Envelope spans about 1.1 km, spacing asks for 50 km. The envelope
	// corner itself lies on the boundary, so nothing falls inside.
	tiny := squarePolygon(4.0, 52.0, 4.01, 52.01)

	if points := SamplePoints(tiny, 50000); len(points) != 0 {
		t.Errorf("expected no sample points, got %d", len(points))
	}
}

func TestSamplePointsInvalidInput(t *testing.T) {
	square := squarePolygon(4.0, 52.0, 5.0, 53.0)

	if points := SamplePoints(square, 0); points != nil {
		t.Errorf("expected nil for zero spacing, got %d points", len(points))
	}
	if points := SamplePoints(square, -100); points != nil {
		t.Errorf("expected nil for negative spacing, got %d points", len(points))
	}

	line, err := NewPolygon([]Point{{0, 0}, {1, 0}, {2, 0}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if points := SamplePoints(line, 10000); len(points) != 0 {
		t.Errorf("expected no points for degenerate polygon, got %d", len(points))
	}
}
