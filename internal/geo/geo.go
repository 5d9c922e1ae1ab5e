package geo

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point is a WGS84 coordinate pair in degrees, longitude first.
type Point struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Polygon is a closed ring of points (first == last). The ring is assumed
// simple; no self-intersection check is performed here.
type Polygon struct {
	Ring []Point
}

// Envelope is an axis-aligned bounding box in degrees.
type Envelope struct {
	MinLng, MaxLng float64
	MinLat, MaxLat float64
}

func (e Envelope) Width() float64  { return e.MaxLng - e.MinLng }
func (e Envelope) Height() float64 { return e.MaxLat - e.MinLat }

// NewPolygon builds a polygon from a ring, closing it if the caller did not.
func NewPolygon(ring []Point) (Polygon, error) {
	if len(ring) < 3 {
		return Polygon{}, fmt.Errorf("polygon ring needs at least 3 points, got %d", len(ring))
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return Polygon{Ring: ring}, nil
}

// FromGeoJSON parses a GeoJSON Polygon geometry (outer ring only).
func FromGeoJSON(data []byte) (Polygon, error) {
	var dto struct {
		Type        string         `json:"type"`
		Coordinates [][][2]float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(data, &dto); err != nil {
		return Polygon{}, fmt.Errorf("parse polygon geojson: %w", err)
	}
	if dto.Type != "Polygon" || len(dto.Coordinates) == 0 {
		return Polygon{}, fmt.Errorf("expected GeoJSON Polygon, got %q", dto.Type)
	}
	ring := make([]Point, 0, len(dto.Coordinates[0]))
	for _, pair := range dto.Coordinates[0] {
		ring = append(ring, Point{Lng: pair[0], Lat: pair[1]})
	}
	return NewPolygon(ring)
}

// ToGeoJSON renders the polygon as a GeoJSON Polygon geometry.
func (p Polygon) ToGeoJSON() ([]byte, error) {
	coords := make([][2]float64, 0, len(p.Ring))
	for _, pt := range p.Ring {
		coords = append(coords, [2]float64{pt.Lng, pt.Lat})
	}
	return json.Marshal(map[string]interface{}{
		"type":        "Polygon",
		"coordinates": [][][2]float64{coords},
	})
}

// Envelope returns the bounding box of the ring.
func (p Polygon) Envelope() Envelope {
	env := Envelope{
		MinLng: math.Inf(1), MaxLng: math.Inf(-1),
		MinLat: math.Inf(1), MaxLat: math.Inf(-1),
	}
	for _, pt := range p.Ring {
		env.MinLng = math.Min(env.MinLng, pt.Lng)
		env.MaxLng = math.Max(env.MaxLng, pt.Lng)
		env.MinLat = math.Min(env.MinLat, pt.Lat)
		env.MaxLat = math.Max(env.MaxLat, pt.Lat)
	}
	return env
}

// Contains reports whether a point lies strictly inside the polygon using
// even-odd ray casting. Boundary points count as outside; the sampler and
// the interpolator both rely on this function so their containment semantics
// stay identical.
func (p Polygon) Contains(pt Point) bool {
	x, y := pt.Lng, pt.Lat
	n := len(p.Ring)
	if n < 4 {
		return false
	}
	inside := false
	p1x, p1y := p.Ring[0].Lng, p.Ring[0].Lat
	for i := 1; i < n; i++ {
		p2x, p2y := p.Ring[i].Lng, p.Ring[i].Lat
		if y > math.Min(p1y, p2y) && y <= math.Max(p1y, p2y) && x <= math.Max(p1x, p2x) {
			var xinters float64
			if p1y != p2y {
				xinters = (y-p1y)*(p2x-p1x)/(p2y-p1y) + p1x
			}
			if p1x == p2x || x < xinters {
				inside = !inside
			}
		}
		p1x, p1y = p2x, p2y
	}
	return inside
}

// DistanceMeters is the haversine distance between two points.
func DistanceMeters(a, b Point) float64 {
	const earthRadius = 6371000.0
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadius * math.Asin(math.Sqrt(h))
}
