package weather

import (
	"context"
	"time"

	"surfscout/internal/geo"
)

// Unit conversion factors to knots. Open-Meteo reports wind speed in km/h,
// Stormglass in m/s; each client applies its factor exactly once.
const (
	KmhToKnots = 0.539957
	MsToKnots  = 1.943844
)

// TimestampLayout is the hour-resolution timestamp format used to key
// per-point series. It matches the Open-Meteo hourly time format, so series
// lookups are exact string matches against the provider payload.
const TimestampLayout = "2006-01-02T15:04"

// Sample is one wind observation at a point in time: speed in knots and
// meteorological direction in degrees (direction the wind blows from).
type Sample struct {
	SpeedKnots       float64
	DirectionDegrees float64
}

// Provider fetches a full-day hourly wind series for one geographic point.
// The result maps provider timestamps (TimestampLayout, local to the given
// timezone) to samples. A failed or empty series for one point is not fatal
// for a batch of points; callers drop the point and continue.
type Provider interface {
	Name() string
	FetchSeries(ctx context.Context, point geo.Point, date time.Time, timezone string) (map[string]Sample, error)
}
