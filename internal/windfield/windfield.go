// Package windfield builds, interpolates, and exports time-sliced wind
// fields over a spot's wind-fetch polygon.
package windfield

import (
	"errors"
	"time"

	"surfscout/internal/geo"
)

// ErrInsufficientData is returned when interpolation is attempted on a wind
// field without samples. Degenerate input is a caller contract violation,
// not a value to propagate as NaN cells.
var ErrInsufficientData = errors.New("wind field has no samples")

// SamplePoint is one raw wind observation inside a field. All points of a
// field are valid for the field's timestamp.
type SamplePoint struct {
	Location         geo.Point
	SpeedKnots       float64
	DirectionDegrees float64
}

// Field is one time-sliced snapshot of sparse wind samples for a session.
// At carries both the calendar date and the time of day.
type Field struct {
	SessionID uint
	At        time.Time
	Points    []SamplePoint
}

// DateString returns the field date as yyyy-MM-dd.
func (f Field) DateString() string { return f.At.Format("2006-01-02") }

// ClockString returns the field time of day as HH:mm:ss.
func (f Field) ClockString() string { return f.At.Format("15:04:05") }

// Cell is a square grid cell of an interpolated field. Direction is
// deliberately absent: at this granularity only the nearest raw sample's
// direction would be meaningful, so it is not carried at all.
type Cell struct {
	ID             int
	Center         geo.Point
	CellSizeMeters int
	SpeedKnots     float64
}

// Interpolated is the dense regular-grid derivative of one Field,
// speed-only, restricted to cells whose center lies inside the polygon.
type Interpolated struct {
	SessionID      uint
	At             time.Time
	CellSizeMeters int
	Cells          []Cell
}

func (f Interpolated) DateString() string  { return f.At.Format("2006-01-02") }
func (f Interpolated) ClockString() string { return f.At.Format("15:04:05") }
