package windfield

import (
	"fmt"
	"time"

	"surfscout/internal/geo"
	"surfscout/internal/weather"
)

// ParseClock parses an HH:mm time of day into a duration since midnight.
func ParseClock(value string) (time.Duration, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", value)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Window shape: five timestamps spaced three hours apart ending at the
// session's rounded midpoint. Spacing relates to how the frontend animates
// the field history.
const (
	timeStepHours = 3
	numberOfSteps = 4
)

// TimestampWindow computes the timestamps a session needs wind fields for.
// The session midpoint start+(end-start)/2 is rounded up to the next whole
// hour, then numberOfSteps earlier points at timeStepHours spacing are added
// in front of it. Timestamps that do not fall on the session's calendar date
// are dropped; there is no roll-over across midnight. The result is ordered
// ascending.
func TimestampWindow(date time.Time, start, end time.Duration) []time.Time {
	mid := start + (end-start)/2
	if mid%time.Hour != 0 {
		mid = mid.Truncate(time.Hour) + time.Hour
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	var window []time.Time
	for i := numberOfSteps; i >= 0; i-- {
		offset := mid - time.Duration(i)*timeStepHours*time.Hour
		ts := dayStart.Add(offset)
		if ts.Year() != dayStart.Year() || ts.YearDay() != dayStart.YearDay() {
			continue
		}
		window = append(window, ts)
	}
	return window
}

// Assemble reorganizes per-point series into one Field per window timestamp.
// A point contributes to a field only when its series holds an entry at that
// exact timestamp; points with missing or failed series are simply absent,
// never an error. Fields come back ordered by ascending timestamp.
func Assemble(samplePoints []geo.Point, perPointSeries []map[string]weather.Sample, date time.Time, sessionID uint, start, end time.Duration) []Field {
	window := TimestampWindow(date, start, end)

	fields := make([]Field, 0, len(window))
	for _, ts := range window {
		key := ts.Format(weather.TimestampLayout)

		field := Field{SessionID: sessionID, At: ts}
		for i, point := range samplePoints {
			if i >= len(perPointSeries) || perPointSeries[i] == nil {
				continue
			}
			sample, ok := perPointSeries[i][key]
			if !ok {
				continue
			}
			field.Points = append(field.Points, SamplePoint{
				Location:         point,
				SpeedKnots:       sample.SpeedKnots,
				DirectionDegrees: sample.DirectionDegrees,
			})
		}
		fields = append(fields, field)
	}
	return fields
}
