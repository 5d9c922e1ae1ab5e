package windfield

import (
	"testing"
	"time"

	"surfscout/internal/geo"
	"surfscout/internal/weather"
)

func clock(h, m int) time.Duration {
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
}

func TestParseClock(t *testing.T) {
	testCases := []struct {
		value    string
		expected time.Duration
		wantErr  bool
	}{
		{value: "00:00", expected: 0},
		{value: "10:30", expected: clock(10, 30)},
		{value: "23:59", expected: clock(23, 59)},
		{value: "24:00", wantErr: true},
		{value: "later", wantErr: true},
		{value: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			got, err := ParseClock(tc.value)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseClock(%q) = %v, want error", tc.value, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.expected {
				t.Errorf("ParseClock(%q) = %v, want %v", tc.value, got, tc.expected)
			}
		})
	}
}

func TestTimestampWindow(t *testing.T) {
	date := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		start    time.Duration
		end      time.Duration
		expected []string
	}{
		{
			name:  "midpoint already on the hour",
			start: clock(10, 0),
			end:   clock(14, 0),
			expected: []string{
				"2025-06-14T00:00", "2025-06-14T03:00", "2025-06-14T06:00",
				"2025-06-14T09:00", "2025-06-14T12:00",
			},
		},
		{
			name:  "midpoint rounds up to next hour",
			start: clock(10, 0),
			end:   clock(13, 0),
			expected: []string{
				"2025-06-14T00:00", "2025-06-14T03:00", "2025-06-14T06:00",
				"2025-06-14T09:00", "2025-06-14T12:00",
			},
		},
		{
			name:     "early session drops all but the midpoint",
			start:    clock(0, 30),
			end:      clock(2, 50),
			expected: []string{"2025-06-14T02:00"},
		},
		{
			name:  "morning session keeps the same-date tail",
			start: clock(7, 0),
			end:   clock(8, 10),
			expected: []string{
				"2025-06-14T02:00", "2025-06-14T05:00", "2025-06-14T08:00",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			window := TimestampWindow(date, tc.start, tc.end)
			if len(window) != len(tc.expected) {
				t.Fatalf("got %d timestamps, want %d: %v", len(window), len(tc.expected), window)
			}
			for i, ts := range window {
				if got := ts.Format(weather.TimestampLayout); got != tc.expected[i] {
					t.Errorf("window[%d] = %s, want %s", i, got, tc.expected[i])
				}
			}
		})
	}
}

func TestTimestampWindowAscending(t *testing.T) {
	date := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	window := TimestampWindow(date, clock(9, 0), clock(17, 0))
	for i := 1; i < len(window); i++ {
		if !window[i].After(window[i-1]) {
			t.Fatalf("window not ascending: %v", window)
		}
	}
}

func TestAssemble(t *testing.T) {
	date := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	points := []geo.Point{
		{Lng: 4.1, Lat: 52.1},
		{Lng: 4.2, Lat: 52.2},
		{Lng: 4.3, Lat: 52.3},
	}

	// First point covers the full window, second misses one timestamp,
	// third has no series at all (its fetch failed).
	full := map[string]weather.Sample{}
	for _, key := range []string{
		"2025-06-14T00:00", "2025-06-14T03:00", "2025-06-14T06:00",
		"2025-06-14T09:00", "2025-06-14T12:00",
	} {
		full[key] = weather.Sample{SpeedKnots: 10, DirectionDegrees: 270}
	}
	partial := map[string]weather.Sample{
		"2025-06-14T00:00": {SpeedKnots: 14, DirectionDegrees: 180},
		"2025-06-14T12:00": {SpeedKnots: 18, DirectionDegrees: 200},
	}
	series := []map[string]weather.Sample{full, partial, nil}

	fields := Assemble(points, series, date, 42, clock(10, 0), clock(14, 0))

	if len(fields) != 5 {
		t.Fatalf("got %d fields, want 5", len(fields))
	}
	for i := 1; i < len(fields); i++ {
		if !fields[i].At.After(fields[i-1].At) {
			t.Fatalf("fields not ordered by timestamp")
		}
	}

	first := fields[0]
	if first.SessionID != 42 {
		t.Errorf("session id = %d, want 42", first.SessionID)
	}
	if len(first.Points) != 2 {
		t.Fatalf("field at %v has %d points, want 2", first.At, len(first.Points))
	}
	if first.Points[0].Location != points[0] || first.Points[1].Location != points[1] {
		t.Errorf("unexpected point locations: %v", first.Points)
	}
	if first.Points[1].SpeedKnots != 14 || first.Points[1].DirectionDegrees != 180 {
		t.Errorf("sample values not carried through: %+v", first.Points[1])
	}

	// The middle timestamps only have data from the first point.
	for _, f := range fields[1:4] {
		if len(f.Points) != 1 {
			t.Errorf("field at %v has %d points, want 1", f.At, len(f.Points))
		}
	}
}

func TestAssembleShortSeriesSlice(t *testing.T) {
	date := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)
	points := []geo.Point{{Lng: 4.1, Lat: 52.1}, {Lng: 4.2, Lat: 52.2}}
	series := []map[string]weather.Sample{
		{"2025-06-14T12:00": {SpeedKnots: 9}},
	}

	fields := Assemble(points, series, date, 1, clock(10, 0), clock(14, 0))
	for _, f := range fields {
		for _, p := range f.Points {
			if p.Location == points[1] {
				t.Fatal("point without a series slot must not contribute")
			}
		}
	}
}
