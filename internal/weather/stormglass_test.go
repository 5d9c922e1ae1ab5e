package weather

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"surfscout/internal/geo"
)

const stormglassFixture = `{
	"hours": [
		{
			"time": "2025-06-14T10:00:00+00:00",
			"windSpeed": {"sg": 10.0, "noaa": 11.0},
			"windDirection": {"sg": 180.0, "noaa": 190.0}
		},
		{
			"time": "2025-06-14T11:00:00+00:00",
			"windSpeed": {"noaa": 12.0},
			"windDirection": {"noaa": 200.0}
		},
		{
			"time": "2025-06-14T12:00:00+00:00",
			"windSpeed": {"sg": 5.0},
			"windDirection": {"sg": 90.0}
		}
	]
}`

func TestStormglassFetchSeries(t *testing.T) {
	var gotAuth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(stormglassFixture))
	}))
	defer server.Close()

	client := NewStormglassClientWithBaseURL(server.Client(), "secret-key", server.URL)
	date := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	series, err := client.FetchSeries(context.Background(), geo.Point{Lng: 4.5, Lat: 52.5}, date, "UTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth.Load() != "Bearer secret-key" {
		t.Errorf("authorization header = %q", gotAuth.Load())
	}

	// The 11:00 hour has no merged "sg" source and is skipped.
	if len(series) != 2 {
		t.Fatalf("got %d samples, want 2: %v", len(series), series)
	}

	sample, ok := series["2025-06-14T10:00"]
	if !ok {
		t.Fatal("series missing the 10:00 sample")
	}
	// 10 m/s is 19.438 knots.
	if math.Abs(sample.SpeedKnots-10.0*MsToKnots) > 1e-9 {
		t.Errorf("speed = %f knots, want %f", sample.SpeedKnots, 10.0*MsToKnots)
	}
	if sample.DirectionDegrees != 180.0 {
		t.Errorf("direction = %f, want 180", sample.DirectionDegrees)
	}
}

func TestStormglassKeysShiftIntoLocalTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"hours": [{
				"time": "2025-06-14T10:00:00+00:00",
				"windSpeed": {"sg": 10.0},
				"windDirection": {"sg": 180.0}
			}]
		}`))
	}))
	defer server.Close()

	client := NewStormglassClientWithBaseURL(server.Client(), "secret-key", server.URL)
	date := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	series, err := client.FetchSeries(context.Background(), geo.Point{Lng: 4.5, Lat: 52.5}, date, "Europe/Amsterdam")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 10:00 UTC is 12:00 CEST.
	if _, ok := series["2025-06-14T12:00"]; !ok {
		t.Errorf("expected key in spot-local time, got %v", series)
	}
}

func TestStormglassFetchTideExtremes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"data": [
				{"time": "2025-06-14T03:10:00+00:00", "type": "low", "height": -0.8},
				{"time": "2025-06-14T09:25:00+00:00", "type": "high", "height": 1.1}
			]
		}`))
	}))
	defer server.Close()

	client := NewStormglassClientWithBaseURL(server.Client(), "secret-key", server.URL)
	date := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	extremes, err := client.FetchTideExtremes(context.Background(), geo.Point{Lng: 4.5, Lat: 52.5}, date, "UTC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(extremes) != 2 {
		t.Fatalf("got %d extremes, want 2", len(extremes))
	}
	if extremes[0].Type != "low" || extremes[0].HeightMeters != -0.8 {
		t.Errorf("first extreme = %+v", extremes[0])
	}
	if got := extremes[1].Time.Hour(); got != 9 {
		t.Errorf("second extreme hour = %d, want 9", got)
	}
}

func TestStormglassEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hours":[]}`))
	}))
	defer server.Close()

	client := NewStormglassClientWithBaseURL(server.Client(), "secret-key", server.URL)
	date := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	if _, err := client.FetchSeries(context.Background(), geo.Point{Lng: 4.5, Lat: 52.5}, date, "UTC"); err == nil {
		t.Fatal("expected error for an empty response")
	}
}
