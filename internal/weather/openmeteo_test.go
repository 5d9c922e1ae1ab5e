package weather

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"surfscout/internal/geo"
)

const openMeteoFixture = `{
	"hourly": {
		"time": ["2025-06-14T00:00", "2025-06-14T01:00", "2025-06-14T02:00"],
		"wind_speed_10m": [10.0, 20.0, 36.0],
		"wind_direction_10m": [180.0, 200.0, 220.0]
	}
}`

func TestOpenMeteoFetchSeries(t *testing.T) {
	var gotQuery atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(openMeteoFixture))
	}))
	defer server.Close()

	client := NewOpenMeteoClientWithBaseURL(server.Client(), server.URL)
	date := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	series, err := client.FetchSeries(context.Background(), geo.Point{Lng: 4.5, Lat: 52.5}, date, "Europe/Amsterdam")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("got %d samples, want 3", len(series))
	}

	sample, ok := series["2025-06-14T02:00"]
	if !ok {
		t.Fatal("series missing the 02:00 sample")
	}
	// 36 km/h is 19.438 knots.
	if math.Abs(sample.SpeedKnots-36.0*KmhToKnots) > 1e-9 {
		t.Errorf("speed = %f knots, want %f", sample.SpeedKnots, 36.0*KmhToKnots)
	}
	if sample.DirectionDegrees != 220.0 {
		t.Errorf("direction = %f, want 220", sample.DirectionDegrees)
	}

	query := gotQuery.Load().(url.Values)
	if query.Get("latitude") != "52.500000" || query.Get("longitude") != "4.500000" {
		t.Errorf("coordinates not passed: lat=%s lng=%s", query.Get("latitude"), query.Get("longitude"))
	}
	if query.Get("hourly") != "wind_speed_10m,wind_direction_10m" {
		t.Errorf("hourly = %q", query.Get("hourly"))
	}
	if query.Get("start_date") != "2025-06-14" || query.Get("end_date") != "2025-06-14" {
		t.Errorf("date range = %s..%s", query.Get("start_date"), query.Get("end_date"))
	}
	if query.Get("timezone") != "Europe/Amsterdam" {
		t.Errorf("timezone = %q", query.Get("timezone"))
	}
}

func TestOpenMeteoEmptyHourlyData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"hourly":{"time":[],"wind_speed_10m":[],"wind_direction_10m":[]}}`))
	}))
	defer server.Close()

	client := NewOpenMeteoClientWithBaseURL(server.Client(), server.URL)
	date := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	if _, err := client.FetchSeries(context.Background(), geo.Point{Lng: 4.5, Lat: 52.5}, date, "UTC"); err == nil {
		t.Fatal("expected error for an empty hourly series")
	}
}

func TestOpenMeteoRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(openMeteoFixture))
	}))
	defer server.Close()

	client := NewOpenMeteoClientWithBaseURL(server.Client(), server.URL)
	date := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	series, err := client.FetchSeries(context.Background(), geo.Point{Lng: 4.5, Lat: 52.5}, date, "UTC")
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if len(series) != 3 {
		t.Errorf("got %d samples, want 3", len(series))
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("server called %d times, want 2", got)
	}
}

func TestOpenMeteoClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewOpenMeteoClientWithBaseURL(server.Client(), server.URL)
	date := time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC)

	if _, err := client.FetchSeries(context.Background(), geo.Point{Lng: 4.5, Lat: 52.5}, date, "UTC"); err == nil {
		t.Fatal("expected error for a 404 response")
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server called %d times, want 1", got)
	}
}
