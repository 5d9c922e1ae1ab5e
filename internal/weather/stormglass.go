package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"surfscout/internal/geo"

	"github.com/sony/gobreaker"
)

// StormglassClient fetches hourly wind series from the Stormglass point
// weather API. Requires an API key sent as a bearer token.
type StormglassClient struct {
	baseURL     string
	tideBaseURL string
	apiKey      string
	client      *http.Client
	circuit     *gobreaker.CircuitBreaker
	backoff     backoff
}

func NewStormglassClient(client *http.Client, apiKey string) *StormglassClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &StormglassClient{
		baseURL:     "https://api.stormglass.io/v2/weather/point",
		tideBaseURL: "https://api.stormglass.io/v2/tide/extremes/point",
		apiKey:      apiKey,
		client:      client,
		circuit:     newBreaker("stormglass"),
		backoff:     defaultBackoff(),
	}
}

// NewStormglassClientWithBaseURL is used by tests. Both the weather and the
// tide endpoint point at the given server.
func NewStormglassClientWithBaseURL(client *http.Client, apiKey, baseURL string) *StormglassClient {
	c := NewStormglassClient(client, apiKey)
	c.baseURL = baseURL
	c.tideBaseURL = baseURL
	return c
}

func (c *StormglassClient) Name() string { return "stormglass" }

type stormglassResponse struct {
	Hours []struct {
		Time          string             `json:"time"`
		WindSpeed     map[string]float64 `json:"windSpeed"`
		WindDirection map[string]float64 `json:"windDirection"`
	} `json:"hours"`
}

// FetchSeries requests one day of hourly wind data for a point. Stormglass
// returns UTC timestamps and speeds in m/s from several sources; the "sg"
// merged source is used and converted to knots here, once. The timezone
// parameter shifts the keys into spot-local time so timestamp matching works
// the same as with Open-Meteo.
func (c *StormglassClient) FetchSeries(ctx context.Context, point geo.Point, date time.Time, timezone string) (map[string]Sample, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	buildRequest := func() (*http.Request, error) {
		query := url.Values{}
		query.Set("lat", fmt.Sprintf("%.6f", point.Lat))
		query.Set("lng", fmt.Sprintf("%.6f", point.Lng))
		query.Set("params", "windSpeed,windDirection")
		query.Set("start", dayStart.UTC().Format(time.RFC3339))
		query.Set("end", dayEnd.UTC().Format(time.RFC3339))

		req, err := http.NewRequest(http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		return req, nil
	}

	resp, err := doResilient(ctx, c.client, c.circuit, c.backoff, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("stormglass request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload stormglassResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("stormglass decode: %w", err)
	}
	if len(payload.Hours) == 0 {
		return nil, fmt.Errorf("stormglass returned no hourly data")
	}

	series := make(map[string]Sample, len(payload.Hours))
	for _, hour := range payload.Hours {
		speed, okSpeed := hour.WindSpeed["sg"]
		dir, okDir := hour.WindDirection["sg"]
		if !okSpeed || !okDir {
			continue
		}
		ts, err := time.Parse(time.RFC3339, hour.Time)
		if err != nil {
			continue
		}
		series[ts.In(loc).Format(TimestampLayout)] = Sample{
			SpeedKnots:       speed * MsToKnots,
			DirectionDegrees: dir,
		}
	}
	return series, nil
}

type stormglassTideResponse struct {
	Data []struct {
		Time   string  `json:"time"`
		Type   string  `json:"type"` // "high" or "low"
		Height float64 `json:"height"`
	} `json:"data"`
}

// FetchTideExtremes requests the day's high and low water events for a point.
// Times come back shifted into the spot-local timezone so the classifier's
// same-day filter works on local dates. An empty day is not an error; some
// locations simply have no tide data.
func (c *StormglassClient) FetchTideExtremes(ctx context.Context, point geo.Point, date time.Time, timezone string) ([]TideExtreme, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	buildRequest := func() (*http.Request, error) {
		query := url.Values{}
		query.Set("lat", fmt.Sprintf("%.6f", point.Lat))
		query.Set("lng", fmt.Sprintf("%.6f", point.Lng))
		query.Set("start", dayStart.UTC().Format(time.RFC3339))
		query.Set("end", dayEnd.UTC().Format(time.RFC3339))

		req, err := http.NewRequest(http.MethodGet, c.tideBaseURL+"?"+query.Encode(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		return req, nil
	}

	resp, err := doResilient(ctx, c.client, c.circuit, c.backoff, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("stormglass tide request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload stormglassTideResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("stormglass tide decode: %w", err)
	}

	extremes := make([]TideExtreme, 0, len(payload.Data))
	for _, entry := range payload.Data {
		ts, err := time.Parse(time.RFC3339, entry.Time)
		if err != nil {
			continue
		}
		extremes = append(extremes, TideExtreme{
			Time:         ts.In(loc),
			Type:         entry.Type,
			HeightMeters: entry.Height,
		})
	}
	return extremes, nil
}
