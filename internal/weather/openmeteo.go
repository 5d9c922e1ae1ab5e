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

// OpenMeteoClient fetches hourly wind series from the Open-Meteo forecast
// API. No API key is required.
type OpenMeteoClient struct {
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	backoff backoff
}

func NewOpenMeteoClient(client *http.Client) *OpenMeteoClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &OpenMeteoClient{
		baseURL: "https://api.open-meteo.com/v1/forecast",
		client:  client,
		circuit: newBreaker("openmeteo"),
		backoff: defaultBackoff(),
	}
}

// NewOpenMeteoClientWithBaseURL is used by tests to point the client at a
// local server.
func NewOpenMeteoClientWithBaseURL(client *http.Client, baseURL string) *OpenMeteoClient {
	c := NewOpenMeteoClient(client)
	c.baseURL = baseURL
	return c
}

func (c *OpenMeteoClient) Name() string { return "openmeteo" }

type openMeteoResponse struct {
	Hourly struct {
		Time            []string  `json:"time"`
		WindSpeed10m    []float64 `json:"wind_speed_10m"`
		WindDirection10 []float64 `json:"wind_direction_10m"`
	} `json:"hourly"`
}

// FetchSeries requests one day of hourly 10 m wind data for a point and
// returns it keyed by the provider's local timestamp. Speeds arrive in km/h
// and are converted to knots here, once.
func (c *OpenMeteoClient) FetchSeries(ctx context.Context, point geo.Point, date time.Time, timezone string) (map[string]Sample, error) {
	day := date.Format("2006-01-02")

	buildRequest := func() (*http.Request, error) {
		query := url.Values{}
		query.Set("latitude", fmt.Sprintf("%.6f", point.Lat))
		query.Set("longitude", fmt.Sprintf("%.6f", point.Lng))
		query.Set("hourly", "wind_speed_10m,wind_direction_10m")
		query.Set("start_date", day)
		query.Set("end_date", day)
		query.Set("timezone", timezone)
		return http.NewRequest(http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	}

	resp, err := doResilient(ctx, c.client, c.circuit, c.backoff, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("open-meteo request failed: %w", err)
	}
	defer resp.Body.Close()

	var payload openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("open-meteo decode: %w", err)
	}

	hourly := payload.Hourly
	if len(hourly.Time) == 0 {
		return nil, fmt.Errorf("open-meteo returned no hourly data")
	}

	series := make(map[string]Sample, len(hourly.Time))
	for i, ts := range hourly.Time {
		if i >= len(hourly.WindSpeed10m) || i >= len(hourly.WindDirection10) {
			break
		}
		series[ts] = Sample{
			SpeedKnots:       hourly.WindSpeed10m[i] * KmhToKnots,
			DirectionDegrees: hourly.WindDirection10[i],
		}
	}
	return series, nil
}
