package windfield

import (
	"context"
	"log"
	"sync"
	"time"

	"surfscout/internal/geo"
	"surfscout/internal/weather"
)

// DefaultSpacingMeters is the sample-point spacing inside the wind-fetch
// polygon. Related to the resolution the frontend requests.
const DefaultSpacingMeters = 25000.0

// Builder turns a session's wind-fetch polygon into assembled wind fields:
// raster sampling, per-point series fetches, then assembly into one field
// per window timestamp.
type Builder struct {
	provider      weather.Provider
	timezone      string
	spacingMeters float64
	fanOut        int
}

// NewBuilder wires a builder. fanOut bounds concurrent provider calls;
// values below 1 fall back to sequential fetching.
func NewBuilder(provider weather.Provider, timezone string, spacingMeters float64, fanOut int) *Builder {
	if spacingMeters <= 0 {
		spacingMeters = DefaultSpacingMeters
	}
	if fanOut < 1 {
		fanOut = 1
	}
	if timezone == "" {
		timezone = "UTC"
	}
	return &Builder{
		provider:      provider,
		timezone:      timezone,
		spacingMeters: spacingMeters,
		fanOut:        fanOut,
	}
}

// Build fetches and assembles the wind fields for one session. Per-point
// fetch failures are logged and drop only that point; the batch always
// completes. Each fetch writes into its own slice slot, so aggregation
// needs no locking.
func (b *Builder) Build(ctx context.Context, polygon geo.Polygon, date time.Time, sessionID uint, start, end time.Duration) []Field {
	points := geo.SamplePoints(polygon, b.spacingMeters)
	if len(points) == 0 {
		log.Printf("windfield: no sample points inside polygon for session %d", sessionID)
		return nil
	}

	series := make([]map[string]weather.Sample, len(points))

	var wg sync.WaitGroup
	sem := make(chan struct{}, b.fanOut)
	for i, point := range points {
		i, point := i, point
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := b.provider.FetchSeries(ctx, point, date, b.timezone)
			if err != nil {
				log.Printf("windfield: dropping point (%.4f, %.4f) for session %d: %v",
					point.Lng, point.Lat, sessionID, err)
				return
			}
			series[i] = result
		}()
	}
	wg.Wait()

	return Assemble(points, series, date, sessionID, start, end)
}
