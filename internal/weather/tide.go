package weather

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"surfscout/internal/geo"
)

// TideExtreme is one high or low water event from a tide provider.
type TideExtreme struct {
	Time         time.Time
	Type         string // "high" or "low"
	HeightMeters float64
}

// TideSource is implemented by providers that can deliver tide extremes in
// addition to wind. Open-Meteo has no tide endpoint, so wind providers
// without tide support simply do not implement this.
type TideSource interface {
	FetchTideExtremes(ctx context.Context, point geo.Point, date time.Time, timezone string) ([]TideExtreme, error)
}

// ClassifySessionTide derives a tide phase label for a session from the
// day's tide extremes. Within two hours of an extreme the session counts as
// high or low tide; between a low and the following high it is rising mid
// tide, between a high and the following low it is falling mid tide.
func ClassifySessionTide(extremes []TideExtreme, date time.Time, start, end time.Duration) string {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	sessionMid := dayStart.Add(start + (end-start)/2)

	var dayTides []TideExtreme
	for _, t := range extremes {
		if t.Time.Year() == date.Year() && t.Time.YearDay() == date.YearDay() {
			dayTides = append(dayTides, t)
		}
	}
	sort.Slice(dayTides, func(i, j int) bool { return dayTides[i].Time.Before(dayTides[j].Time) })

	for _, tide := range dayTides {
		diff := math.Abs(tide.Time.Sub(sessionMid).Minutes())
		kind := strings.ToLower(tide.Type)
		if kind == "high" && diff <= 120 {
			return "high tide"
		}
		if kind == "low" && diff <= 120 {
			return "low tide"
		}
	}

	for i := 0; i < len(dayTides)-1; i++ {
		current, next := dayTides[i], dayTides[i+1]
		if sessionMid.After(current.Time) && sessionMid.Before(next.Time) {
			rising := strings.ToLower(current.Type) == "low" && strings.ToLower(next.Type) == "high"
			falling := strings.ToLower(current.Type) == "high" && strings.ToLower(next.Type) == "low"
			if rising {
				return "rising mid tide"
			}
			if falling {
				return "falling mid tide"
			}
		}
	}

	return "unknown tide"
}

// AverageWindSpeed returns the mean speed of the samples, rounded to one
// decimal. Zero samples yield zero.
func AverageWindSpeed(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s.SpeedKnots
	}
	return math.Round(sum/float64(len(samples))*10) / 10
}

// AverageWindDirection returns the arithmetic mean direction of the samples,
// rounded to one decimal. Zero samples yield zero.
func AverageWindDirection(samples []Sample) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s.DirectionDegrees
	}
	return math.Round(sum/float64(len(samples))*10) / 10
}
