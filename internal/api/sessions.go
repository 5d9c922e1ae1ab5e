package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"surfscout/internal/geo"
	"surfscout/internal/storage"
	"surfscout/internal/weather"
	"surfscout/internal/windfield"

	"github.com/gin-gonic/gin"
)

type createSessionRequest struct {
	Date       string  `json:"date" binding:"required"`       // yyyy-MM-dd
	StartTime  string  `json:"start_time" binding:"required"` // HH:mm
	EndTime    string  `json:"end_time" binding:"required"`   // HH:mm
	SpotID     uint    `json:"spot_id" binding:"required"`
	WaveHeight string  `json:"wave_height"`
	Rating     int     `json:"rating"`
	SailSize   float64 `json:"sail_size"`
	Tide       string  `json:"tide"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

func (s *Server) createSessionHandler(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	loc, err := time.LoadLocation(s.cfg.Weather.Timezone)
	if err != nil {
		loc = time.UTC
	}
	date, err := time.ParseInLocation("2006-01-02", req.Date, loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, want yyyy-MM-dd"})
		return
	}
	start, err := windfield.ParseClock(req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end, err := windfield.ParseClock(req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if end <= start {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end time must be after start time"})
		return
	}

	spot, err := s.db.GetSpot(req.SpotID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "spot not found"})
		return
	}

	session := &storage.Session{
		Date:       date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		SpotID:     spot.ID,
		SpotName:   spot.Name,
		Lat:        req.Lat,
		Lng:        req.Lng,
		UserID:     currentUserID(c),
		WaveHeight: req.WaveHeight,
		Rating:     req.Rating,
		SailSize:   req.SailSize,
		Tide:       req.Tide,
	}
	if session.Lat == 0 && session.Lng == 0 {
		session.Lat, session.Lng = spot.Lat, spot.Lng
	}
	if err := s.db.CreateSession(session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// The session is committed; wind-field construction, interpolation, and
	// tide/wind enrichment continue in the background and their failures
	// never surface here.
	polygon, hasPolygon, err := s.db.SpotPolygon(spot.ID)
	if err != nil {
		log.Printf("session %d: unreadable wind fetch area, skipping wind fields: %v", session.ID, err)
		hasPolygon = false
	}
	if hasPolygon || (s.tides != nil && session.Tide == "") {
		go s.enrichSession(session, spot, polygon, hasPolygon, date, start, end)
	}

	c.JSON(http.StatusOK, session)
}

// enrichSession runs the fetch/assemble/persist pipeline for one session,
// hands each assembled field to the interpolation pool, and backfills the
// session's tide phase and average wind. Runs detached from the request;
// everything here is logged, nothing rolls back.
func (s *Server) enrichSession(session *storage.Session, spot *storage.Spot, polygon geo.Polygon, hasPolygon bool, date time.Time, start, end time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	var avgSpeed, avgDirection *float64
	if hasPolygon {
		avgSpeed, avgDirection = s.buildWindFields(ctx, session.ID, polygon, date, start, end)
	}

	tide := session.Tide
	if tide == "" && s.tides != nil {
		extremes, err := s.tides.FetchTideExtremes(ctx, geo.Point{Lng: spot.Lng, Lat: spot.Lat}, date, s.cfg.Weather.Timezone)
		if err != nil {
			log.Printf("session %d: tide fetch failed: %v", session.ID, err)
		} else {
			tide = weather.ClassifySessionTide(extremes, date, start, end)
		}
	}

	if tide == session.Tide && avgSpeed == nil {
		return
	}
	if err := s.db.UpdateSessionTideAndWind(session.ID, tide, avgSpeed, avgDirection); err != nil {
		log.Printf("session %d: failed to update tide and wind: %v", session.ID, err)
	}
}

// buildWindFields persists the session's assembled fields and enqueues their
// interpolation. Returns the average wind over the midpoint field, which is
// the timestamp closest to the session itself, or nils when nothing usable
// was assembled.
func (s *Server) buildWindFields(ctx context.Context, sessionID uint, polygon geo.Polygon, date time.Time, start, end time.Duration) (*float64, *float64) {
	fields := s.builder.Build(ctx, polygon, date, sessionID, start, end)
	if len(fields) == 0 {
		log.Printf("session %d: no wind fields assembled", sessionID)
		return nil, nil
	}

	if err := s.db.SaveWindFields(fields); err != nil {
		log.Printf("session %d: failed to persist wind fields: %v", sessionID, err)
		return nil, nil
	}

	for _, field := range fields {
		if len(field.Points) == 0 {
			// Interpolation would fail fast on an empty field; skip
			// that timestamp's interpolated product.
			log.Printf("session %d: field at %s has no samples, skipping interpolation",
				sessionID, field.At.Format("15:04"))
			continue
		}
		s.pool.Submit(windfield.Job{
			Field:          field,
			Polygon:        polygon,
			CellSizeMeters: s.cfg.WindField.CellSizeMeters,
			Power:          2.0,
		})
	}

	midpoint := fields[len(fields)-1]
	if len(midpoint.Points) == 0 {
		return nil, nil
	}
	samples := make([]weather.Sample, 0, len(midpoint.Points))
	for _, p := range midpoint.Points {
		samples = append(samples, weather.Sample{
			SpeedKnots:       p.SpeedKnots,
			DirectionDegrees: p.DirectionDegrees,
		})
	}
	speed := weather.AverageWindSpeed(samples)
	direction := weather.AverageWindDirection(samples)
	return &speed, &direction
}

func (s *Server) searchSessionsHandler(c *gin.Context) {
	filter := storage.SessionFilter{
		SpotName: strings.ToLower(c.Query("spot")),
	}

	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format"})
			return
		}
		filter.Date = &date
	}

	lat, latErr := parseQueryFloat(c, "lat")
	lng, lngErr := parseQueryFloat(c, "lng")
	radius, radiusErr := parseQueryFloat(c, "radiusKm")
	if latErr != nil || lngErr != nil || radiusErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid geolocation filter"})
		return
	}
	if lat != nil && lng != nil && radius != nil {
		filter.Lat, filter.Lng, filter.RadiusKm = lat, lng, radius
	}

	sessions, err := s.db.SearchSessions(currentUserID(c), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sessions)
}

func parseQueryFloat(c *gin.Context, key string) (*float64, error) {
	value := c.Query(key)
	if value == "" {
		return nil, nil
	}
	var f float64
	if _, err := fmt.Sscanf(value, "%g", &f); err != nil {
		return nil, err
	}
	return &f, nil
}
