// Package scheduler runs the periodic background jobs: polling wind
// forecasts for upcoming planned sessions and garbage-collecting stale
// forecast and wind-field data.
package scheduler

import (
	"context"
	"log"
	"time"

	"surfscout/internal/geo"
	"surfscout/internal/storage"
	"surfscout/internal/weather"
	"surfscout/internal/windfield"

	"github.com/go-co-op/gocron"
)

type Scheduler struct {
	scheduler     *gocron.Scheduler
	db            *storage.Database
	provider      weather.Provider
	timezone      string
	pollInterval  time.Duration
	retentionDays int
}

type Config struct {
	Database      *storage.Database
	Provider      weather.Provider
	Timezone      string
	PollInterval  time.Duration
	RetentionDays int
}

func New(cfg Config) *Scheduler {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 4 * time.Hour
	}
	retention := cfg.RetentionDays
	if retention <= 0 {
		retention = 30
	}
	return &Scheduler{
		scheduler:     gocron.NewScheduler(time.UTC),
		db:            cfg.Database,
		provider:      cfg.Provider,
		timezone:      cfg.Timezone,
		pollInterval:  interval,
		retentionDays: retention,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(int(s.pollInterval.Hours())).Hours().Do(s.pollForecasts); err != nil {
		return err
	}
	if _, err := s.scheduler.Every(1).Day().At("00:00").Do(s.collectGarbage); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// RunPollOnce runs a single forecast poll synchronously, for the CLI.
func (s *Scheduler) RunPollOnce() {
	s.pollForecasts()
}

// pollForecasts stores one point forecast per upcoming planned session and
// poll cycle, averaged over the session's timestamp window at the spot
// location. A failed fetch for one plan never stops the sweep.
func (s *Scheduler) pollForecasts() {
	log.Println("scheduler: running wind forecast poll")

	plans, err := s.db.UpcomingPlannedSessions(time.Now())
	if err != nil {
		log.Printf("scheduler: failed to load planned sessions: %v", err)
		return
	}

	for _, plan := range plans {
		if err := s.pollOne(plan); err != nil {
			log.Printf("scheduler: forecast for planned session %d failed: %v", plan.ID, err)
		}
	}

	log.Println("scheduler: completed wind forecast poll")
}

func (s *Scheduler) pollOne(plan storage.PlannedSession) error {
	spot, err := s.db.GetSpot(plan.SpotID)
	if err != nil {
		return err
	}
	if len(plan.Participants) == 0 {
		return nil
	}

	start, err := windfield.ParseClock(plan.Participants[0].StartTime)
	if err != nil {
		return err
	}
	end, err := windfield.ParseClock(plan.Participants[0].EndTime)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	point := geo.Point{Lng: spot.Lng, Lat: spot.Lat}
	series, err := s.provider.FetchSeries(ctx, point, plan.Date, s.timezone)
	if err != nil {
		return err
	}

	var samples []weather.Sample
	for _, ts := range windfield.TimestampWindow(plan.Date, start, end) {
		if sample, ok := series[ts.Format(weather.TimestampLayout)]; ok {
			samples = append(samples, sample)
		}
	}
	if len(samples) == 0 {
		return nil
	}

	return s.db.SaveForecast(&storage.WindForecast{
		PlannedSessionID: plan.ID,
		RequestTime:      time.Now().UTC(),
		ModelName:        s.provider.Name(),
		SpeedKnots:       weather.AverageWindSpeed(samples),
		DirectionDegrees: weather.AverageWindDirection(samples),
	})
}

// collectGarbage drops stale forecasts, past unrated plans, and wind fields
// beyond the retention window.
func (s *Scheduler) collectGarbage() {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	if err := s.db.CleanupForecasts(cutoff); err != nil {
		log.Printf("scheduler: forecast cleanup failed: %v", err)
	}
	if err := s.db.CleanupPastUnratedPlans(cutoff); err != nil {
		log.Printf("scheduler: planned session cleanup failed: %v", err)
	}
	if err := s.db.DeleteWindFieldsBefore(cutoff); err != nil {
		log.Printf("scheduler: wind field cleanup failed: %v", err)
	}
}
