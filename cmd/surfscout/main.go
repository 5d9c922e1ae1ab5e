package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"surfscout/config"
	"surfscout/internal/api"
	"surfscout/internal/mqtt"
	"surfscout/internal/scheduler"
	"surfscout/internal/storage"
	"surfscout/internal/weather"
	"surfscout/internal/windfield"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configFile string

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	rootCmd := &cobra.Command{
		Use:   "surfscout",
		Short: "SurfScout session-planning backend",
		Long:  "Web backend for logging surf/wind sessions and computing interpolated wind fields",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(pollCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newProvider(cfg *config.Config) weather.Provider {
	client := &http.Client{Timeout: 10 * time.Second}
	if cfg.Weather.Provider == "stormglass" && cfg.Weather.StormglassAPIKey != "" {
		return weather.NewStormglassClient(client, cfg.Weather.StormglassAPIKey)
	}
	return weather.NewOpenMeteoClient(client)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the backend service",
		Long:  "Start the API server, interpolation workers, and background schedulers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret must be configured")
			}

			db, err := storage.NewDatabase(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			log.Printf("Database opened at %s", cfg.Database.Path)

			publisher, err := mqtt.NewPublisher(mqtt.PublisherConfig{
				Broker:      cfg.MQTT.Broker,
				ClientID:    cfg.MQTT.ClientID,
				Username:    cfg.MQTT.Username,
				Password:    cfg.MQTT.Password,
				TopicPrefix: cfg.MQTT.TopicPrefix,
				Enabled:     cfg.MQTT.Enabled,
			})
			if err != nil {
				log.Printf("Warning: MQTT connection failed: %v", err)
				publisher, _ = mqtt.NewPublisher(mqtt.PublisherConfig{Enabled: false})
			} else if cfg.MQTT.Enabled {
				log.Printf("MQTT connected to %s", cfg.MQTT.Broker)
			}

			provider := newProvider(cfg)

			builder := windfield.NewBuilder(
				provider,
				cfg.Weather.Timezone,
				cfg.WindField.SpacingMeters,
				cfg.WindField.FetchFanOut,
			)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			pool := windfield.NewPool(cfg.WindField.Workers, cfg.WindField.QueueSize, db, publisher)
			pool.Start(ctx)

			var sched *scheduler.Scheduler
			if cfg.Scheduler.Enabled {
				sched = scheduler.New(scheduler.Config{
					Database:      db,
					Provider:      provider,
					Timezone:      cfg.Weather.Timezone,
					PollInterval:  time.Duration(cfg.Scheduler.PollIntervalHours) * time.Hour,
					RetentionDays: cfg.Scheduler.RetentionDays,
				})
				if err := sched.Start(); err != nil {
					return fmt.Errorf("failed to start scheduler: %w", err)
				}
			}

			// Only Stormglass carries tide data; tide enrichment stays
			// off for providers without it.
			tides, _ := provider.(weather.TideSource)

			server := api.NewServer(api.ServerConfig{
				Port:     cfg.API.Port,
				Database: db,
				Builder:  builder,
				Pool:     pool,
				Tides:    tides,
				Config:   cfg,
			})

			go func() {
				if err := server.Start(); err != nil && err != http.ErrServerClosed {
					log.Printf("API server error: %v", err)
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

			log.Println("SurfScout backend started. Press Ctrl+C to stop.")
			<-sigChan
			log.Println("Shutting down...")

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := server.Stop(shutdownCtx); err != nil {
				log.Printf("Error stopping server: %v", err)
			}

			if sched != nil {
				sched.Stop()
			}
			cancel()
			pool.Stop()
			publisher.Close()
			return db.Close()
		},
	}
}

func exportCmd() *cobra.Command {
	var sessionID uint
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a session's interpolated wind fields",
		Long:  "Write a zip archive of gzipped GeoJSON wind fields for one session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == 0 {
				return fmt.Errorf("--session is required")
			}

			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := storage.NewDatabase(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			fields, err := db.InterpolatedBySession(sessionID)
			if err != nil {
				return err
			}
			if len(fields) == 0 {
				return fmt.Errorf("no interpolated wind fields for session %d", sessionID)
			}

			archive, err := windfield.BuildArchive(fields)
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = fmt.Sprintf("windfields_session_%d.zip", sessionID)
			}
			if err := os.WriteFile(outPath, archive, 0o644); err != nil {
				return err
			}

			fmt.Printf("Wrote %d wind fields to %s\n", len(fields), outPath)
			return nil
		},
	}

	cmd.Flags().UintVar(&sessionID, "session", 0, "session id to export")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default windfields_session_<id>.zip)")
	return cmd
}

func pollCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poll",
		Short: "Run one wind forecast poll",
		Long:  "Fetch and store wind forecasts for all upcoming planned sessions once, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := storage.NewDatabase(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			sched := scheduler.New(scheduler.Config{
				Database:      db,
				Provider:      newProvider(cfg),
				Timezone:      cfg.Weather.Timezone,
				PollInterval:  time.Duration(cfg.Scheduler.PollIntervalHours) * time.Hour,
				RetentionDays: cfg.Scheduler.RetentionDays,
			})
			sched.RunPollOnce()
			return nil
		},
	}
}
