// Package main provides the entrypoint for the VoltRoute background worker.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/voltroute/voltroute/internal/database"
	"github.com/voltroute/voltroute/internal/station"
	"github.com/voltroute/voltroute/internal/station/openchargemap"
	"github.com/voltroute/voltroute/internal/weather"
	"github.com/voltroute/voltroute/internal/weather/openmeteo"
	"github.com/voltroute/voltroute/internal/worker"
)

// Version and BuildTime are set at compile time via ldflags
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "voltroute-worker"

	_ = godotenv.Load()

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting VoltRoute worker")

	// Worker also exposes a health endpoint for Cloud Run.
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database for snapshot persistence
	pool, err := database.Connect(ctx, database.ConfigFromEnv())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	// Initialize station directory service
	ocmAPIKey := os.Getenv("OCM_API_KEY")
	if ocmAPIKey == "" {
		log.Warn().Msg("OCM_API_KEY not set - station refresh will fail upstream")
	}
	ocmCountry := os.Getenv("OCM_COUNTRY_CODE")
	if ocmCountry == "" {
		ocmCountry = "NL"
	}
	stationService := station.NewService(station.ServiceConfig{
		Provider: openchargemap.NewClient(openchargemap.ClientConfig{
			APIKey:      ocmAPIKey,
			CountryCode: ocmCountry,
			Logger:      log,
		}),
		Repository: station.NewPostgresRepository(pool),
		Logger:     log,
	})

	// Initialize weather service
	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: openmeteo.NewClient(openmeteo.ClientConfig{
			Logger: log,
		}),
		Logger: log,
	})

	// Build the refresh job
	refreshJob := worker.NewRefreshJob(worker.RefreshJobConfig{
		Config:         worker.DefaultRefreshConfig(),
		Logger:         log,
		StationService: stationService,
		WeatherService: weatherService,
	})

	// Create HTTP server for health checks
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"%s"}`, Version)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health check server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	// Prefer Pub/Sub when configured; fall back to a local ticker loop
	// so the worker is useful without GCP.
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	subscription := os.Getenv("PUBSUB_SUBSCRIPTION")

	if projectID != "" && subscription != "" {
		handler, err := worker.NewPubSubHandler(ctx, worker.PubSubConfig{
			ProjectID:        projectID,
			SubscriptionName: subscription,
			RefreshJob:       refreshJob,
			Logger:           log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub handler")
		}
		defer handler.Close()

		go func() {
			if err := handler.Start(ctx); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("pubsub handler stopped")
				cancel()
			}
		}()
	} else {
		log.Warn().Msg("pubsub not configured - running local refresh loop")

		interval := 15 * time.Minute
		if raw := os.Getenv("REFRESH_INTERVAL"); raw != "" {
			if parsed, parseErr := time.ParseDuration(raw); parseErr == nil {
				interval = parsed
			}
		}

		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			// Run one refresh at startup so caches are warm before
			// the first tick.
			runRefresh(ctx, refreshJob, log)

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					runRefresh(ctx, refreshJob, log)
				}
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

func runRefresh(ctx context.Context, job *worker.RefreshJob, log zerolog.Logger) {
	result := job.Run(ctx)
	if err := job.RefreshStations(ctx); err != nil {
		log.Warn().Err(err).Msg("station refresh failed")
	}
	log.Info().
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("refresh cycle completed")
}
