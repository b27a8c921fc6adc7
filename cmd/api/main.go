// Package main provides the entrypoint for the VoltRoute API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/voltroute/voltroute/internal/api"
	"github.com/voltroute/voltroute/internal/api/handler"
	"github.com/voltroute/voltroute/internal/api/middleware"
	"github.com/voltroute/voltroute/internal/auth"
	"github.com/voltroute/voltroute/internal/database"
	"github.com/voltroute/voltroute/internal/entitlement"
	"github.com/voltroute/voltroute/internal/featureflags"
	"github.com/voltroute/voltroute/internal/geocode"
	"github.com/voltroute/voltroute/internal/planner"
	"github.com/voltroute/voltroute/internal/provider/resilience"
	"github.com/voltroute/voltroute/internal/routing"
	"github.com/voltroute/voltroute/internal/routing/openrouteservice"
	"github.com/voltroute/voltroute/internal/station"
	"github.com/voltroute/voltroute/internal/station/openchargemap"
	"github.com/voltroute/voltroute/internal/telemetry"
	"github.com/voltroute/voltroute/internal/trip"
	"github.com/voltroute/voltroute/internal/vehicle"
	"github.com/voltroute/voltroute/internal/weather"
	"github.com/voltroute/voltroute/internal/weather/openmeteo"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "voltroute-api"

	// Load .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting VoltRoute API")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	// Connect to database
	dbConfig := database.ConfigFromEnv()
	pool, err := database.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	log.Info().
		Str("host", dbConfig.Host).
		Int("port", dbConfig.Port).
		Str("database", dbConfig.Database).
		Msg("database connected")

	// Initialize auth repositories and service
	authUserRepo := auth.NewPostgresUserRepository(pool)
	authRefreshRepo := auth.NewPostgresRefreshTokenRepository(pool)

	// Initialize JWT service (get signing key from environment)
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}
	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "https://api.voltroute.io"
	}
	jwtAudience := os.Getenv("JWT_AUDIENCE")
	if jwtAudience == "" {
		jwtAudience = serviceName
	}

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: jwtSigningKey,
		Issuer:     jwtIssuer,
		Audience:   jwtAudience,
	})

	authService := auth.NewService(auth.ServiceConfig{
		JWTService:    jwtService,
		UserRepo:      authUserRepo,
		RefreshRepo:   authRefreshRepo,
		DefaultLocale: "nl-NL",
	})
	log.Info().Msg("auth service initialized")

	// Initialize entitlement repository and service
	entitlementRepo := entitlement.NewPostgresRepository(pool)
	entitlementService := entitlement.NewService(entitlement.ServiceConfig{
		Repository: entitlementRepo,
		Logger:     log,
	})
	log.Info().Msg("entitlement service initialized")

	// Initialize trip repository and service
	tripRepo := trip.NewPostgresRepository(pool)
	tripService := trip.NewService(tripRepo)
	log.Info().Msg("trip service initialized")

	// Initialize vehicle catalog (specs are seeded via migrations)
	vehicleRepo := vehicle.NewPostgresRepository(pool)
	vehicleService := vehicle.NewService(vehicle.ServiceConfig{
		Repository: vehicleRepo,
		Logger:     log,
	})
	log.Info().Msg("vehicle service initialized")

	// Initialize feature flags repository and service
	ffRepo := featureflags.NewPostgresRepository(pool)
	ffService := featureflags.NewService(featureflags.ServiceConfig{
		Repository:   ffRepo,
		Logger:       log,
		CacheTTL:     1 * time.Minute,
		DefaultFlags: featureflags.DefaultFlags(),
	})
	log.Info().Msg("feature flags service initialized")

	// Initialize geocoding service
	geocodeService := geocode.NewService(geocode.ServiceConfig{
		ServerURL: os.Getenv("NOMINATIM_URL"),
		Logger:    log,
	})
	log.Info().Msg("geocode service initialized")

	// Initialize routing provider and service
	orsAPIKey := os.Getenv("ORS_API_KEY")
	if orsAPIKey == "" {
		log.Warn().Msg("ORS_API_KEY not set - routing requests will be rejected upstream")
	}
	routingService := routing.NewService(routing.ServiceConfig{
		Provider: openrouteservice.NewClient(openrouteservice.ClientConfig{
			APIKey: orsAPIKey,
			Logger: log,
		}),
		Logger: log,
	})
	defer routingService.Close()
	log.Info().Msg("routing service initialized")

	// Initialize station directory provider and service
	ocmAPIKey := os.Getenv("OCM_API_KEY")
	if ocmAPIKey == "" {
		log.Warn().Msg("OCM_API_KEY not set - station snapshots will be rejected upstream")
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
	log.Info().Msg("station service initialized")

	// Initialize weather provider and service
	weatherService := weather.NewService(weather.ServiceConfig{
		Provider: openmeteo.NewClient(openmeteo.ClientConfig{
			Logger: log,
		}),
		Logger: log,
	})
	log.Info().Msg("weather service initialized")

	// Initialize the route planner
	plannerService := planner.NewService(planner.ServiceConfig{
		Weather: weatherService,
		Flags:   ffService,
		Logger:  log,
	})
	log.Info().Msg("planner service initialized")

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:            Version,
		BuildTime:          BuildTime,
		Logger:             log,
		ServiceName:        serviceName,
		Metrics:            metrics,
		AuthService:        authService,
		EntitlementService: entitlementService,
		TripService:        tripService,
		VehicleService:     vehicleService,
		StationService:     stationService,
		RoutingService:     routingService,
		GeocodeService:     geocodeService,
		PlannerService:     plannerService,
		FeatureFlagService: ffService,
		ProviderRegistry:   resilience.GlobalRegistry,
		ReadinessChecks: []handler.SubsystemCheck{
			{
				Name:  "database",
				Check: pool.Ping,
			},
		},
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}
