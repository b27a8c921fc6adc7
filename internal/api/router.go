// Package api provides the HTTP API for VoltRoute.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/voltroute/voltroute/internal/api/handler"
	"github.com/voltroute/voltroute/internal/api/middleware"
	"github.com/voltroute/voltroute/internal/auth"
	"github.com/voltroute/voltroute/internal/entitlement"
	"github.com/voltroute/voltroute/internal/featureflags"
	"github.com/voltroute/voltroute/internal/geocode"
	"github.com/voltroute/voltroute/internal/planner"
	"github.com/voltroute/voltroute/internal/provider/resilience"
	"github.com/voltroute/voltroute/internal/routing"
	"github.com/voltroute/voltroute/internal/station"
	"github.com/voltroute/voltroute/internal/trip"
	"github.com/voltroute/voltroute/internal/vehicle"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version            string
	BuildTime          string
	Logger             zerolog.Logger
	ServiceName        string
	Metrics            *middleware.Metrics
	AuthService        *auth.Service
	EntitlementService *entitlement.Service
	TripService        *trip.Service
	VehicleService     *vehicle.Service
	StationService     *station.Service
	RoutingService     *routing.Service
	GeocodeService     *geocode.Service
	PlannerService     *planner.Service
	FeatureFlagService *featureflags.Service
	ProviderRegistry   *resilience.Registry
	ReadinessChecks    []handler.SubsystemCheck
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "voltroute-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)
	r.Use(middleware.ContentTypeJSON)      // JSON content type

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(handler.OpsHandlerConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Registry:  cfg.ProviderRegistry,
		Checks:    cfg.ReadinessChecks,
		Flags:     cfg.FeatureFlagService,
	})
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	entitlementHandler := handler.NewEntitlementHandler(cfg.EntitlementService)
	tripHandler := handler.NewTripHandler(cfg.TripService)
	vehicleHandler := handler.NewVehicleHandler(cfg.VehicleService)
	stationHandler := handler.NewStationHandler(cfg.StationService)
	planHandler := handler.NewPlanHandler(handler.PlanHandlerConfig{
		Trips:        cfg.TripService,
		Geocode:      cfg.GeocodeService,
		Vehicles:     cfg.VehicleService,
		Entitlements: cfg.EntitlementService,
		Routing:      cfg.RoutingService,
		Stations:     cfg.StationService,
		Planner:      cfg.PlannerService,
	})
	featureFlagsHandler := handler.NewFeatureFlagsHandler(cfg.FeatureFlagService)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.AuthService)

	// Create rate limit middleware for different endpoint categories
	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit)             // 10 req/min
	expensiveRateLimit := middleware.RateLimitByUser(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)     // 100 req/min

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Auth endpoints (public) - strict rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(authRateLimit) // 10 requests per minute per IP
			r.Post("/device", authHandler.SignInWithDevice)
			r.Post("/refresh", authHandler.RefreshToken)
			r.Post("/logout", authHandler.Logout)
			// logout-all requires authentication
			r.With(authMiddleware).Post("/logout-all", authHandler.LogoutAll)
		})

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Vehicle catalog (public) - standard rate limiting
		r.Route("/vehicles", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", vehicleHandler.ListVehicles)
			r.Get("/{vehicleId}", vehicleHandler.GetVehicle)
		})

		// Station metadata (public) - standard rate limiting
		r.Route("/stations", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/", stationHandler.ListStations)
			r.Get("/{stationId}", stationHandler.GetStation)
		})

		// Me endpoints (authenticated) - user-based rate limiting
		r.Route("/me", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit)) // 100 req/min per user
			r.Get("/", authHandler.Me)
			r.Get("/entitlement", entitlementHandler.GetMyEntitlement)

			// Saved trips
			r.Route("/trips", func(r chi.Router) {
				r.Get("/", tripHandler.ListTrips)
				r.Post("/", tripHandler.CreateTrip)
				r.Route("/{tripId}", func(r chi.Router) {
					r.Get("/", tripHandler.GetTrip)
					r.Put("/", tripHandler.UpdateTrip)
					r.Delete("/", tripHandler.DeleteTrip)
				})
			})
		})

		// Plan endpoint - expensive compute, strict per-user rate limiting
		r.With(authMiddleware).With(expensiveRateLimit).Post("/routes:plan", planHandler.PlanRoute)

		// Admin endpoints (authenticated) - for internal operations
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)

			// Feature flags management
			r.Route("/feature-flags", func(r chi.Router) {
				r.Get("/", featureFlagsHandler.ListFeatureFlags)
				r.Put("/", featureFlagsHandler.UpsertFeatureFlags)
				r.Post("/invalidate", featureFlagsHandler.InvalidateCache)
			})

			// Entitlement management
			r.Put("/entitlements/{userId}", entitlementHandler.SetTier)
		})
	})

	return r
}
