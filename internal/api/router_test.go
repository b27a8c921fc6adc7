package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltroute/voltroute/internal/api"
	"github.com/voltroute/voltroute/internal/api/models"
	"github.com/voltroute/voltroute/internal/auth"
	"github.com/voltroute/voltroute/internal/entitlement"
	"github.com/voltroute/voltroute/internal/featureflags"
	"github.com/voltroute/voltroute/internal/planner"
	"github.com/voltroute/voltroute/internal/routing"
	"github.com/voltroute/voltroute/internal/station"
	"github.com/voltroute/voltroute/internal/trip"
	"github.com/voltroute/voltroute/internal/vehicle"
	"github.com/voltroute/voltroute/pkg/polyline"
)

// testRouteProvider serves a fixed route along the 4.0 meridian.
type testRouteProvider struct {
	distanceMeters int
}

func (p *testRouteProvider) GetDirections(_ context.Context, _ routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	geometry := polyline.Encode([]polyline.Coordinate{
		{Lat: 52.0, Lon: 4.0},
		{Lat: 52.5, Lon: 4.0},
		{Lat: 53.0, Lon: 4.0},
	})
	return &routing.DirectionsResponse{
		Routes: []routing.Route{
			{
				GeometryPolyline: geometry,
				DistanceMeters:   p.distanceMeters,
				DurationSeconds:  3600,
			},
		},
		Provider:  "test",
		FetchedAt: time.Now(),
	}, nil
}

func (p *testRouteProvider) Name() string { return "test" }

func (p *testRouteProvider) SupportedProfiles() []routing.RouteProfile {
	return []routing.RouteProfile{routing.ProfileDrive}
}

// testStationProvider serves one fast charger on the test route.
type testStationProvider struct{}

func (p *testStationProvider) FetchSnapshot(_ context.Context) (*station.Snapshot, error) {
	snapshot := station.NewSnapshot("test")
	st := &station.Station{
		ID:                  "st-1",
		Name:                "Midway Supercharger",
		Operator:            "Fastned",
		Lat:                 52.5,
		Lon:                 4.0,
		AvailableConnectors: 6,
		TotalConnectors:     8,
		PowerKW:             150,
		PricePerKwh:         0.59,
		UpdatedAt:           time.Now(),
	}
	st.Normalize()
	snapshot.Stations[st.ID] = st
	return snapshot, nil
}

func (p *testStationProvider) Name() string { return "test-stations" }

// newTestRouter wires the full API against in-memory backends.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := zerolog.Nop()

	jwtService := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "https://api.voltroute.io",
		Audience:   "voltroute-api",
	})
	authService := auth.NewService(auth.ServiceConfig{
		JWTService:  jwtService,
		UserRepo:    auth.NewInMemoryUserRepository(),
		RefreshRepo: auth.NewInMemoryRefreshTokenRepository(),
	})

	entitlementService := entitlement.NewService(entitlement.ServiceConfig{
		Repository: entitlement.NewInMemoryRepository(),
		Logger:     logger,
	})

	tripService := trip.NewService(trip.NewInMemoryRepository())

	vehicleService := vehicle.NewService(vehicle.ServiceConfig{
		Repository: vehicle.NewInMemoryRepositoryWithCatalog(),
		Logger:     logger,
	})

	stationService := station.NewService(station.ServiceConfig{
		Provider: &testStationProvider{},
		Logger:   logger,
	})

	routingService := routing.NewService(routing.ServiceConfig{
		Provider: &testRouteProvider{distanceMeters: 111_190},
		Logger:   logger,
	})
	t.Cleanup(routingService.Close)

	flagService := featureflags.NewService(featureflags.ServiceConfig{
		Repository:   featureflags.NewInMemoryRepository(),
		Logger:       logger,
		DefaultFlags: featureflags.DefaultFlags(),
	})

	plannerService := planner.NewService(planner.ServiceConfig{
		Flags:  flagService,
		Logger: logger,
	})

	return api.NewRouter(api.RouterConfig{
		Version:            "test",
		BuildTime:          "now",
		Logger:             logger,
		AuthService:        authService,
		EntitlementService: entitlementService,
		TripService:        tripService,
		VehicleService:     vehicleService,
		StationService:     stationService,
		RoutingService:     routingService,
		PlannerService:     plannerService,
		FeatureFlagService: flagService,
	})
}

// signIn performs a device sign-in and returns a bearer token.
func signIn(t *testing.T, router http.Handler) string {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"deviceId": "device-0123456789abcdef",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/device", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tokens auth.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tokens))
	require.NotEmpty(t, tokens.AccessToken)
	return tokens.AccessToken
}

func TestRouter_HealthCheck(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var health models.Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "test", health.Details["version"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRouter_DeviceSignInAndMe(t *testing.T) {
	router := newTestRouter(t)
	token := signIn(t, router)

	req := httptest.NewRequest(http.MethodGet, "/v1/me", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var user auth.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.NotEmpty(t, user.ID)
}

func TestRouter_MeRequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/me", http.NoBody)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestRouter_ListVehicles(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/vehicles", http.NoBody)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var list models.VehicleList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.NotEmpty(t, list.Items)

	var found bool
	for _, v := range list.Items {
		if v.ID == "tesla-model-3-lr" {
			found = true
			assert.Equal(t, "Tesla Model 3 Long Range", v.DisplayName)
			assert.Positive(t, v.BatteryCapacityKwh)
		}
	}
	assert.True(t, found, "catalog should contain tesla-model-3-lr")
}

func TestRouter_ListStationsNearby(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/stations?lat=52.5&lon=4.0&radiusKm=10", http.NoBody)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var list models.StationList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "st-1", list.Items[0].ID)
	assert.True(t, list.Items[0].IsFastCharger)
}

func TestRouter_TripCRUD(t *testing.T) {
	router := newTestRouter(t)
	token := signIn(t, router)

	create := models.TripCreateRequest{
		Label: "Weekend trip",
		Origin: models.TripLocation{
			Point: models.Point{Lat: 52.0, Lon: 4.0},
		},
		Destination: models.TripLocation{
			Point: models.Point{Lat: 53.0, Lon: 4.0},
		},
		VehicleID:      "tesla-model-3-lr",
		BatteryPercent: 80,
	}
	body, err := json.Marshal(create)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/me/trips", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.Trip
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Contains(t, rec.Header().Get("Location"), created.ID)

	req = httptest.NewRequest(http.MethodGet, "/v1/me/trips/"+created.ID, http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/me/trips", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var page models.PagedTrips
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)

	req = httptest.NewRequest(http.MethodDelete, "/v1/me/trips/"+created.ID, http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/me/trips/"+created.ID, http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_PlanRoute(t *testing.T) {
	router := newTestRouter(t)
	token := signIn(t, router)

	battery := 80.0
	planReq := models.PlanRequest{
		Origin: &models.PlanLocation{
			Point: &models.Point{Lat: 52.0, Lon: 4.0},
		},
		Destination: &models.PlanLocation{
			Point: &models.Point{Lat: 53.0, Lon: 4.0},
		},
		VehicleID:      "tesla-model-3-lr",
		BatteryPercent: &battery,
	}
	body, err := json.Marshal(planReq)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/routes:plan", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var plan models.PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))

	// 111 km at 80% battery fits the safe range; no stop is needed.
	assert.False(t, plan.ChargingNeeded)
	assert.Nil(t, plan.Recommended)
	assert.InDelta(t, 111.19, plan.Route.DistanceKm, 0.1)
	assert.Greater(t, plan.Analysis.SafeRangeKm, plan.Route.DistanceKm)
	assert.Equal(t, entitlement.FreeRouteQuota-1, plan.RemainingQuota)
}

func TestRouter_PlanRoute_RequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/routes:plan", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_PlanRoute_ValidationError(t *testing.T) {
	router := newTestRouter(t)
	token := signIn(t, router)

	req := httptest.NewRequest(http.MethodPost, "/v1/routes:plan", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	assert.NotEmpty(t, problem.Errors)
}

func TestRouter_PlanRoute_FreeTierTrailerDenied(t *testing.T) {
	router := newTestRouter(t)
	token := signIn(t, router)

	battery := 80.0
	planReq := models.PlanRequest{
		Origin: &models.PlanLocation{
			Point: &models.Point{Lat: 52.0, Lon: 4.0},
		},
		Destination: &models.PlanLocation{
			Point: &models.Point{Lat: 53.0, Lon: 4.0},
		},
		VehicleID:       "tesla-model-3-lr",
		BatteryPercent:  &battery,
		TrailerWeightKg: 750,
	}
	body, err := json.Marshal(planReq)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/routes:plan", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypePremiumRequired, problem.Type)
}

func TestRouter_MyEntitlement(t *testing.T) {
	router := newTestRouter(t)
	token := signIn(t, router)

	req := httptest.NewRequest(http.MethodGet, "/v1/me/entitlement", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var ent models.EntitlementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ent))
	assert.Equal(t, "FREE", ent.Tier)
	assert.Equal(t, entitlement.FreeRouteQuota, ent.RouteQuota)
}

func TestRouter_AdminFeatureFlags(t *testing.T) {
	router := newTestRouter(t)
	token := signIn(t, router)

	update := featureflags.FlagUpdateRequest{
		Updates: []featureflags.FlagUpdate{
			{Key: featureflags.FlagDisableTrailerPlanning, Value: true},
		},
		Reason: "maintenance",
	}
	body, err := json.Marshal(update)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/v1/admin/feature-flags", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/v1/admin/feature-flags", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var list featureflags.FlagList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))

	var found bool
	for _, f := range list.Items {
		if f.Key == featureflags.FlagDisableTrailerPlanning {
			found = true
			assert.Equal(t, true, f.Value)
		}
	}
	assert.True(t, found)
}
