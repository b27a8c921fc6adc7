package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/voltroute/voltroute/internal/api/models"
	"github.com/voltroute/voltroute/internal/api/response"
	"github.com/voltroute/voltroute/internal/entitlement"
	"github.com/voltroute/voltroute/internal/geocode"
	"github.com/voltroute/voltroute/internal/planner"
	"github.com/voltroute/voltroute/internal/routing"
	"github.com/voltroute/voltroute/internal/station"
	"github.com/voltroute/voltroute/internal/trip"
	"github.com/voltroute/voltroute/internal/vehicle"
)

const (
	// ForecastWindow is how far in the future a travel date may lie before
	// the plan counts as a forecast plan, which requires the premium tier.
	ForecastWindow = 24 * time.Hour

	// MaxAlternatives bounds the alternatives returned beside the
	// recommended stop.
	MaxAlternatives = 3
)

// PlanHandlerConfig holds the collaborators of the plan endpoint.
type PlanHandlerConfig struct {
	Trips        *trip.Service
	Geocode      *geocode.Service
	Vehicles     *vehicle.Service
	Entitlements *entitlement.Service
	Routing      *routing.Service
	Stations     *station.Service
	Planner      *planner.Service
}

// PlanHandler handles route planning with charging stops.
type PlanHandler struct {
	trips        *trip.Service
	geocode      *geocode.Service
	vehicles     *vehicle.Service
	entitlements *entitlement.Service
	routing      *routing.Service
	stations     *station.Service
	planner      *planner.Service
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(cfg PlanHandlerConfig) *PlanHandler {
	return &PlanHandler{
		trips:        cfg.Trips,
		geocode:      cfg.Geocode,
		vehicles:     cfg.Vehicles,
		entitlements: cfg.Entitlements,
		routing:      cfg.Routing,
		stations:     cfg.Stations,
		planner:      cfg.Planner,
	}
}

// planInput is a fully resolved plan request.
type planInput struct {
	origin          routing.Coordinate
	destination     routing.Coordinate
	vehicleID       string
	batteryPercent  float64
	trailerWeightKg float64
	travelDate      time.Time
}

// PlanRoute handles POST /v1/routes:plan - plan a route with charging stops.
func (h *PlanHandler) PlanRoute(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, r, "authentication required")
		return
	}

	var req models.PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	input, ok := h.resolveInput(w, r, userID, &req)
	if !ok {
		return
	}

	ent, ok := h.checkEntitlement(w, r, userID, input)
	if !ok {
		return
	}

	route, err := h.routing.PrimaryRoute(r.Context(), input.origin, input.destination)
	if err != nil {
		switch {
		case errors.Is(err, routing.ErrInvalidCoordinates):
			response.BadRequest(w, r, "origin or destination is outside the routable area", nil)
		case errors.Is(err, routing.ErrNoRouteFound):
			response.BadRequest(w, r, "no drivable route between origin and destination", nil)
		default:
			response.ServiceUnavailable(w, r, "routing provider is unavailable")
		}
		return
	}

	candidates, distances, err := h.corridorCandidates(r.Context(), route)
	if err != nil {
		response.ServiceUnavailable(w, r, "station directory is unavailable")
		return
	}

	planReq, err := h.buildPlanRequest(r.Context(), input, route, candidates, distances, ent)
	if err != nil {
		response.BadRequest(w, r, err.Error(), nil)
		return
	}

	result, err := h.planner.Plan(r.Context(), planReq)
	if err != nil {
		h.writePlanError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, h.toPlanResponse(route, input, result, ent))
}

// resolveInput merges the saved trip (when referenced) with inline overrides
// and geocodes free-text locations. Returns false after writing an error
// response.
func (h *PlanHandler) resolveInput(w http.ResponseWriter, r *http.Request, userID string, req *models.PlanRequest) (*planInput, bool) {
	input := &planInput{
		vehicleID:       req.VehicleID,
		trailerWeightKg: req.TrailerWeightKg,
	}
	if req.BatteryPercent != nil {
		input.batteryPercent = *req.BatteryPercent
	}
	if req.TravelDate != nil {
		input.travelDate = *req.TravelDate
	}

	var haveOrigin, haveDestination, haveBattery bool
	haveBattery = req.BatteryPercent != nil

	if req.TripID != nil {
		saved, err := h.trips.Get(r.Context(), userID, *req.TripID)
		if err != nil {
			if errors.Is(err, trip.ErrTripNotFound) {
				response.NotFound(w, r, "trip not found")
				return nil, false
			}
			response.InternalError(w, r, "failed to load trip")
			return nil, false
		}

		input.origin = routing.Coordinate{Lat: saved.Origin.Point.Lat, Lon: saved.Origin.Point.Lon}
		input.destination = routing.Coordinate{Lat: saved.Destination.Point.Lat, Lon: saved.Destination.Point.Lon}
		haveOrigin, haveDestination = true, true
		if input.vehicleID == "" {
			input.vehicleID = saved.VehicleID
		}
		if !haveBattery {
			input.batteryPercent = saved.BatteryPercent
			haveBattery = true
		}
		if req.TrailerWeightKg == 0 {
			input.trailerWeightKg = saved.TrailerWeightKg
		}
		if req.TravelDate == nil && saved.TravelDate != nil {
			input.travelDate = *saved.TravelDate
		}
	}

	if req.Origin != nil {
		coord, ok := h.resolveLocation(w, r, req.Origin, "origin")
		if !ok {
			return nil, false
		}
		input.origin = coord
		haveOrigin = true
	}
	if req.Destination != nil {
		coord, ok := h.resolveLocation(w, r, req.Destination, "destination")
		if !ok {
			return nil, false
		}
		input.destination = coord
		haveDestination = true
	}

	var fieldErrs []models.FieldError
	if !haveOrigin {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "origin", Message: "required unless tripId is set", Code: "REQUIRED"})
	}
	if !haveDestination {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "destination", Message: "required unless tripId is set", Code: "REQUIRED"})
	}
	if input.vehicleID == "" {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "vehicleId", Message: "required unless tripId is set", Code: "REQUIRED"})
	}
	if !haveBattery {
		fieldErrs = append(fieldErrs, models.FieldError{Field: "batteryPercent", Message: "required unless tripId is set", Code: "REQUIRED"})
	}
	if len(fieldErrs) > 0 {
		response.BadRequest(w, r, "validation error", fieldErrs)
		return nil, false
	}

	return input, true
}

// resolveLocation turns a PlanLocation into a coordinate, geocoding the
// query form when needed.
func (h *PlanHandler) resolveLocation(w http.ResponseWriter, r *http.Request, loc *models.PlanLocation, field string) (routing.Coordinate, bool) {
	if loc.Point != nil {
		return routing.Coordinate{Lat: loc.Point.Lat, Lon: loc.Point.Lon}, true
	}
	if loc.Query == nil || *loc.Query == "" {
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: field, Message: "either point or query is required", Code: "REQUIRED"},
		})
		return routing.Coordinate{}, false
	}
	if h.geocode == nil {
		response.BadRequest(w, r, "validation error", []models.FieldError{
			{Field: field + ".query", Message: "free-text locations are not supported", Code: "UNSUPPORTED"},
		})
		return routing.Coordinate{}, false
	}

	resolved, err := h.geocode.Resolve(r.Context(), *loc.Query)
	if err != nil {
		if errors.Is(err, geocode.ErrNoResults) {
			response.BadRequest(w, r, "validation error", []models.FieldError{
				{Field: field + ".query", Message: "no matching location found", Code: "NOT_FOUND"},
			})
			return routing.Coordinate{}, false
		}
		response.ServiceUnavailable(w, r, "geocoding provider is unavailable")
		return routing.Coordinate{}, false
	}
	return routing.Coordinate{Lat: resolved.Lat, Lon: resolved.Lon}, true
}

// checkEntitlement enforces tier gating and consumes one route credit.
// Returns false after writing an error response.
func (h *PlanHandler) checkEntitlement(w http.ResponseWriter, r *http.Request, userID string, input *planInput) (*entitlement.Entitlement, bool) {
	ent, err := h.entitlements.Get(r.Context(), userID)
	if err != nil {
		response.InternalError(w, r, "failed to load entitlement")
		return nil, false
	}

	if input.trailerWeightKg > 0 && !ent.AllowsTrailer() {
		response.PremiumRequired(w, r, "trailer planning requires a premium subscription")
		return nil, false
	}
	if !input.travelDate.IsZero() && time.Until(input.travelDate) > ForecastWindow && !ent.AllowsForecast() {
		response.PremiumRequired(w, r, "planning future trips requires a premium subscription")
		return nil, false
	}

	ent, err = h.entitlements.ConsumeRouteCredit(r.Context(), userID)
	if err != nil {
		if errors.Is(err, entitlement.ErrQuotaExceeded) {
			response.QuotaExceeded(w, r, "route plan quota exhausted for this period")
			return nil, false
		}
		response.InternalError(w, r, "failed to consume route credit")
		return nil, false
	}
	return ent, true
}

// corridorCandidates returns the stations within the route corridor together
// with their along-route distances from the origin.
func (h *PlanHandler) corridorCandidates(ctx context.Context, route *routing.Route) ([]*station.Station, map[string]float64, error) {
	snapshot, err := h.stations.GetSnapshot(ctx)
	if err != nil {
		return nil, nil, err
	}

	points := make(map[string]routing.Coordinate, len(snapshot.Stations))
	for id, st := range snapshot.Stations {
		points[id] = routing.Coordinate{Lat: st.Lat, Lon: st.Lon}
	}

	distances := routing.AlongRouteDistancesKm(route.GeometryPolyline, points, routing.DefaultMaxOffsetKm)

	candidates := make([]*station.Station, 0, len(distances))
	for id := range distances {
		candidates = append(candidates, snapshot.Stations[id])
	}
	return candidates, distances, nil
}

func (h *PlanHandler) buildPlanRequest(ctx context.Context, input *planInput, route *routing.Route, candidates []*station.Station, distances map[string]float64, ent *entitlement.Entitlement) (*planner.Request, error) {
	spec, err := h.vehicles.Get(ctx, input.vehicleID)
	if err != nil {
		if errors.Is(err, vehicle.ErrVehicleNotFound) {
			return nil, fmt.Errorf("unknown vehicle %q", input.vehicleID)
		}
		return nil, err
	}

	return &planner.Request{
		Vehicle:         spec,
		BatteryPercent:  input.batteryPercent,
		TrailerWeightKg: input.trailerWeightKg,
		Route: planner.RouteContext{
			Origin:      planner.Coordinate{Lat: input.origin.Lat, Lon: input.origin.Lon},
			Destination: planner.Coordinate{Lat: input.destination.Lat, Lon: input.destination.Lon},
			DistanceKm:  route.DistanceKm(),
			TravelDate:  input.travelDate,
		},
		Candidates:         candidates,
		CandidateDistances: distances,
		ConservativeMargin: ent.ConservativeMargin(),
	}, nil
}

func (h *PlanHandler) writePlanError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *planner.ValidationError
	if errors.As(err, &verr) {
		fieldErrs := make([]models.FieldError, len(verr.Fields))
		for i, f := range verr.Fields {
			fieldErrs[i] = models.FieldError{Field: f.Field, Message: f.Reason}
		}
		response.BadRequest(w, r, "validation error", fieldErrs)
		return
	}

	var nerr *planner.NoSuitableStationError
	if errors.As(err, &nerr) {
		response.NoSuitableStation(w, r, nerr.Error())
		return
	}

	if errors.Is(err, planner.ErrUpstreamDataUnavailable) {
		response.ServiceUnavailable(w, r, "required upstream data is unavailable")
		return
	}

	response.InternalError(w, r, "route planning failed")
}

func (h *PlanHandler) toPlanResponse(route *routing.Route, input *planInput, result *planner.Result, ent *entitlement.Entitlement) models.PlanResponse {
	resp := models.PlanResponse{
		GeneratedAt: models.Timestamp(time.Now()),
		Route: models.PlanRoute{
			Origin:           models.Point{Lat: input.origin.Lat, Lon: input.origin.Lon},
			Destination:      models.Point{Lat: input.destination.Lat, Lon: input.destination.Lon},
			DistanceKm:       route.DistanceKm(),
			DurationSeconds:  float64(route.DurationSeconds),
			GeometryPolyline: route.GeometryPolyline,
		},
		ChargingNeeded: result.ChargingNeeded,
		Analysis: models.PlanAnalysis{
			WeatherFactor:                  result.Analysis.WeatherFactor,
			TrailerFactor:                  result.Analysis.TrailerFactor,
			AdjustedConsumptionKwhPer100Km: result.Analysis.AdjustedConsumptionKwhPer100Km,
			SafeRangeKm:                    result.Analysis.SafeRangeKm,
			TargetStopKm:                   result.Analysis.TargetStopKm,
			WeatherFallback:                result.Analysis.WeatherFallback,
			DistancesEstimated:             result.Analysis.DistancesEstimated,
		},
		RemainingQuota: ent.RemainingQuota(),
	}

	if result.Recommended != nil {
		rec := toPlanStation(*result.Recommended)
		resp.Recommended = &rec
	}
	for i, ranked := range result.Ranked {
		if i == 0 && result.Recommended != nil && ranked.Station.ID == result.Recommended.Station.ID {
			continue
		}
		if len(resp.Alternatives) == MaxAlternatives {
			break
		}
		resp.Alternatives = append(resp.Alternatives, toPlanStation(ranked))
	}

	if result.Analysis.WeatherFallback {
		provider := "open-meteo"
		resp.Warnings = append(resp.Warnings, models.Warning{
			Code:     "WEATHER_FALLBACK",
			Message:  "weather data was unavailable, neutral conditions assumed",
			Provider: &provider,
		})
	}
	if result.Analysis.DistancesEstimated {
		resp.Warnings = append(resp.Warnings, models.Warning{
			Code:    "DISTANCES_ESTIMATED",
			Message: "station distances were estimated from straight-line geometry",
		})
	}

	return resp
}

func toPlanStation(ranked planner.RankedStation) models.PlanStation {
	return models.PlanStation{
		Station:               toAPIStation(ranked.Station),
		Score:                 ranked.Score,
		Label:                 ranked.Label,
		DistanceFromStartKm:   ranked.DistanceFromStartKm,
		ArrivalBatteryPercent: ranked.ArrivalBatteryPercent,
	}
}
