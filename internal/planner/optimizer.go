package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog"

	"github.com/voltroute/voltroute/internal/consumption"
	"github.com/voltroute/voltroute/pkg/geo"
)

// Planning phases. Each invocation walks a fresh state machine through
// these so a phase can never run before its inputs exist.
const (
	stateValidating = "validating"
	stateComputing  = "computing_factors"
	stateAssessing  = "assessing_feasibility"
	stateRanking    = "ranking_stations"
	stateComplete   = "complete"
	stateFailed     = "failed"
)

const (
	eventValidated        = "validated"
	eventFactorsComputed  = "factors_computed"
	eventRouteFits        = "route_fits"
	eventChargingRequired = "charging_required"
	eventRanked           = "ranked"
	eventFail             = "fail"
)

// Feature flag keys consulted by the orchestrator.
const (
	// FlagRequireRouteDistances controls whether missing along-route
	// distances abort planning or fall back to straight-line estimates.
	FlagRequireRouteDistances = "require_route_distances"

	// FlagDisableTrailerPlanning forces the trailer factor to neutral.
	FlagDisableTrailerPlanning = "disable_trailer_planning"
)

// WeatherSource supplies route weather when the request carries none.
type WeatherSource interface {
	// RouteSample returns conditions representative of the route at the
	// given travel time.
	RouteSample(ctx context.Context, originLat, originLon, destLat, destLon float64, at time.Time) (consumption.WeatherSample, error)
}

// FlagSource answers feature flag lookups. Implementations must return
// the flag's default when the backing store is unavailable.
type FlagSource interface {
	Enabled(ctx context.Context, key string) bool
}

// ServiceConfig holds configuration for the planning service.
type ServiceConfig struct {
	// Weather supplies route conditions. Optional; without it requests
	// that carry no weather sample plan against neutral conditions.
	Weather WeatherSource

	// Flags answers feature flag lookups. Optional; without it the
	// orchestrator uses compiled-in defaults (distances required,
	// trailer planning enabled).
	Flags FlagSource

	// Scoring overrides the default ranking configuration.
	Scoring *ScoringConfig

	// Logger for planning operations.
	Logger zerolog.Logger
}

// Service orchestrates a planning invocation end to end.
type Service struct {
	weather WeatherSource
	flags   FlagSource
	scorer  *Scorer
	logger  zerolog.Logger
}

// NewService creates a planning service.
func NewService(cfg ServiceConfig) *Service {
	scoring := DefaultScoringConfig()
	if cfg.Scoring != nil {
		scoring = *cfg.Scoring
	}
	return &Service{
		weather: cfg.Weather,
		flags:   cfg.Flags,
		scorer:  NewScorer(scoring),
		logger:  cfg.Logger.With().Str("component", "planner").Logger(),
	}
}

// Plan runs a full planning invocation. It returns a Result on success, a
// *ValidationError when the request is malformed, ErrUpstreamDataUnavailable
// when required upstream data is missing, and *NoSuitableStationError when
// charging is needed but no candidate qualifies.
func (s *Service) Plan(ctx context.Context, req *Request) (*Result, error) {
	machine := newPlanMachine()
	logger := s.logger.With().
		Float64("battery_percent", req.BatteryPercent).
		Float64("route_km", req.Route.DistanceKm).
		Logger()

	fail := func(err error) (*Result, error) {
		_ = machine.Event(ctx, eventFail)
		return nil, err
	}

	// Phase 1: validation. Every violation is collected before failing.
	if verr := validate(req); verr != nil {
		logger.Debug().Int("violations", len(verr.Fields)).Msg("plan request rejected")
		return fail(verr)
	}
	if err := machine.Event(ctx, eventValidated); err != nil {
		return fail(err)
	}

	// Phase 2: consumption factors.
	result := &Result{}
	sample := s.resolveWeather(ctx, req, &result.Analysis, logger)

	trailerWeight := req.TrailerWeightKg
	if s.flagEnabled(ctx, FlagDisableTrailerPlanning, false) {
		trailerWeight = 0
	}
	factors := consumption.ComputeFactors(sample, trailerWeight)
	result.Analysis.WeatherFactor = factors.Weather
	result.Analysis.TrailerFactor = factors.Trailer
	if err := machine.Event(ctx, eventFactorsComputed); err != nil {
		return fail(err)
	}

	// Phase 3: feasibility.
	margin := DefaultSafetyMargin
	if req.ConservativeMargin {
		margin = ConservativeSafetyMargin
	}
	est := EstimateRange(req.Vehicle, req.BatteryPercent, factors, margin)
	result.Analysis.AdjustedConsumptionKwhPer100Km = est.AdjustedConsumptionKwhPer100Km
	result.Analysis.SafeRangeKm = est.SafeRangeKm

	routeKm, err := s.resolveRouteDistance(ctx, req, &result.Analysis)
	if err != nil {
		return fail(err)
	}

	if RouteFits(routeKm, est.SafeRangeKm) {
		if err := machine.Event(ctx, eventRouteFits); err != nil {
			return fail(err)
		}
		logger.Info().
			Float64("safe_range_km", est.SafeRangeKm).
			Msg("route fits within safe range, no charging needed")
		result.ChargingNeeded = false
		return result, nil
	}
	if err := machine.Event(ctx, eventChargingRequired); err != nil {
		return fail(err)
	}

	// Phase 4: station ranking.
	result.ChargingNeeded = true
	result.Analysis.TargetStopKm = TargetStopKm(est.SafeRangeKm)

	distances, err := s.resolveCandidateDistances(ctx, req, &result.Analysis)
	if err != nil {
		return fail(err)
	}

	ranked, exclusions := s.scorer.Rank(req.Candidates, distances, RankInput{
		BatteryPercent:                 req.BatteryPercent,
		BatteryCapacityKwh:             req.Vehicle.BatteryCapacityKwh,
		AdjustedConsumptionKwhPer100Km: est.AdjustedConsumptionKwhPer100Km,
		SafeRangeKm:                    est.SafeRangeKm,
		TargetStopKm:                   result.Analysis.TargetStopKm,
	})

	if len(ranked) == 0 {
		return fail(&NoSuitableStationError{
			SafeRangeKm:  est.SafeRangeKm,
			TargetStopKm: result.Analysis.TargetStopKm,
			Considered:   len(req.Candidates),
			Exclusions:   exclusions,
		})
	}

	result.Ranked = ranked
	result.Recommended = &ranked[0]
	if err := machine.Event(ctx, eventRanked); err != nil {
		return fail(err)
	}

	logger.Info().
		Str("recommended", result.Recommended.Station.ID).
		Float64("score", result.Recommended.Score).
		Int("ranked", len(ranked)).
		Int("excluded", len(exclusions)).
		Msg("charging stop planned")
	return result, nil
}

// newPlanMachine builds the per-invocation phase machine.
func newPlanMachine() *fsm.FSM {
	return fsm.NewFSM(
		stateValidating,
		fsm.Events{
			{Name: eventValidated, Src: []string{stateValidating}, Dst: stateComputing},
			{Name: eventFactorsComputed, Src: []string{stateComputing}, Dst: stateAssessing},
			{Name: eventRouteFits, Src: []string{stateAssessing}, Dst: stateComplete},
			{Name: eventChargingRequired, Src: []string{stateAssessing}, Dst: stateRanking},
			{Name: eventRanked, Src: []string{stateRanking}, Dst: stateComplete},
			{Name: eventFail, Src: []string{stateValidating, stateComputing, stateAssessing, stateRanking}, Dst: stateFailed},
		},
		fsm.Callbacks{},
	)
}

// validate checks every request field and aggregates all violations.
func validate(req *Request) *ValidationError {
	var fields []FieldError

	if req.Vehicle == nil {
		fields = append(fields, FieldError{Field: "vehicle", Reason: "vehicle is required"})
	} else {
		if req.Vehicle.BatteryCapacityKwh <= 0 {
			fields = append(fields, FieldError{Field: "vehicle.battery_capacity_kwh", Reason: "must be positive"})
		}
		if req.Vehicle.ConsumptionKwhPer100Km <= 0 {
			fields = append(fields, FieldError{Field: "vehicle.consumption_kwh_per_100km", Reason: "must be positive"})
		}
	}

	if req.BatteryPercent < 0 || req.BatteryPercent > 100 {
		fields = append(fields, FieldError{Field: "battery_percent", Reason: "must be between 0 and 100"})
	}

	if req.TrailerWeightKg < 0 {
		fields = append(fields, FieldError{Field: "trailer_weight_kg", Reason: "must not be negative"})
	} else if req.TrailerWeightKg > consumption.MaxTrailerWeightKg {
		fields = append(fields, FieldError{
			Field:  "trailer_weight_kg",
			Reason: fmt.Sprintf("must not exceed %.0f kg", consumption.MaxTrailerWeightKg),
		})
	}

	if !geo.ValidCoordinates(req.Route.Origin.Lat, req.Route.Origin.Lon) {
		fields = append(fields, FieldError{Field: "route.origin", Reason: "invalid coordinates"})
	}
	if !geo.ValidCoordinates(req.Route.Destination.Lat, req.Route.Destination.Lon) {
		fields = append(fields, FieldError{Field: "route.destination", Reason: "invalid coordinates"})
	}
	if req.Route.Origin == req.Route.Destination {
		fields = append(fields, FieldError{Field: "route", Reason: "origin and destination must differ"})
	}

	if req.Route.DistanceKm < 0 {
		fields = append(fields, FieldError{Field: "route.distance_km", Reason: "must not be negative"})
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// resolveWeather returns the sample to plan against. A supplied sample wins;
// otherwise the weather source is consulted, and on failure planning
// degrades to neutral conditions rather than aborting.
func (s *Service) resolveWeather(ctx context.Context, req *Request, analysis *Analysis, logger zerolog.Logger) consumption.WeatherSample {
	if req.Weather != nil {
		return *req.Weather
	}
	if s.weather == nil {
		analysis.WeatherFallback = true
		return consumption.Neutral()
	}

	at := req.Route.TravelDate
	if at.IsZero() {
		at = time.Now()
	}
	sample, err := s.weather.RouteSample(ctx,
		req.Route.Origin.Lat, req.Route.Origin.Lon,
		req.Route.Destination.Lat, req.Route.Destination.Lon, at)
	if err != nil {
		logger.Warn().Err(err).Msg("weather unavailable, planning with neutral conditions")
		analysis.WeatherFallback = true
		return consumption.Neutral()
	}
	return sample
}

// resolveRouteDistance returns the route length to assess. When the router
// supplied no distance, behavior depends on the require_route_distances
// flag: abort, or estimate from straight-line geometry.
func (s *Service) resolveRouteDistance(ctx context.Context, req *Request, analysis *Analysis) (float64, error) {
	if req.Route.DistanceKm > 0 {
		return req.Route.DistanceKm, nil
	}
	if s.flagEnabled(ctx, FlagRequireRouteDistances, true) {
		return 0, fmt.Errorf("%w: route distance missing", ErrUpstreamDataUnavailable)
	}
	analysis.DistancesEstimated = true
	return geo.HaversineKm(
		req.Route.Origin.Lat, req.Route.Origin.Lon,
		req.Route.Destination.Lat, req.Route.Destination.Lon), nil
}

// resolveCandidateDistances fills in missing along-route distances with
// straight-line estimates when the flag permits it.
func (s *Service) resolveCandidateDistances(ctx context.Context, req *Request, analysis *Analysis) (map[string]float64, error) {
	distances := make(map[string]float64, len(req.Candidates))
	for id, d := range req.CandidateDistances {
		distances[id] = d
	}

	var missing []string
	for _, st := range req.Candidates {
		if _, ok := distances[st.ID]; !ok {
			missing = append(missing, st.ID)
		}
	}
	if len(missing) == 0 {
		return distances, nil
	}

	if s.flagEnabled(ctx, FlagRequireRouteDistances, true) {
		return nil, fmt.Errorf("%w: no route distance for %d of %d candidate stations",
			ErrUpstreamDataUnavailable, len(missing), len(req.Candidates))
	}

	analysis.DistancesEstimated = true
	for _, st := range req.Candidates {
		if _, ok := distances[st.ID]; ok {
			continue
		}
		distances[st.ID] = geo.HaversineKm(req.Route.Origin.Lat, req.Route.Origin.Lon, st.Lat, st.Lon)
	}
	return distances, nil
}

func (s *Service) flagEnabled(ctx context.Context, key string, def bool) bool {
	if s.flags == nil {
		return def
	}
	return s.flags.Enabled(ctx, key)
}

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// IsNoSuitableStation reports whether err is a no-suitable-station outcome.
func IsNoSuitableStation(err error) bool {
	var nerr *NoSuitableStationError
	return errors.As(err, &nerr)
}
