// Package planner implements charging-stop planning for electric vehicle
// routes. Given a vehicle, route context, current conditions, and candidate
// charging stations it determines whether a charging stop is needed and, if
// so, ranks the candidates and recommends the best one.
package planner

import (
	"time"

	"github.com/voltroute/voltroute/internal/consumption"
	"github.com/voltroute/voltroute/internal/station"
	"github.com/voltroute/voltroute/internal/vehicle"
)

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RouteContext describes the route being planned.
type RouteContext struct {
	Origin      Coordinate `json:"origin"`
	Destination Coordinate `json:"destination"`

	// DistanceKm is the total route distance. Zero means unknown.
	DistanceKm float64 `json:"distance_km"`

	// TravelDate is when the trip starts. Zero value means now.
	TravelDate time.Time `json:"travel_date,omitempty"`
}

// Request is a single planning invocation.
type Request struct {
	Vehicle *vehicle.Spec

	// BatteryPercent is the current state of charge, 0 to 100.
	BatteryPercent float64

	// TrailerWeightKg is the towed weight in kilograms. Zero means no trailer.
	TrailerWeightKg float64

	Route RouteContext

	// Weather holds observed conditions along the route. Nil means unknown;
	// the orchestrator will attempt a fetch and fall back to neutral
	// conditions if the upstream is unavailable.
	Weather *consumption.WeatherSample

	// Candidates are the charging stations considered for the stop. Each
	// candidate's distance from the route origin must be present in
	// CandidateDistances under the station ID unless distance estimation
	// is enabled.
	Candidates []*station.Station

	// CandidateDistances maps station ID to along-route distance from the
	// origin in kilometers.
	CandidateDistances map[string]float64

	// ConservativeMargin selects the larger safety margin reserved for
	// cautious planning profiles.
	ConservativeMargin bool
}

// RankedStation is a scored candidate in ranking order.
type RankedStation struct {
	Station *station.Station `json:"station"`

	// Score is the composite suitability score, 0 to 100.
	Score float64 `json:"score"`

	// Label is the human-readable quality band for Score.
	Label string `json:"label"`

	// DistanceFromStartKm is the along-route distance to the station.
	DistanceFromStartKm float64 `json:"distance_from_start_km"`

	// ArrivalBatteryPercent is the predicted state of charge on arrival.
	ArrivalBatteryPercent float64 `json:"arrival_battery_percent"`
}

// Analysis carries the intermediate quantities behind a planning result so
// clients can explain the recommendation.
type Analysis struct {
	// WeatherFactor and TrailerFactor are the consumption multipliers used.
	WeatherFactor float64 `json:"weather_factor"`
	TrailerFactor float64 `json:"trailer_factor"`

	// AdjustedConsumptionKwhPer100Km is base consumption after both factors.
	AdjustedConsumptionKwhPer100Km float64 `json:"adjusted_consumption_kwh_per_100km"`

	// SafeRangeKm is the margin-reduced achievable range.
	SafeRangeKm float64 `json:"safe_range_km"`

	// TargetStopKm is the preferred stop distance when charging is needed.
	TargetStopKm float64 `json:"target_stop_km,omitempty"`

	// WeatherFallback is true when upstream weather was unavailable and
	// neutral conditions were assumed.
	WeatherFallback bool `json:"weather_fallback,omitempty"`

	// DistancesEstimated is true when candidate distances were estimated
	// from straight-line geometry rather than supplied by the router.
	DistancesEstimated bool `json:"distances_estimated,omitempty"`
}

// Result is the outcome of a planning invocation.
type Result struct {
	// ChargingNeeded is false when the route fits within safe range.
	ChargingNeeded bool `json:"charging_needed"`

	// Recommended is the top-ranked station. Nil when no charging is needed.
	Recommended *RankedStation `json:"recommended,omitempty"`

	// Ranked holds all suitable candidates in ranking order, best first.
	Ranked []RankedStation `json:"ranked,omitempty"`

	Analysis Analysis `json:"analysis"`
}

// ScoreLabel maps a composite score to its quality band.
func ScoreLabel(score float64) string {
	switch {
	case score > 80:
		return "excellent"
	case score > 60:
		return "good"
	default:
		return "acceptable"
	}
}
