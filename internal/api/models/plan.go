package models

import "time"

// PlanLocation identifies a plan endpoint either as a coordinate or as a
// free-text query to be geocoded.
type PlanLocation struct {
	Point *Point  `json:"point,omitempty"`
	Query *string `json:"query,omitempty"`
}

// PlanRequest is the request body for planning a route with charging stops.
// Either tripId or origin+destination+vehicleId+batteryPercent must be set;
// inline fields override the saved trip when both are present.
type PlanRequest struct {
	TripID          *string       `json:"tripId,omitempty"`
	Origin          *PlanLocation `json:"origin,omitempty"`
	Destination     *PlanLocation `json:"destination,omitempty"`
	VehicleID       string        `json:"vehicleId,omitempty"`
	BatteryPercent  *float64      `json:"batteryPercent,omitempty"`
	TrailerWeightKg float64       `json:"trailerWeightKg,omitempty"`
	TravelDate      *time.Time    `json:"travelDate,omitempty"`
}

// PlanResponse is the response for a route plan.
type PlanResponse struct {
	GeneratedAt    Timestamp     `json:"generatedAt"`
	Route          PlanRoute     `json:"route"`
	ChargingNeeded bool          `json:"chargingNeeded"`
	Recommended    *PlanStation  `json:"recommended,omitempty"`
	Alternatives   []PlanStation `json:"alternatives,omitempty"`
	Analysis       PlanAnalysis  `json:"analysis"`
	Warnings       []Warning     `json:"warnings,omitempty"`

	// RemainingQuota is the number of route plans left in the current
	// entitlement period after this request.
	RemainingQuota int `json:"remainingQuota"`
}

// PlanRoute describes the route the plan was computed against.
type PlanRoute struct {
	Origin           Point   `json:"origin"`
	Destination      Point   `json:"destination"`
	DistanceKm       float64 `json:"distanceKm"`
	DurationSeconds  float64 `json:"durationSeconds,omitempty"`
	GeometryPolyline string  `json:"geometryPolyline,omitempty"`
	Provider         string  `json:"provider,omitempty"`
}

// PlanStation is a ranked charging-station candidate.
type PlanStation struct {
	Station               Station `json:"station"`
	Score                 float64 `json:"score"`
	Label                 string  `json:"label"`
	DistanceFromStartKm   float64 `json:"distanceFromStartKm"`
	ArrivalBatteryPercent float64 `json:"arrivalBatteryPercent"`
}

// PlanAnalysis explains the quantities behind a plan.
type PlanAnalysis struct {
	WeatherFactor                  float64 `json:"weatherFactor"`
	TrailerFactor                  float64 `json:"trailerFactor"`
	AdjustedConsumptionKwhPer100Km float64 `json:"adjustedConsumptionKwhPer100Km"`
	SafeRangeKm                    float64 `json:"safeRangeKm"`
	TargetStopKm                   float64 `json:"targetStopKm,omitempty"`
	WeatherFallback                bool    `json:"weatherFallback,omitempty"`
	DistancesEstimated             bool    `json:"distancesEstimated,omitempty"`
}

// Warning represents a non-fatal issue in the response.
type Warning struct {
	Code     string  `json:"code"`
	Message  string  `json:"message"`
	Provider *string `json:"provider,omitempty"`
}
