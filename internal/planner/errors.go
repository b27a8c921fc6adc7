package planner

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUpstreamDataUnavailable indicates that a required upstream data source
// (routing distances, station directory) could not provide the data the
// planner needs and no fallback was permitted.
var ErrUpstreamDataUnavailable = errors.New("upstream data unavailable")

// FieldError describes a single invalid request field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// ValidationError aggregates every invalid field found in a request.
// All fields are checked before the error is returned so clients see the
// complete set of violations in one round trip.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error()
	}
	return "invalid plan request: " + strings.Join(parts, "; ")
}

// NoSuitableStationError indicates that charging is needed but no candidate
// satisfies the arrival-battery constraints. Diagnostics explain why each
// candidate was rejected.
type NoSuitableStationError struct {
	// SafeRangeKm and TargetStopKm reproduce the analysis that led here.
	SafeRangeKm  float64 `json:"safe_range_km"`
	TargetStopKm float64 `json:"target_stop_km"`

	// Considered is the number of candidates evaluated.
	Considered int `json:"considered"`

	// Exclusions maps station ID to the reason it was rejected.
	Exclusions map[string]string `json:"exclusions,omitempty"`
}

func (e *NoSuitableStationError) Error() string {
	return fmt.Sprintf("no suitable charging station among %d candidates (safe range %.1f km)",
		e.Considered, e.SafeRangeKm)
}
