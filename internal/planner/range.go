package planner

import (
	"github.com/voltroute/voltroute/internal/consumption"
	"github.com/voltroute/voltroute/internal/vehicle"
)

const (
	// DefaultSafetyMargin is the fraction of theoretical range held back
	// for the standard planning profile.
	DefaultSafetyMargin = 0.10

	// ConservativeSafetyMargin is the larger reserve used by cautious
	// planning profiles.
	ConservativeSafetyMargin = 0.15

	// targetStopFraction places the preferred charging stop short of the
	// safe-range limit so drivers never arrive on the last kilometer.
	targetStopFraction = 0.90
)

// RangeEstimate is the outcome of a range computation.
type RangeEstimate struct {
	// AvailableEnergyKwh is usable battery energy at the current charge.
	AvailableEnergyKwh float64

	// AdjustedConsumptionKwhPer100Km is rated consumption scaled by the
	// weather and trailer factors.
	AdjustedConsumptionKwhPer100Km float64

	// SafeRangeKm is achievable distance after the safety margin.
	SafeRangeKm float64

	// Margin is the safety margin that was applied.
	Margin float64
}

// EstimateRange computes the safe achievable range for a vehicle at the
// given state of charge under the given consumption factors.
func EstimateRange(spec *vehicle.Spec, batteryPercent float64, factors consumption.Factors, margin float64) RangeEstimate {
	available := spec.BatteryCapacityKwh * batteryPercent / 100

	adjusted := spec.ConsumptionKwhPer100Km * factors.Weather * factors.Trailer

	est := RangeEstimate{
		AvailableEnergyKwh:             available,
		AdjustedConsumptionKwhPer100Km: adjusted,
		Margin:                         margin,
	}
	if adjusted > 0 {
		est.SafeRangeKm = available / adjusted * 100 * (1 - margin)
	}
	return est
}

// TargetStopKm returns the preferred stop distance for a safe range.
func TargetStopKm(safeRangeKm float64) float64 {
	return safeRangeKm * targetStopFraction
}

// RouteFits reports whether the whole route is achievable without charging.
func RouteFits(routeKm, safeRangeKm float64) bool {
	return routeKm <= safeRangeKm
}
