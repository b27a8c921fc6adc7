// Package vehicle provides the vehicle specification catalog.
package vehicle

import (
	"errors"
	"time"
)

// Catalog errors.
var (
	ErrVehicleNotFound = errors.New("vehicle not found")
)

// Spec describes a vehicle model's battery and consumption characteristics.
// Specs are immutable reference data: loaded at catalog time and never
// mutated by the planning core.
type Spec struct {
	ID    string
	Brand string
	Model string

	// BatteryCapacityKwh is the usable battery capacity in kWh.
	BatteryCapacityKwh float64

	// RatedRangeKm is the manufacturer rated range in km (WLTP).
	RatedRangeKm float64

	// ConsumptionKwhPer100Km is the rated consumption in kWh per 100 km.
	ConsumptionKwhPer100Km float64

	UpdatedAt time.Time
}

// DisplayName returns the brand and model as a single label.
func (s *Spec) DisplayName() string {
	return s.Brand + " " + s.Model
}
