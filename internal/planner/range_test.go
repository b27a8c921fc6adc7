package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voltroute/voltroute/internal/consumption"
	"github.com/voltroute/voltroute/internal/planner"
	"github.com/voltroute/voltroute/internal/vehicle"
)

func testVehicle() *vehicle.Spec {
	return &vehicle.Spec{
		ID:                     "tesla-model-3-lr",
		Brand:                  "Tesla",
		Model:                  "Model 3 Long Range",
		BatteryCapacityKwh:     75,
		ConsumptionKwhPer100Km: 14.3,
	}
}

func TestEstimateRange(t *testing.T) {
	spec := testVehicle()

	t.Run("neutral conditions full battery", func(t *testing.T) {
		factors := consumption.Factors{Weather: 1.0, Trailer: 1.0}
		est := planner.EstimateRange(spec, 100, factors, planner.DefaultSafetyMargin)

		assert.InDelta(t, 75.0, est.AvailableEnergyKwh, 0.001)
		assert.InDelta(t, 14.3, est.AdjustedConsumptionKwhPer100Km, 0.001)
		// 75 / 14.3 * 100 * 0.9
		assert.InDelta(t, 472.03, est.SafeRangeKm, 0.01)
	})

	t.Run("adjusted consumption with cold and trailer", func(t *testing.T) {
		// -15 C and a 1200 kg trailer.
		factors := consumption.Factors{Weather: 1.25, Trailer: 1.3}
		est := planner.EstimateRange(spec, 40, factors, planner.DefaultSafetyMargin)

		assert.InDelta(t, 30.0, est.AvailableEnergyKwh, 0.001)
		assert.InDelta(t, 23.2375, est.AdjustedConsumptionKwhPer100Km, 0.0001)
		assert.InDelta(t, 116.19, est.SafeRangeKm, 0.05)
	})

	t.Run("conservative margin shrinks range", func(t *testing.T) {
		factors := consumption.Factors{Weather: 1.0, Trailer: 1.0}
		standard := planner.EstimateRange(spec, 50, factors, planner.DefaultSafetyMargin)
		conservative := planner.EstimateRange(spec, 50, factors, planner.ConservativeSafetyMargin)

		assert.Less(t, conservative.SafeRangeKm, standard.SafeRangeKm)
		// Ratio of the two margins is exact.
		assert.InDelta(t, 0.85/0.90, conservative.SafeRangeKm/standard.SafeRangeKm, 1e-9)
	})

	t.Run("zero battery yields zero range", func(t *testing.T) {
		factors := consumption.Factors{Weather: 1.0, Trailer: 1.0}
		est := planner.EstimateRange(spec, 0, factors, planner.DefaultSafetyMargin)
		assert.Zero(t, est.SafeRangeKm)
	})
}

func TestRouteFits(t *testing.T) {
	assert.True(t, planner.RouteFits(100, 120))
	assert.True(t, planner.RouteFits(120, 120), "exact safe range still fits")
	assert.False(t, planner.RouteFits(120.1, 120))
}

func TestTargetStopKm(t *testing.T) {
	assert.InDelta(t, 90.0, planner.TargetStopKm(100), 0.001)
	assert.InDelta(t, 104.57, planner.TargetStopKm(116.19), 0.01)
}

func TestScoreLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{95, "excellent"},
		{80.1, "excellent"},
		{80, "good"},
		{61, "good"},
		{60, "acceptable"},
		{10, "acceptable"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, planner.ScoreLabel(tt.score), "score %.1f", tt.score)
	}
}
