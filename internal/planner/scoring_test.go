package planner_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltroute/voltroute/internal/planner"
	"github.com/voltroute/voltroute/internal/station"
)

// rankScenario uses round numbers: 40% battery on a 75 kWh pack at
// 18.75 kWh/100km burns exactly 0.25% of charge per km, so the 8-15%
// arrival band maps to distances between 100 and 128 km.
func rankScenario() planner.RankInput {
	return planner.RankInput{
		BatteryPercent:                 40,
		BatteryCapacityKwh:             75,
		AdjustedConsumptionKwhPer100Km: 18.75,
		SafeRangeKm:                    130,
		TargetStopKm:                   117,
	}
}

func fastStation(id string, distanceIrrelevant float64) *station.Station {
	_ = distanceIrrelevant
	return &station.Station{
		ID:              id,
		TotalConnectors: 4,
		PowerKW:         300,
		IsFastCharger:   true,
		PricePerKwh:     0.90,
	}
}

func TestScorerSpeedTiers(t *testing.T) {
	scorer := planner.NewScorer(planner.DefaultScoringConfig())
	in := rankScenario()

	// Zero availability and ceiling price isolate speed plus proximity.
	base := func(powerKw float64, fast bool) float64 {
		st := &station.Station{
			ID:            "st",
			PowerKW:       powerKw,
			IsFastCharger: fast,
			PricePerKwh:   0.90,
		}
		return scorer.Score(st, in.TargetStopKm, in)
	}

	assert.InDelta(t, 45, base(300, true), 0.001, "ultra-fast tier")
	assert.InDelta(t, 40, base(150, true), 0.001, "high-power tier")
	assert.InDelta(t, 30, base(100, true), 0.001, "fast tier")
	assert.InDelta(t, 20, base(22, false), 0.001, "slow charger earns no speed score")
}

func TestScorerPrice(t *testing.T) {
	scorer := planner.NewScorer(planner.DefaultScoringConfig())
	in := rankScenario()

	score := func(price float64) float64 {
		st := &station.Station{ID: "st", PricePerKwh: price}
		return scorer.Score(st, in.TargetStopKm, in)
	}

	// Proximity contributes a constant 20 at the target distance.
	assert.InDelta(t, 20+7.5, score(0.45), 0.001, "mid price earns half weight")
	assert.InDelta(t, 20+15, score(0.01), 0.2, "near-free approaches full weight")
	assert.InDelta(t, 20, score(0.90), 0.001, "ceiling price earns nothing")
	assert.InDelta(t, 20, score(1.50), 0.001, "above ceiling clamps at zero")
	assert.InDelta(t, 20+7.5, score(0), 0.001, "unknown price gets half weight")
}

func TestScorerProximityDecay(t *testing.T) {
	scorer := planner.NewScorer(planner.DefaultScoringConfig())
	in := rankScenario()
	st := &station.Station{ID: "st", PricePerKwh: 0.90}

	assert.InDelta(t, 20, scorer.Score(st, in.TargetStopKm, in), 0.001)
	assert.InDelta(t, 10, scorer.Score(st, in.TargetStopKm-25, in), 0.001)
	assert.InDelta(t, 10, scorer.Score(st, in.TargetStopKm+25, in), 0.001)
	assert.InDelta(t, 0, scorer.Score(st, in.TargetStopKm+50, in), 0.001)
	assert.InDelta(t, 0, scorer.Score(st, in.TargetStopKm+80, in), 0.001, "decay never goes negative")
}

func TestScorerCriticalBatteryBonus(t *testing.T) {
	scorer := planner.NewScorer(planner.DefaultScoringConfig())
	st := &station.Station{ID: "st", PricePerKwh: 0.90}

	healthy := rankScenario()
	healthy.BatteryPercent = 40
	low := rankScenario()
	low.BatteryPercent = 20

	reachable := low.SafeRangeKm - 20
	bonus := scorer.Score(st, reachable, low) - scorer.Score(st, reachable, healthy)
	// 30 * (30-20)/30 with the same proximity contribution on both sides.
	assert.InDelta(t, 10, bonus, 0.001)

	// A station beyond safe range earns no urgency bonus.
	beyond := low.SafeRangeKm + 10
	assert.InDelta(t,
		scorer.Score(st, beyond, healthy),
		scorer.Score(st, beyond, low), 0.001)
}

func TestScorerOperatorBonusAndClamp(t *testing.T) {
	scorer := planner.NewScorer(planner.DefaultScoringConfig())
	in := rankScenario()

	plain := fastStation("st_plain", 0)
	preferred := fastStation("st_pref", 0)
	preferred.Operator = "Ionity"
	assert.InDelta(t, 5,
		scorer.Score(preferred, in.TargetStopKm, in)-scorer.Score(plain, in.TargetStopKm, in), 0.001)

	// Stack every component plus the urgency bonus to exceed 100 raw.
	critical := in
	critical.BatteryPercent = 5
	maxed := &station.Station{
		ID:                  "st_max",
		Operator:            "Fastned",
		AvailableConnectors: 4,
		TotalConnectors:     4,
		PowerKW:             350,
		IsFastCharger:       true,
		PricePerKwh:         0.05,
	}
	assert.InDelta(t, 100, scorer.Score(maxed, critical.TargetStopKm, critical), 0.001)
}

func TestScorerRankFiltersArrivalBand(t *testing.T) {
	scorer := planner.NewScorer(planner.DefaultScoringConfig())
	in := rankScenario()

	stA := &station.Station{
		ID:                  "st_a",
		Operator:            "Fastned",
		AvailableConnectors: 8,
		TotalConnectors:     10,
		PowerKW:             300,
		IsFastCharger:       true,
		PricePerKwh:         0.45,
	}
	stB := &station.Station{
		ID:                  "st_b",
		AvailableConnectors: 5,
		TotalConnectors:     10,
		PowerKW:             150,
		IsFastCharger:       true,
		PricePerKwh:         0.60,
	}
	tooNear := fastStation("st_near", 0)
	tooFar := fastStation("st_far", 0)

	candidates := []*station.Station{stA, stB, tooNear, tooFar}
	distances := map[string]float64{
		"st_a":    117, // arrival 10.75%
		"st_b":    110, // arrival 12.5%
		"st_near": 80,  // arrival 20%, too much charge left
		"st_far":  140, // arrival 5%, below the floor
	}

	ranked, exclusions := scorer.Rank(candidates, distances, in)

	require.Len(t, ranked, 2)
	assert.Equal(t, "st_a", ranked[0].Station.ID)
	assert.Equal(t, "st_b", ranked[1].Station.ID)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
	assert.Equal(t, "excellent", ranked[0].Label)
	assert.InDelta(t, 10.75, ranked[0].ArrivalBatteryPercent, 0.001)
	assert.InDelta(t, 117, ranked[0].DistanceFromStartKm, 0.001)

	require.Len(t, exclusions, 2)
	assert.Contains(t, exclusions["st_near"], "above")
	assert.Contains(t, exclusions["st_far"], "below")
}

func TestScorerRankMissingDistance(t *testing.T) {
	scorer := planner.NewScorer(planner.DefaultScoringConfig())
	in := rankScenario()

	ranked, exclusions := scorer.Rank(
		[]*station.Station{fastStation("st_lost", 0)},
		map[string]float64{}, in)

	assert.Empty(t, ranked)
	assert.Contains(t, exclusions["st_lost"], "no route distance")
}

func TestScorerTieBreaks(t *testing.T) {
	scorer := planner.NewScorer(planner.DefaultScoringConfig())
	in := rankScenario()

	t.Run("availability breaks equal scores", func(t *testing.T) {
		// Price and availability are traded so both score identically:
		// 40+25+0 versus 30+25+10, plus equal proximity.
		full := &station.Station{
			ID: "st_full", AvailableConnectors: 4, TotalConnectors: 4,
			PowerKW: 300, IsFastCharger: true, PricePerKwh: 0.90,
		}
		cheap := &station.Station{
			ID: "st_cheap", AvailableConnectors: 3, TotalConnectors: 4,
			PowerKW: 300, IsFastCharger: true, PricePerKwh: 0.30,
		}
		ranked, _ := scorer.Rank(
			[]*station.Station{cheap, full},
			map[string]float64{"st_full": 117, "st_cheap": 117}, in)

		require.Len(t, ranked, 2)
		assert.InDelta(t, ranked[0].Score, ranked[1].Score, 0.001)
		assert.Equal(t, "st_full", ranked[0].Station.ID)
	})

	t.Run("station id is the final tie-break", func(t *testing.T) {
		x := fastStation("st_x", 0)
		y := fastStation("st_y", 0)
		ranked, _ := scorer.Rank(
			[]*station.Station{y, x},
			map[string]float64{"st_x": 117, "st_y": 117}, in)

		require.Len(t, ranked, 2)
		assert.Equal(t, "st_x", ranked[0].Station.ID)
		assert.Equal(t, "st_y", ranked[1].Station.ID)
	})
}
