package planner

import (
	"fmt"
	"sort"

	"github.com/voltroute/voltroute/internal/station"
)

// ScoringConfig holds the weights and thresholds of the station ranking
// model. Defaults reproduce the tuned production behavior.
type ScoringConfig struct {
	// Component weights. They sum to 100 for a station that is fully
	// available, ultra-fast, free, and exactly at the target stop.
	AvailabilityWeight float64
	SpeedWeight        float64
	PriceWeight        float64
	ProximityWeight    float64

	// UltraFastKw and HighPowerKw are the charger power tiers that earn
	// the full and the reduced speed score.
	UltraFastKw float64
	HighPowerKw float64

	// Speed scores per tier. Non-fast chargers score zero.
	UltraTierScore float64
	HighTierScore  float64
	FastTierScore  float64

	// PriceCeilingPerKwh is the price at which the price score reaches zero.
	PriceCeilingPerKwh float64

	// ProximityDecayKm controls how fast the proximity score falls off as
	// a station moves away from the target stop distance.
	ProximityDecayKm float64

	// ArrivalBatteryMinPercent and ArrivalBatteryMaxPercent bound the
	// predicted state of charge on arrival for a candidate to qualify.
	ArrivalBatteryMinPercent float64
	ArrivalBatteryMaxPercent float64

	// CriticalBatteryPercent is the state of charge at or below which
	// reachable stations earn an urgency bonus.
	CriticalBatteryPercent float64

	// CriticalBatteryBonusMax is the urgency bonus at zero charge. The
	// bonus scales linearly down to zero at CriticalBatteryPercent.
	CriticalBatteryBonusMax float64

	// OperatorBonus is added for stations run by a preferred network.
	OperatorBonus float64

	// PreferredOperators earn OperatorBonus.
	PreferredOperators map[string]bool
}

// DefaultScoringConfig returns the production scoring configuration.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		AvailabilityWeight: 40,
		SpeedWeight:        25,
		PriceWeight:        15,
		ProximityWeight:    20,

		UltraFastKw:    250,
		HighPowerKw:    150,
		UltraTierScore: 25,
		HighTierScore:  20,
		FastTierScore:  10,

		PriceCeilingPerKwh: 0.90,
		ProximityDecayKm:   50,

		ArrivalBatteryMinPercent: 8,
		ArrivalBatteryMaxPercent: 15,

		CriticalBatteryPercent:  30,
		CriticalBatteryBonusMax: 30,

		OperatorBonus: 5,
		PreferredOperators: map[string]bool{
			"Ionity":         true,
			"Fastned":        true,
			"Tesla":          true,
			"Allego":         true,
			"Shell Recharge": true,
		},
	}
}

// Scorer ranks charging station candidates for a planned stop.
type Scorer struct {
	cfg ScoringConfig
}

// NewScorer creates a scorer with the given configuration.
func NewScorer(cfg ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// RankInput carries the per-request quantities the scorer needs.
type RankInput struct {
	// BatteryPercent is the state of charge at departure.
	BatteryPercent float64

	// BatteryCapacityKwh is the vehicle's usable capacity.
	BatteryCapacityKwh float64

	// AdjustedConsumptionKwhPer100Km drives the arrival-charge prediction.
	AdjustedConsumptionKwhPer100Km float64

	// SafeRangeKm bounds which stations count as reachable for the
	// critical-battery bonus.
	SafeRangeKm float64

	// TargetStopKm anchors the proximity score.
	TargetStopKm float64
}

// Rank filters and scores the candidates. Stations whose predicted arrival
// charge falls outside the configured band are excluded; the returned map
// records the reason per excluded station ID. The ranked slice is ordered
// best first with deterministic tie-breaking.
func (s *Scorer) Rank(candidates []*station.Station, distances map[string]float64, in RankInput) ([]RankedStation, map[string]string) {
	ranked := make([]RankedStation, 0, len(candidates))
	exclusions := make(map[string]string)

	for _, st := range candidates {
		dist, ok := distances[st.ID]
		if !ok {
			exclusions[st.ID] = "no route distance available"
			continue
		}

		arrival := s.arrivalBatteryPercent(dist, in)
		switch {
		case arrival < s.cfg.ArrivalBatteryMinPercent:
			exclusions[st.ID] = fmt.Sprintf("predicted arrival charge %.1f%% below %.0f%% floor",
				arrival, s.cfg.ArrivalBatteryMinPercent)
			continue
		case arrival > s.cfg.ArrivalBatteryMaxPercent:
			exclusions[st.ID] = fmt.Sprintf("predicted arrival charge %.1f%% above %.0f%% ceiling",
				arrival, s.cfg.ArrivalBatteryMaxPercent)
			continue
		}

		score := s.Score(st, dist, in)
		ranked = append(ranked, RankedStation{
			Station:               st,
			Score:                 score,
			Label:                 ScoreLabel(score),
			DistanceFromStartKm:   dist,
			ArrivalBatteryPercent: arrival,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		ai := ranked[i].Station.AvailabilityRatio()
		aj := ranked[j].Station.AvailabilityRatio()
		if ai != aj {
			return ai > aj
		}
		if ranked[i].Station.PricePerKwh != ranked[j].Station.PricePerKwh {
			return ranked[i].Station.PricePerKwh < ranked[j].Station.PricePerKwh
		}
		return ranked[i].Station.ID < ranked[j].Station.ID
	})

	return ranked, exclusions
}

// Score computes the composite suitability score for one station. The
// result is clamped to [0, 100].
func (s *Scorer) Score(st *station.Station, distanceKm float64, in RankInput) float64 {
	score := st.AvailabilityRatio() * s.cfg.AvailabilityWeight
	score += s.speedScore(st)
	score += s.priceScore(st)
	score += s.proximityScore(distanceKm, in.TargetStopKm)

	if in.BatteryPercent <= s.cfg.CriticalBatteryPercent && distanceKm <= in.SafeRangeKm {
		urgency := (s.cfg.CriticalBatteryPercent - in.BatteryPercent) / s.cfg.CriticalBatteryPercent
		score += s.cfg.CriticalBatteryBonusMax * urgency
	}

	if s.cfg.PreferredOperators[st.Operator] {
		score += s.cfg.OperatorBonus
	}

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func (s *Scorer) speedScore(st *station.Station) float64 {
	switch {
	case st.PowerKW >= s.cfg.UltraFastKw:
		return s.cfg.UltraTierScore
	case st.PowerKW >= s.cfg.HighPowerKw:
		return s.cfg.HighTierScore
	case st.IsFastCharger:
		return s.cfg.FastTierScore
	default:
		return 0
	}
}

// priceScore falls linearly from full weight at zero cost to zero at the
// ceiling. Stations without a published price get half weight rather than
// being rewarded as free.
func (s *Scorer) priceScore(st *station.Station) float64 {
	if st.PricePerKwh <= 0 {
		return s.cfg.PriceWeight / 2
	}
	frac := 1 - st.PricePerKwh/s.cfg.PriceCeilingPerKwh
	if frac < 0 {
		frac = 0
	}
	return frac * s.cfg.PriceWeight
}

func (s *Scorer) proximityScore(distanceKm, targetKm float64) float64 {
	offset := distanceKm - targetKm
	if offset < 0 {
		offset = -offset
	}
	frac := 1 - offset/s.cfg.ProximityDecayKm
	if frac < 0 {
		frac = 0
	}
	return frac * s.cfg.ProximityWeight
}

// arrivalBatteryPercent predicts the state of charge after driving the
// given distance at the adjusted consumption rate.
func (s *Scorer) arrivalBatteryPercent(distanceKm float64, in RankInput) float64 {
	if in.BatteryCapacityKwh <= 0 {
		return 0
	}
	usedKwh := distanceKm * in.AdjustedConsumptionKwhPer100Km / 100
	return in.BatteryPercent - usedKwh/in.BatteryCapacityKwh*100
}
