package vehicle

import "time"

// DefaultCatalog returns the built-in vehicle catalog used to seed new
// deployments. Figures are usable capacity and WLTP rated values.
func DefaultCatalog() []Spec {
	now := time.Now()
	return []Spec{
		{
			ID:                     "tesla-model-3-lr",
			Brand:                  "Tesla",
			Model:                  "Model 3 Long Range",
			BatteryCapacityKwh:     75,
			RatedRangeKm:           629,
			ConsumptionKwhPer100Km: 14.3,
			UpdatedAt:              now,
		},
		{
			ID:                     "tesla-model-y",
			Brand:                  "Tesla",
			Model:                  "Model Y",
			BatteryCapacityKwh:     60,
			RatedRangeKm:           455,
			ConsumptionKwhPer100Km: 15.7,
			UpdatedAt:              now,
		},
		{
			ID:                     "vw-id4-pro",
			Brand:                  "Volkswagen",
			Model:                  "ID.4 Pro",
			BatteryCapacityKwh:     77,
			RatedRangeKm:           531,
			ConsumptionKwhPer100Km: 16.3,
			UpdatedAt:              now,
		},
		{
			ID:                     "hyundai-ioniq5",
			Brand:                  "Hyundai",
			Model:                  "IONIQ 5",
			BatteryCapacityKwh:     72.6,
			RatedRangeKm:           481,
			ConsumptionKwhPer100Km: 16.8,
			UpdatedAt:              now,
		},
		{
			ID:                     "kia-ev6",
			Brand:                  "Kia",
			Model:                  "EV6",
			BatteryCapacityKwh:     74,
			RatedRangeKm:           528,
			ConsumptionKwhPer100Km: 16.5,
			UpdatedAt:              now,
		},
		{
			ID:                     "skoda-enyaq-80",
			Brand:                  "Skoda",
			Model:                  "Enyaq iV 80",
			BatteryCapacityKwh:     77,
			RatedRangeKm:           534,
			ConsumptionKwhPer100Km: 16.1,
			UpdatedAt:              now,
		},
		{
			ID:                     "renault-megane-etech",
			Brand:                  "Renault",
			Model:                  "Megane E-Tech EV60",
			BatteryCapacityKwh:     60,
			RatedRangeKm:           450,
			ConsumptionKwhPer100Km: 15.8,
			UpdatedAt:              now,
		},
		{
			ID:                     "polestar-2-lr",
			Brand:                  "Polestar",
			Model:                  "2 Long Range",
			BatteryCapacityKwh:     78,
			RatedRangeKm:           551,
			ConsumptionKwhPer100Km: 16.7,
			UpdatedAt:              now,
		},
	}
}
