package models

// Vehicle represents a vehicle catalog entry.
type Vehicle struct {
	ID                     string  `json:"id"`
	Brand                  string  `json:"brand"`
	Model                  string  `json:"model"`
	DisplayName            string  `json:"displayName"`
	BatteryCapacityKwh     float64 `json:"batteryCapacityKwh"`
	RatedRangeKm           float64 `json:"ratedRangeKm"`
	ConsumptionKwhPer100Km float64 `json:"consumptionKwhPer100Km"`
}

// VehicleList is the response for the vehicle catalog listing.
type VehicleList struct {
	Items []Vehicle `json:"items"`
}
