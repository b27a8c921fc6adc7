package models

// Station represents a charging station in API responses.
type Station struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Operator            string  `json:"operator,omitempty"`
	Point               Point   `json:"point"`
	AvailableConnectors int     `json:"availableConnectors"`
	TotalConnectors     int     `json:"totalConnectors"`
	PowerKW             float64 `json:"powerKw"`
	IsFastCharger       bool    `json:"isFastCharger"`
	PricePerKwh         float64 `json:"pricePerKwh,omitempty"`
}

// StationList is the response for station metadata queries.
type StationList struct {
	Items []Station `json:"items"`
	AsOf  Timestamp `json:"asOf"`
}
