package models

import "time"

// TripLocation is an endpoint of a saved trip.
type TripLocation struct {
	Point Point   `json:"point"`
	Name  *string `json:"name,omitempty"`
}

// Trip represents a saved trip.
type Trip struct {
	ID              string       `json:"id"`
	Label           string       `json:"label"`
	Origin          TripLocation `json:"origin"`
	Destination     TripLocation `json:"destination"`
	VehicleID       string       `json:"vehicleId"`
	BatteryPercent  float64      `json:"batteryPercent"`
	TrailerWeightKg float64      `json:"trailerWeightKg,omitempty"`
	TravelDate      *time.Time   `json:"travelDate,omitempty"`
	Notes           *string      `json:"notes,omitempty"`
	CreatedAt       Timestamp    `json:"createdAt"`
	UpdatedAt       Timestamp    `json:"updatedAt"`
}

// TripCreateRequest is the request body for creating a saved trip.
type TripCreateRequest struct {
	Label           string       `json:"label" validate:"required,max=80"`
	Origin          TripLocation `json:"origin" validate:"required"`
	Destination     TripLocation `json:"destination" validate:"required"`
	VehicleID       string       `json:"vehicleId" validate:"required"`
	BatteryPercent  float64      `json:"batteryPercent" validate:"gte=0,lte=100"`
	TrailerWeightKg float64      `json:"trailerWeightKg,omitempty" validate:"gte=0"`
	TravelDate      *time.Time   `json:"travelDate,omitempty"`
	Notes           *string      `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// TripUpdateRequest is the request body for updating a saved trip.
// All fields are optional; only provided fields are updated.
type TripUpdateRequest struct {
	Label           *string       `json:"label,omitempty"`
	Origin          *TripLocation `json:"origin,omitempty"`
	Destination     *TripLocation `json:"destination,omitempty"`
	VehicleID       *string       `json:"vehicleId,omitempty"`
	BatteryPercent  *float64      `json:"batteryPercent,omitempty"`
	TrailerWeightKg *float64      `json:"trailerWeightKg,omitempty"`
	TravelDate      *time.Time    `json:"travelDate,omitempty"`
	Notes           *string       `json:"notes,omitempty"`
}

// PagedTrips is a paginated list of trips.
type PagedTrips struct {
	Items []Trip            `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
