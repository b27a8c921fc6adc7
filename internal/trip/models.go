// Package trip provides saved trip management services.
package trip

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrTripNotFound = errors.New("trip not found")
)

// Trip represents a saved trip.
type Trip struct {
	ID              string
	UserID          string
	Label           string
	Origin          Location
	Destination     Location
	VehicleID       string
	BatteryPercent  float64
	TrailerWeightKg float64
	TravelDate      *time.Time
	Notes           *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Location represents a geographic location with an optional display name.
type Location struct {
	Point Point
	Name  *string
}

// Point represents a geographic point.
type Point struct {
	Lat float64
	Lon float64
}
