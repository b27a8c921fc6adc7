// Package worker provides background job processing for VoltRoute.
package worker

import (
	"time"
)

// RefreshTarget represents a driving corridor to keep warm.
type RefreshTarget struct {
	// Name is the human-readable name of the corridor.
	Name string

	// Points are the lat/lon waypoints along the corridor.
	// Typically motorway junctions and major charging hubs.
	Points []Point

	// Priority determines refresh order (lower = higher priority).
	Priority int
}

// Point represents a geographic coordinate.
type Point struct {
	Lat float64
	Lon float64
}

// RefreshConfig holds configuration for the provider refresh job.
type RefreshConfig struct {
	// Targets are the corridors to refresh.
	// If empty, uses DefaultRefreshTargets.
	Targets []RefreshTarget

	// Concurrency is the number of concurrent refresh operations.
	// Default: 3
	Concurrency int

	// Timeout is the timeout for each refresh operation.
	// Default: 30 seconds
	Timeout time.Duration

	// RefreshStations enables charging station snapshot refresh.
	// Default: true
	RefreshStations bool

	// RefreshWeather enables current weather cache warm-up.
	// Default: true
	RefreshWeather bool

	// RefreshForecast enables forecast cache warm-up.
	// Default: true
	RefreshForecast bool
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Targets:         DefaultRefreshTargets(),
		Concurrency:     3,
		Timeout:         30 * time.Second,
		RefreshStations: true,
		RefreshWeather:  true,
		RefreshForecast: true,
	}
}

// DefaultRefreshTargets returns the default refresh targets for the Netherlands
// and its busiest motorway corridors. Waypoints sit at junctions and charging
// hubs where route plans most often place a stop.
func DefaultRefreshTargets() []RefreshTarget {
	return []RefreshTarget{
		{
			Name:     "A2 Amsterdam-Maastricht",
			Priority: 1,
			Points: []Point{
				{Lat: 52.3105, Lon: 4.9467}, // Amsterdam Amstel
				{Lat: 52.0894, Lon: 5.1102}, // Utrecht
				{Lat: 51.6978, Lon: 5.3037}, // Den Bosch
				{Lat: 51.4416, Lon: 5.4697}, // Eindhoven
				{Lat: 50.8514, Lon: 5.6910}, // Maastricht
			},
		},
		{
			Name:     "A4 Amsterdam-Antwerpen",
			Priority: 1,
			Points: []Point{
				{Lat: 52.3105, Lon: 4.7683}, // Schiphol
				{Lat: 52.0705, Lon: 4.3007}, // Den Haag
				{Lat: 51.9244, Lon: 4.4777}, // Rotterdam
				{Lat: 51.4940, Lon: 4.2871}, // Bergen op Zoom
			},
		},
		{
			Name:     "A12 Den Haag-Arnhem",
			Priority: 1,
			Points: []Point{
				{Lat: 52.0705, Lon: 4.3007}, // Den Haag
				{Lat: 52.0575, Lon: 4.4938}, // Zoetermeer
				{Lat: 52.0894, Lon: 5.1102}, // Utrecht
				{Lat: 51.9851, Lon: 5.8987}, // Arnhem
			},
		},
		{
			Name:     "A1 Amsterdam-Hengelo",
			Priority: 2,
			Points: []Point{
				{Lat: 52.3114, Lon: 5.0383}, // Muiden
				{Lat: 52.1530, Lon: 5.3711}, // Amersfoort
				{Lat: 52.2112, Lon: 6.0083}, // Apeldoorn
				{Lat: 52.2659, Lon: 6.7930}, // Hengelo
			},
		},
		{
			Name:     "A16 Rotterdam-Breda",
			Priority: 2,
			Points: []Point{
				{Lat: 51.9244, Lon: 4.4777}, // Rotterdam
				{Lat: 51.8133, Lon: 4.6901}, // Dordrecht
				{Lat: 51.5719, Lon: 4.7683}, // Breda
			},
		},
		{
			Name:     "A7 Amsterdam-Groningen",
			Priority: 3,
			Points: []Point{
				{Lat: 52.5089, Lon: 4.9592}, // Purmerend
				{Lat: 52.9789, Lon: 5.7350}, // Joure
				{Lat: 53.2194, Lon: 6.5665}, // Groningen
			},
		},
		{
			Name:     "A58 Eindhoven-Vlissingen",
			Priority: 3,
			Points: []Point{
				{Lat: 51.4416, Lon: 5.4697}, // Eindhoven
				{Lat: 51.5555, Lon: 5.0913}, // Tilburg
				{Lat: 51.4536, Lon: 3.5709}, // Vlissingen
			},
		},
	}
}

// AllPoints returns all points from all targets, ordered by priority.
func (c RefreshConfig) AllPoints() []Point {
	var points []Point
	for _, target := range c.Targets {
		points = append(points, target.Points...)
	}
	return points
}

// TotalPoints returns the total number of points to refresh.
func (c RefreshConfig) TotalPoints() int {
	total := 0
	for _, target := range c.Targets {
		total += len(target.Points)
	}
	return total
}
