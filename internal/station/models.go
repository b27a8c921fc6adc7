// Package station provides the charging-station directory.
package station

import (
	"errors"
	"math"
	"time"
)

// Directory errors.
var (
	ErrProviderUnavailable = errors.New("station provider unavailable")
	ErrStationNotFound     = errors.New("station not found")
	ErrNoStationsNearby    = errors.New("no stations near the requested location")
)

// FastChargerThresholdKw is the power rating above which a station counts
// as a rapid charger for scoring and display purposes.
const FastChargerThresholdKw = 50.0

// Station is the canonical charging-station record. Provider clients
// normalize their own field shapes (including the historical
// fastCharger/fast_charger duplication) into this model at ingestion; no
// consumer ever branches on provider-specific shapes.
type Station struct {
	ID       string
	Name     string
	Operator string

	Lat float64
	Lon float64

	// Connector availability at the time the snapshot was taken.
	AvailableConnectors int
	TotalConnectors     int

	// PowerKW is the maximum connector power. IsFastCharger is derived
	// from it during ingestion and kept denormalized for consumers.
	PowerKW       float64
	IsFastCharger bool

	// PricePerKwh in EUR. Zero means unknown.
	PricePerKwh float64

	UpdatedAt time.Time
}

// AvailabilityRatio returns available/total connectors in [0,1].
// Returns 0 when the total is unknown.
func (s *Station) AvailabilityRatio() float64 {
	if s.TotalConnectors <= 0 {
		return 0
	}
	ratio := float64(s.AvailableConnectors) / float64(s.TotalConnectors)
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

// Snapshot is a point-in-time view of the station directory.
type Snapshot struct {
	Stations  map[string]*Station
	FetchedAt time.Time
	Source    string
}

// NewSnapshot creates an empty snapshot for the given source.
func NewSnapshot(source string) *Snapshot {
	return &Snapshot{
		Stations:  make(map[string]*Station),
		FetchedAt: time.Now(),
		Source:    source,
	}
}

// StationList returns the snapshot's stations as a slice.
func (s *Snapshot) StationList() []*Station {
	list := make([]*Station, 0, len(s.Stations))
	for _, st := range s.Stations {
		list = append(list, st)
	}
	return list
}

// Normalize derives canonical fields that providers report inconsistently.
// Call after populating a Station from provider data.
func (s *Station) Normalize() {
	if s.PowerKW < 0 {
		s.PowerKW = 0
	}
	s.IsFastCharger = s.PowerKW >= FastChargerThresholdKw
	if s.AvailableConnectors > s.TotalConnectors {
		s.AvailableConnectors = s.TotalConnectors
	}
	if s.PricePerKwh < 0 || math.IsNaN(s.PricePerKwh) {
		s.PricePerKwh = 0
	}
}
