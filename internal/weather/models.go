package weather

import (
	"errors"
	"time"

	"github.com/voltroute/voltroute/internal/consumption"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrNoDataForLocation   = errors.New("no weather data for location")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// Observation represents weather data at a specific point and time.
// All fields are canonical units: Celsius, km/h, mm/h. Provider clients
// normalize before constructing an Observation.
type Observation struct {
	// Location coordinates
	Lat float64
	Lon float64

	// TemperatureC in Celsius
	TemperatureC float64

	// WindSpeedKmh in km/h
	WindSpeedKmh float64

	// WindGustKmh in km/h (0 if not available)
	WindGustKmh float64

	// PrecipitationMm in mm/h
	PrecipitationMm float64

	// Humidity percentage (0-100)
	Humidity float64

	// Condition is the general weather condition
	Condition   Condition
	Description string

	// Timestamps
	ObservedAt time.Time
	FetchedAt  time.Time
}

// ToSample converts the observation into the consumption model's input.
func (o *Observation) ToSample() consumption.WeatherSample {
	return consumption.WeatherSample{
		TemperatureC:    o.TemperatureC,
		WindSpeedKmh:    o.WindSpeedKmh,
		PrecipitationMm: o.PrecipitationMm,
	}
}

// Condition represents the general weather condition.
type Condition string

const (
	ConditionClear        Condition = "CLEAR"
	ConditionClouds       Condition = "CLOUDS"
	ConditionRain         Condition = "RAIN"
	ConditionDrizzle      Condition = "DRIZZLE"
	ConditionThunderstorm Condition = "THUNDERSTORM"
	ConditionSnow         Condition = "SNOW"
	ConditionFog          Condition = "FOG"
	ConditionUnknown      Condition = "UNKNOWN"
)

// Forecast represents hourly forecast data for one location.
type Forecast struct {
	Lat float64
	Lon float64

	Hourly []HourlyForecast

	FetchedAt time.Time
}

// HourlyForecast represents weather for a specific hour, canonical units.
type HourlyForecast struct {
	Time            time.Time
	TemperatureC    float64
	WindSpeedKmh    float64
	PrecipitationMm float64
	Condition       Condition
}

// ToSample converts the hourly forecast into the consumption model's input.
func (h *HourlyForecast) ToSample() consumption.WeatherSample {
	return consumption.WeatherSample{
		TemperatureC:    h.TemperatureC,
		WindSpeedKmh:    h.WindSpeedKmh,
		PrecipitationMm: h.PrecipitationMm,
	}
}

// At returns the hourly forecast closest to t, or nil when the forecast
// horizon does not cover it.
func (f *Forecast) At(t time.Time) *HourlyForecast {
	var best *HourlyForecast
	bestDiff := time.Duration(1<<63 - 1)
	for i := range f.Hourly {
		diff := f.Hourly[i].Time.Sub(t)
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			bestDiff = diff
			best = &f.Hourly[i]
		}
	}
	if best == nil || bestDiff > time.Hour {
		return nil
	}
	return best
}
