// Package consumption provides the consumption adjustment model: pure,
// deterministic functions that convert weather conditions and trailer load
// into multiplicative energy-consumption factors.
//
// Every coefficient used anywhere in the product (feasibility calculator,
// ranking engine, API analysis payloads) is defined here and only here.
package consumption

// WeatherSample is the normalized weather input for the adjustment model.
// Wind speed is km/h and precipitation is mm/h; provider clients are
// responsible for normalizing units before data reaches this package.
type WeatherSample struct {
	TemperatureC    float64
	WindSpeedKmh    float64
	PrecipitationMm float64
}

// Neutral returns a weather sample that yields a factor of exactly 1.0.
// Used as the fallback when weather data is unavailable.
func Neutral() WeatherSample {
	return WeatherSample{TemperatureC: 15}
}

// Temperature penalty breakpoints (degrees Celsius) and penalties.
const (
	SevereColdBelowC = -10.0
	ColdBelowC       = 0.0
	HeatAboveC       = 30.0

	severeColdPenalty = 0.25
	coldPenalty       = 0.15
	heatPenalty       = 0.10
)

// Wind penalty thresholds (km/h) and penalties.
const (
	StrongWindKmh   = 50.0
	ModerateWindKmh = 25.0

	strongWindPenalty   = 0.12
	moderateWindPenalty = 0.06
)

// Precipitation thresholds (mm/h) and penalties.
const (
	HeavyPrecipitationMm = 5.0

	precipitationPenalty      = 0.05
	heavyPrecipitationPenalty = 0.10
)

// Factor bounds. Adverse conditions never reduce consumption, and the
// combined weather penalty is capped to avoid runaway compounding.
const (
	MaxWeatherFactor = 1.40
	MaxTrailerFactor = 1.50
)

// Trailer weight breakpoints (kg) and penalties. The product rejects
// trailer weights above MaxTrailerWeightKg before this model is consulted.
const (
	MaxTrailerWeightKg = 3500.0

	lightTrailerKg    = 500.0
	moderateTrailerKg = 1000.0
	heavyTrailerKg    = 1500.0

	lightTrailerPenalty    = 0.10
	moderateTrailerPenalty = 0.20
	heavyTrailerPenalty    = 0.30
	severeTrailerPenalty   = 0.50
)

// Factors bundles the two consumption multipliers for one trip.
type Factors struct {
	Weather float64
	Trailer float64
}

// ComputeFactors evaluates both multipliers for the given conditions.
func ComputeFactors(sample WeatherSample, trailerWeightKg float64) Factors {
	return Factors{
		Weather: WeatherImpact(sample),
		Trailer: TrailerImpact(trailerWeightKg),
	}
}

// WeatherImpact returns the consumption multiplier for the given weather.
// The result is always in [1.0, MaxWeatherFactor].
func WeatherImpact(sample WeatherSample) float64 {
	penalty := 0.0

	switch {
	case sample.TemperatureC < SevereColdBelowC:
		penalty += severeColdPenalty
	case sample.TemperatureC < ColdBelowC:
		penalty += coldPenalty
	case sample.TemperatureC > HeatAboveC:
		penalty += heatPenalty
	}

	switch {
	case sample.WindSpeedKmh >= StrongWindKmh:
		penalty += strongWindPenalty
	case sample.WindSpeedKmh >= ModerateWindKmh:
		penalty += moderateWindPenalty
	}

	switch {
	case sample.PrecipitationMm >= HeavyPrecipitationMm:
		penalty += heavyPrecipitationPenalty
	case sample.PrecipitationMm > 0:
		penalty += precipitationPenalty
	}

	factor := 1.0 + penalty
	if factor > MaxWeatherFactor {
		factor = MaxWeatherFactor
	}
	return factor
}

// TrailerImpact returns the consumption multiplier for towing the given
// trailer weight. Zero weight yields exactly 1.0; the result is monotonically
// non-decreasing in weight and capped at MaxTrailerFactor.
func TrailerImpact(weightKg float64) float64 {
	switch {
	case weightKg <= 0:
		return 1.0
	case weightKg <= lightTrailerKg:
		return 1.0 + lightTrailerPenalty
	case weightKg <= moderateTrailerKg:
		return 1.0 + moderateTrailerPenalty
	case weightKg <= heavyTrailerKg:
		return 1.0 + heavyTrailerPenalty
	default:
		return 1.0 + severeTrailerPenalty
	}
}
