// Package openmeteo provides a client for the Open-Meteo forecast API.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/voltroute/voltroute/internal/provider/resilience"
	"github.com/voltroute/voltroute/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "openmeteo"

	// DefaultBaseURL is the Open-Meteo API base URL.
	DefaultBaseURL = "https://api.open-meteo.com/v1"

	// forecastDays is the hourly forecast horizon requested per call.
	forecastDays = 7
)

// ClientConfig holds configuration for the Open-Meteo client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to the public API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Open-Meteo API client. The public API needs no key.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Open-Meteo client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetCurrentWeather fetches current weather for a location. Wind speed is
// requested in km/h so observations arrive in canonical units.
func (c *Client) GetCurrentWeather(ctx context.Context, lat, lon float64) (*weather.Observation, error) {
	url := fmt.Sprintf("%s/forecast?latitude=%.6f&longitude=%.6f&current=temperature_2m,relative_humidity_2m,wind_speed_10m,wind_gusts_10m,precipitation,weather_code&wind_speed_unit=kmh&timezone=UTC",
		c.baseURL, lat, lon)

	var omResp forecastResponse
	if err := c.get(ctx, url, &omResp); err != nil {
		return nil, err
	}
	if omResp.Current == nil {
		return nil, weather.ErrNoDataForLocation
	}

	return c.toObservation(&omResp), nil
}

// GetForecast fetches hourly forecast for a location.
func (c *Client) GetForecast(ctx context.Context, lat, lon float64) (*weather.Forecast, error) {
	url := fmt.Sprintf("%s/forecast?latitude=%.6f&longitude=%.6f&hourly=temperature_2m,wind_speed_10m,precipitation,weather_code&wind_speed_unit=kmh&forecast_days=%d&timezone=UTC",
		c.baseURL, lat, lon, forecastDays)

	var omResp forecastResponse
	if err := c.get(ctx, url, &omResp); err != nil {
		return nil, err
	}

	return c.toForecast(&omResp)
}

func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// toObservation converts an Open-Meteo current block to the domain model.
func (c *Client) toObservation(resp *forecastResponse) *weather.Observation {
	cur := resp.Current
	obs := &weather.Observation{
		Lat:             resp.Latitude,
		Lon:             resp.Longitude,
		TemperatureC:    cur.Temperature,
		Humidity:        cur.Humidity,
		WindSpeedKmh:    cur.WindSpeed,
		WindGustKmh:     cur.WindGusts,
		PrecipitationMm: cur.Precipitation,
		Condition:       mapWeatherCode(cur.WeatherCode),
		FetchedAt:       time.Now(),
	}

	if t, err := time.Parse("2006-01-02T15:04", cur.Time); err == nil {
		obs.ObservedAt = t.UTC()
	} else {
		obs.ObservedAt = obs.FetchedAt
	}
	return obs
}

// toForecast converts Open-Meteo parallel hourly arrays to the domain model.
func (c *Client) toForecast(resp *forecastResponse) (*weather.Forecast, error) {
	hourly := resp.Hourly
	if hourly == nil {
		return nil, weather.ErrNoDataForLocation
	}
	n := len(hourly.Time)
	if len(hourly.Temperature) != n || len(hourly.WindSpeed) != n || len(hourly.Precipitation) != n {
		return nil, fmt.Errorf("inconsistent hourly series lengths from %s", ProviderName)
	}

	forecast := &weather.Forecast{
		Lat:       resp.Latitude,
		Lon:       resp.Longitude,
		Hourly:    make([]weather.HourlyForecast, 0, n),
		FetchedAt: time.Now(),
	}

	for i := 0; i < n; i++ {
		t, err := time.Parse("2006-01-02T15:04", hourly.Time[i])
		if err != nil {
			continue
		}
		entry := weather.HourlyForecast{
			Time:            t.UTC(),
			TemperatureC:    hourly.Temperature[i],
			WindSpeedKmh:    hourly.WindSpeed[i],
			PrecipitationMm: hourly.Precipitation[i],
		}
		if i < len(hourly.WeatherCode) {
			entry.Condition = mapWeatherCode(hourly.WeatherCode[i])
		}
		forecast.Hourly = append(forecast.Hourly, entry)
	}

	return forecast, nil
}

// mapWeatherCode maps a WMO weather code to the domain condition.
func mapWeatherCode(code int) weather.Condition {
	switch {
	case code == 0:
		return weather.ConditionClear
	case code <= 3:
		return weather.ConditionClouds
	case code == 45 || code == 48:
		return weather.ConditionFog
	case code >= 51 && code <= 57:
		return weather.ConditionDrizzle
	case (code >= 61 && code <= 67) || (code >= 80 && code <= 82):
		return weather.ConditionRain
	case (code >= 71 && code <= 77) || code == 85 || code == 86:
		return weather.ConditionSnow
	case code >= 95:
		return weather.ConditionThunderstorm
	default:
		return weather.ConditionUnknown
	}
}

// Open-Meteo API response structures.

type forecastResponse struct {
	Latitude  float64       `json:"latitude"`
	Longitude float64       `json:"longitude"`
	Current   *currentBlock `json:"current"`
	Hourly    *hourlySeries `json:"hourly"`
}

type currentBlock struct {
	Time          string  `json:"time"`
	Temperature   float64 `json:"temperature_2m"`
	Humidity      float64 `json:"relative_humidity_2m"`
	WindSpeed     float64 `json:"wind_speed_10m"`
	WindGusts     float64 `json:"wind_gusts_10m"`
	Precipitation float64 `json:"precipitation"`
	WeatherCode   int     `json:"weather_code"`
}

type hourlySeries struct {
	Time          []string  `json:"time"`
	Temperature   []float64 `json:"temperature_2m"`
	WindSpeed     []float64 `json:"wind_speed_10m"`
	Precipitation []float64 `json:"precipitation"`
	WeatherCode   []int     `json:"weather_code"`
}
