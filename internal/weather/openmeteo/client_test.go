package openmeteo_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltroute/voltroute/internal/provider/resilience"
	"github.com/voltroute/voltroute/internal/weather"
	"github.com/voltroute/voltroute/internal/weather/openmeteo"
)

func testHTTPClient() *resilience.Client {
	return resilience.NewClient(resilience.ClientConfig{
		Name:            "test",
		MaxRetries:      1,
		InitialInterval: time.Millisecond,
	})
}

func TestClient_GetCurrentWeather(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "kmh", r.URL.Query().Get("wind_speed_unit"))
		assert.Equal(t, "UTC", r.URL.Query().Get("timezone"))
		assert.Contains(t, r.URL.Query().Get("current"), "wind_gusts_10m")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"latitude": 52.37,
			"longitude": 4.89,
			"current": {
				"time": "2025-01-15T14:00",
				"temperature_2m": -2.5,
				"relative_humidity_2m": 88,
				"wind_speed_10m": 34.2,
				"wind_gusts_10m": 51.8,
				"precipitation": 0.4,
				"weather_code": 71
			}
		}`))
	}))
	defer server.Close()

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: testHTTPClient(),
	})

	obs, err := client.GetCurrentWeather(context.Background(), 52.37, 4.89)
	require.NoError(t, err)

	assert.InDelta(t, 52.37, obs.Lat, 1e-9)
	assert.InDelta(t, 4.89, obs.Lon, 1e-9)
	assert.InDelta(t, -2.5, obs.TemperatureC, 0.001)
	assert.InDelta(t, 88.0, obs.Humidity, 0.001)
	assert.InDelta(t, 34.2, obs.WindSpeedKmh, 0.001, "wind already canonical km/h")
	assert.InDelta(t, 51.8, obs.WindGustKmh, 0.001)
	assert.InDelta(t, 0.4, obs.PrecipitationMm, 0.001)
	assert.Equal(t, weather.ConditionSnow, obs.Condition)
	assert.Equal(t, time.Date(2025, 1, 15, 14, 0, 0, 0, time.UTC), obs.ObservedAt)
	assert.False(t, obs.FetchedAt.IsZero())
}

func TestClient_GetCurrentWeather_MissingCurrentBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"latitude": 52.37, "longitude": 4.89}`))
	}))
	defer server.Close()

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: testHTTPClient(),
	})

	_, err := client.GetCurrentWeather(context.Background(), 52.37, 4.89)
	assert.ErrorIs(t, err, weather.ErrNoDataForLocation)
}

func TestClient_GetCurrentWeather_UnparseableTime(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"latitude": 52.37,
			"longitude": 4.89,
			"current": {
				"time": "not-a-time",
				"temperature_2m": 12.0,
				"weather_code": 0
			}
		}`))
	}))
	defer server.Close()

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: testHTTPClient(),
	})

	obs, err := client.GetCurrentWeather(context.Background(), 52.37, 4.89)
	require.NoError(t, err)

	// Falls back to fetch time rather than failing the observation.
	assert.Equal(t, obs.FetchedAt, obs.ObservedAt)
	assert.Equal(t, weather.ConditionClear, obs.Condition)
}

func TestClient_GetForecast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "kmh", r.URL.Query().Get("wind_speed_unit"))
		assert.Equal(t, "7", r.URL.Query().Get("forecast_days"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"latitude": 51.92,
			"longitude": 4.48,
			"hourly": {
				"time": ["2025-01-15T00:00", "bad-entry", "2025-01-15T02:00"],
				"temperature_2m": [3.1, 2.8, 2.4],
				"wind_speed_10m": [18.0, 21.5, 24.0],
				"precipitation": [0.0, 0.2, 1.1],
				"weather_code": [2, 61, 95]
			}
		}`))
	}))
	defer server.Close()

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: testHTTPClient(),
	})

	forecast, err := client.GetForecast(context.Background(), 51.92, 4.48)
	require.NoError(t, err)

	assert.InDelta(t, 51.92, forecast.Lat, 1e-9)
	assert.InDelta(t, 4.48, forecast.Lon, 1e-9)

	// Unparseable timestamps are skipped, the rest of the series survives.
	require.Len(t, forecast.Hourly, 2)

	first := forecast.Hourly[0]
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), first.Time)
	assert.InDelta(t, 3.1, first.TemperatureC, 0.001)
	assert.InDelta(t, 18.0, first.WindSpeedKmh, 0.001)
	assert.InDelta(t, 0.0, first.PrecipitationMm, 0.001)
	assert.Equal(t, weather.ConditionClouds, first.Condition)

	second := forecast.Hourly[1]
	assert.Equal(t, time.Date(2025, 1, 15, 2, 0, 0, 0, time.UTC), second.Time)
	assert.InDelta(t, 1.1, second.PrecipitationMm, 0.001)
	assert.Equal(t, weather.ConditionThunderstorm, second.Condition)
}

func TestClient_GetForecast_InconsistentSeriesLengths(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"latitude": 51.92,
			"longitude": 4.48,
			"hourly": {
				"time": ["2025-01-15T00:00", "2025-01-15T01:00"],
				"temperature_2m": [3.1],
				"wind_speed_10m": [18.0, 21.5],
				"precipitation": [0.0, 0.2],
				"weather_code": [2, 61]
			}
		}`))
	}))
	defer server.Close()

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: testHTTPClient(),
	})

	_, err := client.GetForecast(context.Background(), 51.92, 4.48)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inconsistent hourly series lengths")
}

func TestClient_GetForecast_MissingHourlyBlock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"latitude": 51.92, "longitude": 4.48}`))
	}))
	defer server.Close()

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: testHTTPClient(),
	})

	_, err := client.GetForecast(context.Background(), 51.92, 4.48)
	assert.ErrorIs(t, err, weather.ErrNoDataForLocation)
}

func TestClient_GetCurrentWeather_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := openmeteo.NewClient(openmeteo.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: testHTTPClient(),
	})

	_, err := client.GetCurrentWeather(context.Background(), 52.37, 4.89)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClient_ConditionMapping(t *testing.T) {
	tests := []struct {
		name string
		code int
		want weather.Condition
	}{
		{"clear sky", 0, weather.ConditionClear},
		{"overcast", 3, weather.ConditionClouds},
		{"fog", 45, weather.ConditionFog},
		{"depositing rime fog", 48, weather.ConditionFog},
		{"light drizzle", 51, weather.ConditionDrizzle},
		{"freezing drizzle", 57, weather.ConditionDrizzle},
		{"moderate rain", 63, weather.ConditionRain},
		{"rain showers", 80, weather.ConditionRain},
		{"snow fall", 73, weather.ConditionSnow},
		{"snow showers", 86, weather.ConditionSnow},
		{"thunderstorm with hail", 99, weather.ConditionThunderstorm},
		{"unassigned code", 40, weather.ConditionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{
					"latitude": 52.37,
					"longitude": 4.89,
					"current": {
						"time": "2025-01-15T14:00",
						"temperature_2m": 5.0,
						"weather_code": ` + strconv.Itoa(tt.code) + `
					}
				}`))
			}))
			defer server.Close()

			client := openmeteo.NewClient(openmeteo.ClientConfig{
				BaseURL:    server.URL,
				HTTPClient: testHTTPClient(),
			})

			obs, err := client.GetCurrentWeather(context.Background(), 52.37, 4.89)
			require.NoError(t, err)
			assert.Equal(t, tt.want, obs.Condition)
		})
	}
}

func TestClient_Name(t *testing.T) {
	client := openmeteo.NewClient(openmeteo.ClientConfig{HTTPClient: testHTTPClient()})
	assert.Equal(t, "openmeteo", client.Name())
}
