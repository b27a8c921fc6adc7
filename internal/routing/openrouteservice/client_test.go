package openrouteservice_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltroute/voltroute/internal/provider/resilience"
	"github.com/voltroute/voltroute/internal/routing"
	"github.com/voltroute/voltroute/internal/routing/openrouteservice"
)

func testHTTPClient() *resilience.Client {
	return resilience.NewClient(resilience.ClientConfig{
		Name:            "test",
		MaxRetries:      1,
		InitialInterval: time.Millisecond,
	})
}

func testDirectionsRequest() routing.DirectionsRequest {
	return routing.DirectionsRequest{
		Origin:      routing.Coordinate{Lat: 52.37, Lon: 4.89},
		Destination: routing.Coordinate{Lat: 50.94, Lon: 6.96},
		Profile:     routing.ProfileDrive,
	}
}

func TestGetDirections_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/directions/driving-car", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		coords, ok := body["coordinates"].([]any)
		require.True(t, ok)
		require.Len(t, coords, 2)
		first := coords[0].([]any)
		assert.InDelta(t, 4.89, first[0].(float64), 0.001, "coordinates should be lon,lat")
		assert.InDelta(t, 52.37, first[1].(float64), 0.001)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"routes": [{
				"summary": {"distance": 260123.4, "duration": 9400.5},
				"geometry": "_p~iF~ps|U_ulLnnqC",
				"bbox": [4.89, 50.94, 6.96, 52.37]
			}]
		}`))
	}))
	defer server.Close()

	client := openrouteservice.NewClient(openrouteservice.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: testHTTPClient(),
	})

	resp, err := client.GetDirections(context.Background(), testDirectionsRequest())
	require.NoError(t, err)
	require.Len(t, resp.Routes, 1)

	route := resp.Routes[0]
	assert.Equal(t, 260123, route.DistanceMeters)
	assert.Equal(t, 9400, route.DurationSeconds)
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC", route.GeometryPolyline)
	require.NotNil(t, route.BoundingBox)
	assert.InDelta(t, 4.89, route.BoundingBox.MinLon, 0.001)
	assert.Equal(t, openrouteservice.ProviderName, resp.Provider)
}

func TestGetDirections_RouteNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error": {"code": 2009, "message": "Route could not be found"}}`))
	}))
	defer server.Close()

	client := openrouteservice.NewClient(openrouteservice.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: testHTTPClient(),
	})

	_, err := client.GetDirections(context.Background(), testDirectionsRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, routing.ErrNoRouteFound)

	var routingErr *routing.Error
	require.ErrorAs(t, err, &routingErr)
	assert.Equal(t, "2009", routingErr.Code)
}

func TestGetDirections_InvalidParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 2003, "message": "Parameter coordinates is invalid"}}`))
	}))
	defer server.Close()

	client := openrouteservice.NewClient(openrouteservice.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: testHTTPClient(),
	})

	_, err := client.GetDirections(context.Background(), testDirectionsRequest())
	assert.ErrorIs(t, err, routing.ErrInvalidCoordinates)
}

func TestGetDirections_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := openrouteservice.NewClient(openrouteservice.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: testHTTPClient(),
	})

	_, err := client.GetDirections(context.Background(), testDirectionsRequest())
	assert.ErrorIs(t, err, routing.ErrRateLimitExceeded)
}

func TestGetDirections_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := openrouteservice.NewClient(openrouteservice.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: testHTTPClient(),
	})

	_, err := client.GetDirections(context.Background(), testDirectionsRequest())
	assert.ErrorIs(t, err, routing.ErrProviderUnavailable)
}

func TestGetDirections_EmptyRoutes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"routes": []}`))
	}))
	defer server.Close()

	client := openrouteservice.NewClient(openrouteservice.ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: testHTTPClient(),
	})

	_, err := client.GetDirections(context.Background(), testDirectionsRequest())
	assert.ErrorIs(t, err, routing.ErrNoRouteFound)
}
