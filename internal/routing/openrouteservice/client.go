// Package openrouteservice provides a client for the openrouteservice
// directions API.
package openrouteservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/voltroute/voltroute/internal/provider/resilience"
	"github.com/voltroute/voltroute/internal/routing"
)

const (
	// ProviderName identifies this routing provider.
	ProviderName = "openrouteservice"

	// DefaultBaseURL is the openrouteservice API base URL.
	DefaultBaseURL = "https://api.openrouteservice.org/v2"
)

// ClientConfig holds configuration for the openrouteservice client.
type ClientConfig struct {
	// APIKey is the openrouteservice API key (required).
	APIKey string

	// BaseURL is the API base URL (optional).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an openrouteservice API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new openrouteservice client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig(ProviderName)
		clientCfg.Registry = resilience.GlobalRegistry
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// SupportedProfiles returns the route profiles this client supports.
func (c *Client) SupportedProfiles() []routing.RouteProfile {
	return []routing.RouteProfile{routing.ProfileDrive, routing.ProfileDriveHGV}
}

// GetDirections retrieves route directions from openrouteservice.
func (c *Client) GetDirections(ctx context.Context, req routing.DirectionsRequest) (*routing.DirectionsResponse, error) {
	profile := req.Profile
	if profile == "" {
		profile = routing.ProfileDrive
	}

	body := orsRequest{
		Coordinates: [][]float64{
			{req.Origin.Lon, req.Origin.Lat},
			{req.Destination.Lon, req.Destination.Lat},
		},
		Geometry:     true,
		Instructions: false,
	}
	if req.MaxAlternatives > 1 {
		body.AlternativeRoutes = &orsAlternativeRoutes{
			TargetCount:  req.MaxAlternatives,
			WeightFactor: 1.4,
			ShareFactor:  0.6,
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/directions/%s", c.baseURL, profile)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Authorization", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return nil, c.wrapError("", "circuit breaker open", routing.ErrProviderUnavailable)
		}
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.handleErrorResponse(resp)
	}

	var orsResp orsResponse
	if err := json.NewDecoder(resp.Body).Decode(&orsResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(orsResp.Routes) == 0 {
		return nil, c.wrapError("", "no routes in response", routing.ErrNoRouteFound)
	}

	routes := make([]routing.Route, 0, len(orsResp.Routes))
	for _, r := range orsResp.Routes {
		routes = append(routes, toRoute(r))
	}

	return &routing.DirectionsResponse{
		Routes:    routes,
		Provider:  ProviderName,
		FetchedAt: time.Now(),
	}, nil
}

func toRoute(r orsRoute) routing.Route {
	route := routing.Route{
		GeometryPolyline: r.Geometry,
		DistanceMeters:   int(r.Summary.Distance),
		DurationSeconds:  int(r.Summary.Duration),
	}
	if len(r.BBox) >= 4 {
		route.BoundingBox = &routing.BoundingBox{
			MinLon: r.BBox[0],
			MinLat: r.BBox[1],
			MaxLon: r.BBox[2],
			MaxLat: r.BBox[3],
		}
	}
	return route
}

func (c *Client) handleErrorResponse(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var errResp orsErrorResponse
	if err := json.Unmarshal(raw, &errResp); err == nil && errResp.Error.Code != 0 {
		return c.mapError(errResp.Error, resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return c.wrapError("", "rate limit exceeded", routing.ErrRateLimitExceeded)
	case resp.StatusCode >= 500:
		return c.wrapError("", fmt.Sprintf("server error: %d", resp.StatusCode), routing.ErrProviderUnavailable)
	default:
		return c.wrapError("", fmt.Sprintf("unexpected status code: %d", resp.StatusCode), nil)
	}
}

func (c *Client) mapError(e orsError, statusCode int) error {
	code := fmt.Sprintf("%d", e.Code)

	switch e.Code {
	case orsErrorCodeNotFound, orsErrorCodePointNotFound:
		return c.wrapError(code, e.Message, routing.ErrNoRouteFound)
	case orsErrorCodeMissingParam, orsErrorCodeInvalidParam, orsErrorCodeOutOfRange:
		return c.wrapError(code, e.Message, routing.ErrInvalidCoordinates)
	}

	if statusCode == http.StatusTooManyRequests {
		return c.wrapError(code, e.Message, routing.ErrRateLimitExceeded)
	}
	if statusCode >= 500 {
		return c.wrapError(code, e.Message, routing.ErrProviderUnavailable)
	}
	return c.wrapError(code, e.Message, nil)
}

func (c *Client) wrapError(code, message string, sentinel error) error {
	return &routing.Error{
		Provider: ProviderName,
		Code:     code,
		Message:  message,
		Err:      sentinel,
	}
}
