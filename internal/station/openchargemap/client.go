// Package openchargemap provides a client for the Open Charge Map API.
package openchargemap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/voltroute/voltroute/internal/provider/resilience"
	"github.com/voltroute/voltroute/internal/station"
)

const (
	// ProviderName identifies this station directory provider.
	ProviderName = "openchargemap"

	// DefaultBaseURL is the Open Charge Map API base URL.
	DefaultBaseURL = "https://api.openchargemap.io/v3"

	// DefaultMaxResults bounds the snapshot size per fetch.
	DefaultMaxResults = 2000
)

// ClientConfig holds configuration for the Open Charge Map client.
type ClientConfig struct {
	// APIKey is the Open Charge Map API key (required).
	APIKey string

	// BaseURL is the API base URL (optional).
	BaseURL string

	// CountryCode restricts the snapshot to one country (optional).
	CountryCode string

	// MaxResults bounds the snapshot size (optional).
	MaxResults int

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Open Charge Map API client.
type Client struct {
	apiKey      string
	baseURL     string
	countryCode string
	maxResults  int
	httpClient  *resilience.Client
	logger      zerolog.Logger
}

// NewClient creates a new Open Charge Map client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	maxResults := cfg.MaxResults
	if maxResults == 0 {
		maxResults = DefaultMaxResults
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		countryCode: cfg.CountryCode,
		maxResults:  maxResults,
		httpClient:  httpClient,
		logger:      cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// FetchSnapshot fetches a complete snapshot of charging stations.
func (c *Client) FetchSnapshot(ctx context.Context) (*station.Snapshot, error) {
	url := fmt.Sprintf("%s/poi?output=json&compact=true&verbose=false&maxresults=%d&key=%s",
		c.baseURL, c.maxResults, c.apiKey)
	if c.countryCode != "" {
		url += "&countrycode=" + c.countryCode
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var pois []poi
	if err := json.NewDecoder(resp.Body).Decode(&pois); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	snapshot := station.NewSnapshot(ProviderName)
	for i := range pois {
		st := c.toStation(&pois[i])
		if st == nil {
			continue
		}
		snapshot.Stations[st.ID] = st
	}

	c.logger.Debug().
		Int("pois", len(pois)).
		Int("stations", len(snapshot.Stations)).
		Msg("fetched station snapshot")

	return snapshot, nil
}

// toStation maps a provider POI to the canonical station model.
// The provider carries charger-speed information in two historical shapes
// (a per-connection IsFastChargeCapable flag and a raw PowerKW rating);
// both are folded into the canonical PowerKW/IsFastCharger pair here so no
// downstream consumer has to branch on the provider's duplication.
func (c *Client) toStation(p *poi) *station.Station {
	if p.AddressInfo == nil {
		return nil
	}

	st := &station.Station{
		ID:        "ocm_" + strconv.FormatInt(p.ID, 10),
		Name:      p.AddressInfo.Title,
		Lat:       p.AddressInfo.Latitude,
		Lon:       p.AddressInfo.Longitude,
		UpdatedAt: time.Now(),
	}

	if p.OperatorInfo != nil {
		st.Operator = p.OperatorInfo.Title
	}

	var maxPower float64
	var fastCapable bool
	total := 0
	available := 0
	for _, conn := range p.Connections {
		if conn.PowerKW > maxPower {
			maxPower = conn.PowerKW
		}
		if conn.Level != nil && conn.Level.IsFastChargeCapable {
			fastCapable = true
		}
		quantity := conn.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		total += quantity
		if conn.StatusType == nil || conn.StatusType.IsOperational {
			available += quantity
		}
	}

	st.TotalConnectors = total
	st.AvailableConnectors = available
	st.PowerKW = maxPower
	if fastCapable && st.PowerKW < station.FastChargerThresholdKw {
		// Legacy feeds mark fast chargers without a power rating.
		st.PowerKW = station.FastChargerThresholdKw
	}
	st.PricePerKwh = parseUsageCost(p.UsageCost)

	st.Normalize()
	return st
}

// usageCostRegex extracts the first decimal number from a free-form usage
// cost string like "€0.59/kWh" or "0,45 EUR per kWh".
var usageCostRegex = regexp.MustCompile(`(\d+)[.,](\d+)`)

func parseUsageCost(cost string) float64 {
	if cost == "" || !strings.Contains(strings.ToLower(cost), "kwh") {
		return 0
	}
	m := usageCostRegex.FindStringSubmatch(cost)
	if m == nil {
		return 0
	}
	value, err := strconv.ParseFloat(m[1]+"."+m[2], 64)
	if err != nil {
		return 0
	}
	return value
}

// Open Charge Map API response structures.

type poi struct {
	ID           int64         `json:"ID"`
	AddressInfo  *addressInfo  `json:"AddressInfo"`
	OperatorInfo *operatorInfo `json:"OperatorInfo"`
	Connections  []connection  `json:"Connections"`
	UsageCost    string        `json:"UsageCost"`
}

type addressInfo struct {
	Title     string  `json:"Title"`
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
}

type operatorInfo struct {
	Title string `json:"Title"`
}

type connection struct {
	PowerKW    float64     `json:"PowerKW"`
	Quantity   int         `json:"Quantity"`
	Level      *level      `json:"Level"`
	StatusType *statusType `json:"StatusType"`
}

type level struct {
	IsFastChargeCapable bool `json:"IsFastChargeCapable"`
}

type statusType struct {
	IsOperational bool `json:"IsOperational"`
}
