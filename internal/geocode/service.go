// Package geocode resolves free-form place names to coordinates using
// Nominatim.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/muesli/gominatim"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// Sentinel errors for geocoding operations.
var (
	// ErrNoResults indicates the query matched no known place.
	ErrNoResults = errors.New("no results found for location")
	// ErrProviderUnavailable indicates the geocoding provider failed.
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
)

const (
	// DefaultServerURL is the public Nominatim instance.
	DefaultServerURL = "https://nominatim.openstreetmap.org/"

	// DefaultCacheTTL is how long resolved locations stay cached. Place
	// coordinates are effectively static.
	DefaultCacheTTL = 24 * time.Hour

	// DefaultCleanupInterval is how often expired cache entries are purged.
	DefaultCleanupInterval = time.Hour
)

// Location is a resolved place.
type Location struct {
	Query       string
	DisplayName string
	Lat         float64
	Lon         float64
}

// SearchFunc performs a raw geocoding search. It exists so tests can stub
// the Nominatim call.
type SearchFunc func(query string) ([]gominatim.SearchResult, error)

// ServiceConfig holds configuration for the geocoding service.
type ServiceConfig struct {
	ServerURL       string
	CacheTTL        time.Duration
	CleanupInterval time.Duration
	Logger          zerolog.Logger

	// Search overrides the Nominatim lookup (optional, used in tests).
	Search SearchFunc
}

// Service resolves place names with a TTL cache in front of Nominatim.
type Service struct {
	search SearchFunc
	cache  *cache.Cache
	logger zerolog.Logger
}

// NewService creates a new geocoding service.
func NewService(cfg ServiceConfig) *Service {
	serverURL := cfg.ServerURL
	if serverURL == "" {
		serverURL = DefaultServerURL
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}

	search := cfg.Search
	if search == nil {
		gominatim.SetServer(serverURL)
		search = func(query string) ([]gominatim.SearchResult, error) {
			qry := gominatim.SearchQuery{Q: query}
			return qry.Get()
		}
	}

	return &Service{
		search: search,
		cache:  cache.New(cfg.CacheTTL, cfg.CleanupInterval),
		logger: cfg.Logger.With().Str("component", "geocode_service").Logger(),
	}
}

// Resolve geocodes a free-form place name to coordinates. Results are cached
// by exact query string.
func (s *Service) Resolve(ctx context.Context, query string) (*Location, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrNoResults)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cached, ok := s.cache.Get(query); ok {
		loc := cached.(Location)
		s.logger.Debug().Str("query", query).Msg("geocode cache hit")
		return &loc, nil
	}

	results, err := s.search(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoResults, query)
	}

	loc, err := toLocation(query, results[0])
	if err != nil {
		return nil, err
	}

	s.cache.Set(query, *loc, cache.DefaultExpiration)

	s.logger.Debug().
		Str("query", query).
		Str("display_name", loc.DisplayName).
		Msg("resolved location")

	return loc, nil
}

// CacheStats returns the number of cached locations.
func (s *Service) CacheStats() int {
	return s.cache.ItemCount()
}

func toLocation(query string, r gominatim.SearchResult) (*Location, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing longitude: %w", err)
	}
	return &Location{
		Query:       query,
		DisplayName: r.DisplayName,
		Lat:         lat,
		Lon:         lon,
	}, nil
}
