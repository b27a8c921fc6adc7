package routing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/voltroute/voltroute/pkg/geo"
)

const (
	// DefaultCacheTTL is how long route responses stay fresh. Road networks
	// change slowly, so routes can be cached aggressively.
	DefaultCacheTTL = 30 * time.Minute
	// DefaultStaleIfErrorTTL is how long stale routes may be served when the
	// provider is unavailable.
	DefaultStaleIfErrorTTL = 6 * time.Hour
	// DefaultCleanupInterval is how often expired cache entries are purged.
	DefaultCleanupInterval = 10 * time.Minute
)

// ServiceConfig holds configuration for the routing service.
type ServiceConfig struct {
	Provider        Provider
	Logger          zerolog.Logger
	CacheTTL        time.Duration
	StaleIfErrorTTL time.Duration
	CleanupInterval time.Duration
}

// Service provides cached access to routing data.
type Service struct {
	provider        Provider
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration

	mu    sync.RWMutex
	cache map[string]*cacheEntry

	stopCleanup chan struct{}
}

type cacheEntry struct {
	response  *DirectionsResponse
	fetchedAt time.Time
}

func (e *cacheEntry) isFresh(ttl time.Duration) bool {
	return time.Since(e.fetchedAt) < ttl
}

// NewService creates a new routing service with caching.
func NewService(cfg ServiceConfig) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.StaleIfErrorTTL <= 0 {
		cfg.StaleIfErrorTTL = DefaultStaleIfErrorTTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultCleanupInterval
	}

	s := &Service{
		provider:        cfg.Provider,
		logger:          cfg.Logger.With().Str("component", "routing_service").Logger(),
		cacheTTL:        cfg.CacheTTL,
		staleIfErrorTTL: cfg.StaleIfErrorTTL,
		cache:           make(map[string]*cacheEntry),
		stopCleanup:     make(chan struct{}),
	}

	go s.cleanupLoop(cfg.CleanupInterval)

	return s
}

// GetDirections returns route directions, serving from cache when possible.
// Stale cached routes are returned when the provider fails within the
// stale-if-error window.
func (s *Service) GetDirections(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error) {
	if !geo.ValidCoordinates(req.Origin.Lat, req.Origin.Lon) ||
		!geo.ValidCoordinates(req.Destination.Lat, req.Destination.Lon) {
		return nil, ErrInvalidCoordinates
	}
	if req.Profile == "" {
		req.Profile = ProfileDrive
	}
	if req.MaxAlternatives <= 0 {
		req.MaxAlternatives = 1
	}

	key := s.cacheKey(req)

	s.mu.RLock()
	entry, ok := s.cache[key]
	s.mu.RUnlock()
	if ok && entry.isFresh(s.cacheTTL) {
		s.logger.Debug().Str("cache_key", key).Msg("routing cache hit")
		return entry.response, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring the write lock.
	if entry, ok := s.cache[key]; ok && entry.isFresh(s.cacheTTL) {
		return entry.response, nil
	}

	resp, err := s.provider.GetDirections(ctx, req)
	if err != nil {
		if entry, ok := s.cache[key]; ok && entry.isFresh(s.staleIfErrorTTL) {
			s.logger.Warn().
				Err(err).
				Str("cache_key", key).
				Msg("provider failed, serving stale route")
			return entry.response, nil
		}
		return nil, fmt.Errorf("fetching directions: %w", err)
	}

	s.cache[key] = &cacheEntry{response: resp, fetchedAt: time.Now()}

	s.logger.Debug().
		Str("provider", resp.Provider).
		Int("routes", len(resp.Routes)).
		Msg("fetched directions")

	return resp, nil
}

// PrimaryRoute returns the first (preferred) route between two points using
// the standard driving profile.
func (s *Service) PrimaryRoute(ctx context.Context, origin, destination Coordinate) (*Route, error) {
	resp, err := s.GetDirections(ctx, DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Profile:     ProfileDrive,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Routes) == 0 {
		return nil, ErrNoRouteFound
	}
	return &resp.Routes[0], nil
}

// InvalidateCache clears all cached routes.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cacheEntry)
	s.logger.Info().Msg("routing cache invalidated")
}

// CacheStats returns the number of entries in the cache.
func (s *Service) CacheStats() (total, fresh int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total = len(s.cache)
	for _, entry := range s.cache {
		if entry.isFresh(s.cacheTTL) {
			fresh++
		}
	}
	return total, fresh
}

// Close stops the background cleanup goroutine.
func (s *Service) Close() {
	close(s.stopCleanup)
}

// cacheKey quantizes coordinates to ~1km so nearby requests share an entry.
func (s *Service) cacheKey(req DirectionsRequest) string {
	return fmt.Sprintf("%s:%.2f,%.2f:%.2f,%.2f:%d",
		req.Profile,
		req.Origin.Lat, req.Origin.Lon,
		req.Destination.Lat, req.Destination.Lon,
		req.MaxAlternatives,
	)
}

func (s *Service) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *Service) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.cache {
		if !entry.isFresh(s.staleIfErrorTTL) {
			delete(s.cache, key)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Msg("cleaned up expired route cache entries")
	}
}
