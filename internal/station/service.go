package station

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/voltroute/voltroute/pkg/geo"
)

// Provider defines the interface for station directory providers.
type Provider interface {
	// FetchSnapshot fetches a complete snapshot of charging stations.
	FetchSnapshot(ctx context.Context) (*Snapshot, error)

	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// ServiceConfig holds configuration for the station directory service.
type ServiceConfig struct {
	// Provider is the station directory provider.
	Provider Provider

	// Repository, when set, persists each fresh snapshot and serves as a
	// cold-start source before the first provider fetch succeeds.
	Repository Repository

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long to cache the snapshot (default: 5 minutes).
	// Connector availability goes stale quickly.
	CacheTTL time.Duration

	// StaleIfErrorTTL allows serving stale data on provider errors
	// (default: 30 minutes).
	StaleIfErrorTTL time.Duration
}

// Service provides charging-station data with caching.
type Service struct {
	provider        Provider
	repo            Repository
	logger          zerolog.Logger
	cacheTTL        time.Duration
	staleIfErrorTTL time.Duration

	mu          sync.RWMutex
	snapshot    *Snapshot
	cacheExpiry time.Time
}

// NewService creates a new station directory service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 30 * time.Minute
	}

	return &Service{
		provider:        cfg.Provider,
		repo:            cfg.Repository,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		staleIfErrorTTL: staleIfErrorTTL,
	}
}

// GetSnapshot returns the current station snapshot, refreshing from the
// provider when the cached copy has expired.
func (s *Service) GetSnapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	if s.snapshot != nil && time.Now().Before(s.cacheExpiry) {
		snapshot := s.snapshot
		s.mu.RUnlock()
		return snapshot, nil
	}
	s.mu.RUnlock()

	return s.refreshSnapshot(ctx)
}

// Near returns stations within radiusKm of the given point, ordered by
// distance. Returns ErrNoStationsNearby if none are in range.
func (s *Service) Near(ctx context.Context, lat, lon, radiusKm float64) ([]*Station, error) {
	snapshot, err := s.GetSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	type withDistance struct {
		station  *Station
		distance float64
	}

	var nearby []withDistance
	for _, st := range snapshot.Stations {
		d := geo.HaversineKm(lat, lon, st.Lat, st.Lon)
		if d <= radiusKm {
			nearby = append(nearby, withDistance{station: st, distance: d})
		}
	}

	if len(nearby) == 0 {
		return nil, ErrNoStationsNearby
	}

	sort.Slice(nearby, func(i, j int) bool {
		if nearby[i].distance != nearby[j].distance {
			return nearby[i].distance < nearby[j].distance
		}
		return nearby[i].station.ID < nearby[j].station.ID
	})

	stations := make([]*Station, len(nearby))
	for i, n := range nearby {
		stations[i] = n.station
	}
	return stations, nil
}

// Get retrieves a single station by ID from the current snapshot.
func (s *Service) Get(ctx context.Context, id string) (*Station, error) {
	snapshot, err := s.GetSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	st, ok := snapshot.Stations[id]
	if !ok {
		return nil, ErrStationNotFound
	}
	return st, nil
}

// RefreshSnapshot forces a provider fetch, bypassing the cache. Used by the
// background refresh worker.
func (s *Service) RefreshSnapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	s.cacheExpiry = time.Time{}
	s.mu.Unlock()
	return s.refreshSnapshot(ctx)
}

func (s *Service) refreshSnapshot(ctx context.Context) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring the write lock.
	if s.snapshot != nil && time.Now().Before(s.cacheExpiry) {
		return s.snapshot, nil
	}

	s.logger.Debug().
		Str("provider", s.provider.Name()).
		Msg("fetching station snapshot from provider")

	snapshot, err := s.provider.FetchSnapshot(ctx)
	if err != nil {
		s.logger.Error().Err(err).
			Str("provider", s.provider.Name()).
			Msg("failed to fetch station snapshot")

		// Stale-if-error: keep serving the previous snapshot for a while.
		if s.snapshot != nil && time.Now().Before(s.snapshot.FetchedAt.Add(s.staleIfErrorTTL)) {
			s.logger.Warn().
				Time("fetched_at", s.snapshot.FetchedAt).
				Msg("serving stale station snapshot due to provider error")
			return s.snapshot, nil
		}

		// Cold start: fall back to the persisted directory if available.
		if s.repo != nil {
			persisted, repoErr := s.loadFromRepository(ctx)
			if repoErr == nil && len(persisted.Stations) > 0 {
				s.logger.Warn().
					Int("stations", len(persisted.Stations)).
					Msg("serving persisted station directory due to provider error")
				s.snapshot = persisted
				s.cacheExpiry = time.Now().Add(s.cacheTTL)
				return persisted, nil
			}
		}

		return nil, ErrProviderUnavailable
	}

	s.snapshot = snapshot
	s.cacheExpiry = time.Now().Add(s.cacheTTL)

	if s.repo != nil {
		if err := s.repo.ReplaceAll(ctx, snapshot.StationList()); err != nil {
			// Persistence is best-effort; the in-memory snapshot is authoritative.
			s.logger.Warn().Err(err).Msg("failed to persist station snapshot")
		}
	}

	s.logger.Info().
		Int("stations", len(snapshot.Stations)).
		Str("provider", s.provider.Name()).
		Msg("station snapshot refreshed")

	return snapshot, nil
}

func (s *Service) loadFromRepository(ctx context.Context) (*Snapshot, error) {
	stations, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := NewSnapshot("repository")
	for _, st := range stations {
		snapshot.Stations[st.ID] = st
	}
	return snapshot, nil
}

// InvalidateCache clears the cached snapshot.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = nil
	s.cacheExpiry = time.Time{}
}
