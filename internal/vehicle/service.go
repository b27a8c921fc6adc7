package vehicle

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServiceConfig holds configuration for the vehicle catalog service.
type ServiceConfig struct {
	Repository Repository
	Logger     zerolog.Logger

	// CacheTTL is how long to cache the catalog in memory (default: 10 minutes).
	// Specs are reference data and change rarely.
	CacheTTL time.Duration
}

// Service provides vehicle catalog lookups with an in-memory cache.
type Service struct {
	repo     Repository
	logger   zerolog.Logger
	cacheTTL time.Duration

	mu          sync.RWMutex
	cache       map[string]*Spec
	cacheExpiry time.Time
}

// NewService creates a new vehicle catalog service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 10 * time.Minute
	}

	return &Service{
		repo:     cfg.Repository,
		logger:   cfg.Logger,
		cacheTTL: cacheTTL,
		cache:    make(map[string]*Spec),
	}
}

// Get retrieves a vehicle spec by identifier.
func (s *Service) Get(ctx context.Context, id string) (*Spec, error) {
	s.mu.RLock()
	if spec, ok := s.cache[id]; ok && time.Now().Before(s.cacheExpiry) {
		s.mu.RUnlock()
		return spec, nil
	}
	s.mu.RUnlock()

	spec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if time.Now().After(s.cacheExpiry) {
		s.cache = make(map[string]*Spec)
		s.cacheExpiry = time.Now().Add(s.cacheTTL)
	}
	s.cache[id] = spec
	s.mu.Unlock()

	return spec, nil
}

// List retrieves the full catalog.
func (s *Service) List(ctx context.Context) ([]*Spec, error) {
	return s.repo.List(ctx)
}

// Seed upserts the default catalog into the repository. Called at startup
// so a fresh deployment has vehicles to offer.
func (s *Service) Seed(ctx context.Context) error {
	for _, spec := range DefaultCatalog() {
		cpy := spec
		if err := s.repo.Upsert(ctx, &cpy); err != nil {
			return err
		}
	}
	s.logger.Info().Int("specs", len(DefaultCatalog())).Msg("vehicle catalog seeded")
	return nil
}
