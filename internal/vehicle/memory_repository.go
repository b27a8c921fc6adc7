package vehicle

import (
	"context"
	"sort"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// Intended for testing and for running without a database.
type InMemoryRepository struct {
	mu    sync.RWMutex
	specs map[string]*Spec
}

// NewInMemoryRepository creates a new in-memory vehicle repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		specs: make(map[string]*Spec),
	}
}

// NewInMemoryRepositoryWithCatalog creates an in-memory repository seeded
// with the default catalog.
func NewInMemoryRepositoryWithCatalog() *InMemoryRepository {
	r := NewInMemoryRepository()
	for _, spec := range DefaultCatalog() {
		cpy := spec
		r.specs[spec.ID] = &cpy
	}
	return r
}

// GetByID retrieves a vehicle spec by ID.
func (r *InMemoryRepository) GetByID(_ context.Context, id string) (*Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.specs[id]
	if !ok {
		return nil, ErrVehicleNotFound
	}

	cpy := *spec
	return &cpy, nil
}

// List retrieves all vehicle specs ordered by brand, then model.
func (r *InMemoryRepository) List(_ context.Context) ([]*Spec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]*Spec, 0, len(r.specs))
	for _, s := range r.specs {
		cpy := *s
		specs = append(specs, &cpy)
	}

	sort.Slice(specs, func(i, j int) bool {
		if specs[i].Brand != specs[j].Brand {
			return specs[i].Brand < specs[j].Brand
		}
		return specs[i].Model < specs[j].Model
	})

	return specs, nil
}

// Upsert inserts or replaces a vehicle spec.
func (r *InMemoryRepository) Upsert(_ context.Context, spec *Spec) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpy := *spec
	r.specs[spec.ID] = &cpy
	return nil
}

// Ensure InMemoryRepository implements Repository.
var _ Repository = (*InMemoryRepository)(nil)
