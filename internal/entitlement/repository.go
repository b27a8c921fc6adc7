package entitlement

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound indicates no entitlement record exists for the user.
var ErrNotFound = errors.New("entitlement not found")

// Repository defines storage for entitlement records.
type Repository interface {
	// Get returns the entitlement for a user.
	Get(ctx context.Context, userID string) (*Entitlement, error)

	// Save creates or replaces the entitlement for a user.
	Save(ctx context.Context, e *Entitlement) error
}

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for MVP/testing. Production should use a database-backed implementation.
type InMemoryRepository struct {
	mu     sync.RWMutex
	byUser map[string]*Entitlement
}

// NewInMemoryRepository creates a new in-memory entitlement repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byUser: make(map[string]*Entitlement)}
}

// Get returns the entitlement for a user.
func (r *InMemoryRepository) Get(_ context.Context, userID string) (*Entitlement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byUser[userID]
	if !ok {
		return nil, ErrNotFound
	}

	entCopy := *e
	return &entCopy, nil
}

// Save creates or replaces the entitlement for a user.
func (r *InMemoryRepository) Save(_ context.Context, e *Entitlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entCopy := *e
	r.byUser[e.UserID] = &entCopy
	return nil
}
