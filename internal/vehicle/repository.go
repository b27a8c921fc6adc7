package vehicle

import "context"

// Repository defines the interface for vehicle catalog storage.
type Repository interface {
	// GetByID retrieves a vehicle spec by its identifier.
	// Returns ErrVehicleNotFound if no such spec exists.
	GetByID(ctx context.Context, id string) (*Spec, error)

	// List retrieves all vehicle specs ordered by brand, then model.
	List(ctx context.Context) ([]*Spec, error)

	// Upsert inserts or replaces a vehicle spec.
	Upsert(ctx context.Context, spec *Spec) error
}
