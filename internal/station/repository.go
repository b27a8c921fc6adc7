package station

import "context"

// Repository defines the interface for persisted station records. The
// persisted directory is a cold-start fallback for the snapshot cache and
// the source for offline tooling.
type Repository interface {
	// List retrieves all persisted stations.
	List(ctx context.Context) ([]*Station, error)

	// ReplaceAll atomically replaces the persisted directory with the
	// given stations.
	ReplaceAll(ctx context.Context, stations []*Station) error
}
