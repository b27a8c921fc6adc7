package vehicle

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL vehicle repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetByID retrieves a vehicle spec by its identifier.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Spec, error) {
	query := `
		SELECT id, brand, model, battery_capacity_kwh, rated_range_km,
		       consumption_kwh_per_100km, updated_at
		FROM vehicle_specs
		WHERE id = $1
	`

	var spec Spec
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&spec.ID,
		&spec.Brand,
		&spec.Model,
		&spec.BatteryCapacityKwh,
		&spec.RatedRangeKm,
		&spec.ConsumptionKwhPer100Km,
		&spec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}

	return &spec, nil
}

// List retrieves all vehicle specs ordered by brand, then model.
func (r *PostgresRepository) List(ctx context.Context) ([]*Spec, error) {
	query := `
		SELECT id, brand, model, battery_capacity_kwh, rated_range_km,
		       consumption_kwh_per_100km, updated_at
		FROM vehicle_specs
		ORDER BY brand, model
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var specs []*Spec
	for rows.Next() {
		var spec Spec
		err := rows.Scan(
			&spec.ID,
			&spec.Brand,
			&spec.Model,
			&spec.BatteryCapacityKwh,
			&spec.RatedRangeKm,
			&spec.ConsumptionKwhPer100Km,
			&spec.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		specs = append(specs, &spec)
	}

	return specs, rows.Err()
}

// Upsert inserts or replaces a vehicle spec.
func (r *PostgresRepository) Upsert(ctx context.Context, spec *Spec) error {
	query := `
		INSERT INTO vehicle_specs (
			id, brand, model, battery_capacity_kwh, rated_range_km,
			consumption_kwh_per_100km, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			brand = EXCLUDED.brand,
			model = EXCLUDED.model,
			battery_capacity_kwh = EXCLUDED.battery_capacity_kwh,
			rated_range_km = EXCLUDED.rated_range_km,
			consumption_kwh_per_100km = EXCLUDED.consumption_kwh_per_100km,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		spec.ID,
		spec.Brand,
		spec.Model,
		spec.BatteryCapacityKwh,
		spec.RatedRangeKm,
		spec.ConsumptionKwhPer100Km,
		spec.UpdatedAt,
	)
	return err
}

// Ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)
