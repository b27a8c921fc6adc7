package station

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL station repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List retrieves all persisted stations.
func (r *PostgresRepository) List(ctx context.Context) ([]*Station, error) {
	query := `
		SELECT id, name, operator, lat, lon,
		       available_connectors, total_connectors,
		       power_kw, is_fast_charger, price_per_kwh, updated_at
		FROM charging_stations
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stations []*Station
	for rows.Next() {
		var st Station
		err := rows.Scan(
			&st.ID,
			&st.Name,
			&st.Operator,
			&st.Lat,
			&st.Lon,
			&st.AvailableConnectors,
			&st.TotalConnectors,
			&st.PowerKW,
			&st.IsFastCharger,
			&st.PricePerKwh,
			&st.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		stations = append(stations, &st)
	}

	return stations, rows.Err()
}

// ReplaceAll atomically replaces the persisted directory.
func (r *PostgresRepository) ReplaceAll(ctx context.Context, stations []*Station) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM charging_stations`); err != nil {
		return err
	}

	rowsToInsert := make([][]interface{}, 0, len(stations))
	for _, st := range stations {
		rowsToInsert = append(rowsToInsert, []interface{}{
			st.ID, st.Name, st.Operator, st.Lat, st.Lon,
			st.AvailableConnectors, st.TotalConnectors,
			st.PowerKW, st.IsFastCharger, st.PricePerKwh, st.UpdatedAt,
		})
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"charging_stations"},
		[]string{
			"id", "name", "operator", "lat", "lon",
			"available_connectors", "total_connectors",
			"power_kw", "is_fast_charger", "price_per_kwh", "updated_at",
		},
		pgx.CopyFromRows(rowsToInsert),
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)
