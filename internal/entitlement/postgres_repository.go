package entitlement

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

// NewPostgresRepository creates a new PostgreSQL entitlement repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get returns the entitlement for a user.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (*Entitlement, error) {
	query := `
		SELECT user_id, tier, route_quota, routes_used, period_start, updated_at
		FROM entitlements
		WHERE user_id = $1
	`

	var e Entitlement
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&e.UserID,
		&e.Tier,
		&e.RouteQuota,
		&e.RoutesUsed,
		&e.PeriodStart,
		&e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &e, nil
}

// Save creates or replaces the entitlement for a user.
func (r *PostgresRepository) Save(ctx context.Context, e *Entitlement) error {
	query := `
		INSERT INTO entitlements (user_id, tier, route_quota, routes_used, period_start, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			tier = EXCLUDED.tier,
			route_quota = EXCLUDED.route_quota,
			routes_used = EXCLUDED.routes_used,
			period_start = EXCLUDED.period_start,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		e.UserID,
		e.Tier,
		e.RouteQuota,
		e.RoutesUsed,
		e.PeriodStart,
		e.UpdatedAt,
	)
	return err
}
