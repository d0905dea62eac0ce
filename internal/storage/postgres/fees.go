package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ovenline/bakery-api/internal/domain/fees"
)

const (
	listActiveFeesSQL = `SELECT id, name, amount_pence, rate, is_active
		FROM configurable_fees WHERE is_active ORDER BY name`

	upsertFeeSQL = `INSERT INTO configurable_fees (id, name, amount_pence, rate, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			amount_pence = EXCLUDED.amount_pence,
			rate = EXCLUDED.rate,
			is_active = EXCLUDED.is_active`
)

var _ fees.Repository = (*FeeRepository)(nil)

// FeeRepository implements fees.Repository backed by PostgreSQL. The rate
// column is NUMERIC and scans directly into decimal.Decimal via the
// pgx-shopspring-decimal codec registered on the pool.
type FeeRepository struct {
	pool *pgxpool.Pool
}

// NewFeeRepository returns a FeeRepository that uses the given pool.
func NewFeeRepository(pool *pgxpool.Pool) *FeeRepository {
	return &FeeRepository{pool: pool}
}

// ListActive returns all active configurable fees.
func (r *FeeRepository) ListActive(ctx context.Context) ([]fees.Fee, error) {
	rows, err := r.pool.Query(ctx, listActiveFeesSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list fees")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (fees.Fee, error) {
		var f fees.Fee
		err := row.Scan(&f.ID, &f.Name, &f.AmountPence, &f.Rate, &f.Active)
		return f, err
	})
}

// Upsert inserts or refreshes a fee row, keyed by name. Used by seeding.
func (r *FeeRepository) Upsert(ctx context.Context, f fees.Fee) error {
	_, err := r.pool.Exec(ctx, upsertFeeSQL, f.ID, f.Name, f.AmountPence, f.Rate, f.Active)
	if err != nil {
		return errors.Wrapf(err, "upsert fee %q", f.Name)
	}
	return nil
}
