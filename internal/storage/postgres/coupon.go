package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/panel-storefront/internal/domain/coupon"
)

const (
	getCouponByCodeSQL = `SELECT code, rate, description
		FROM coupons WHERE code = UPPER($1) AND active = TRUE`

	upsertCouponSQL = `INSERT INTO coupons (code, rate, description)
		VALUES (UPPER($1), $2, $3)
		ON CONFLICT (code) DO UPDATE SET
			rate = EXCLUDED.rate,
			description = EXCLUDED.description,
			active = TRUE`

	countCouponsSQL = `SELECT count(*) FROM coupons WHERE active = TRUE`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindByCode looks up an active coupon. Codes are stored uppercase, so the
// lookup is case-insensitive. Returns coupon.ErrInvalidCoupon when no active
// coupon matches.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Rule, error) {
	rows, err := r.pool.Query(ctx, getCouponByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[coupon.Rule])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrInvalidCoupon
		}
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}
	return &rule, nil
}

// Upsert inserts or reactivates rules in one batch and returns how many rows
// were written. Every rule is validated first.
func (r *CouponRepository) Upsert(ctx context.Context, rules []coupon.Rule) (int64, error) {
	batch := &pgx.Batch{}
	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			return 0, errors.Wrapf(err, "coupon %q", rule.Code)
		}
		batch.Queue(upsertCouponSQL, rule.Code, rule.Rate, rule.Description)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer func() { _ = br.Close() }()

	var written int64
	for range rules {
		tag, err := br.Exec()
		if err != nil {
			return written, fmt.Errorf("upserting coupons: %w", err)
		}
		written += tag.RowsAffected()
	}
	return written, nil
}

// Count returns the number of active coupons.
func (r *CouponRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, countCouponsSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting coupons: %w", err)
	}
	return n, nil
}
