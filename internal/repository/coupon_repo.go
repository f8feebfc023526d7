package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/fundspark/checkout-service/internal/models"
)

type CouponRepo struct {
	db *sql.DB
}

func NewCouponRepo(db *sql.DB) *CouponRepo {
	return &CouponRepo{db: db}
}

const couponColumns = `id, code, description, discount_type, discount_value,
	is_active, expires_at, usage_limit, used_count, min_purchase_amount,
	applicable_packages, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCoupon(row rowScanner) (*models.Coupon, error) {
	var c models.Coupon
	var expiresAt sql.NullTime
	var usageLimit sql.NullInt64
	var minPurchase decimal.NullDecimal

	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Description,
		&c.DiscountType,
		&c.DiscountValue,
		&c.IsActive,
		&expiresAt,
		&usageLimit,
		&c.UsedCount,
		&minPurchase,
		pq.Array(&c.ApplicablePackages),
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		t := expiresAt.Time
		c.ExpiresAt = &t
	}
	if usageLimit.Valid {
		n := int(usageLimit.Int64)
		c.UsageLimit = &n
	}
	if minPurchase.Valid {
		d := minPurchase.Decimal
		c.MinPurchaseAmount = &d
	}
	return &c, nil
}

// GetByCode looks a coupon up by its canonical code. Returns
// models.ErrCouponNotFound when no such coupon exists.
func (r *CouponRepo) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`
	c, err := scanCoupon(r.db.QueryRowContext(ctx, query, models.NormalizeCode(code)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrCouponNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetAndLock loads a coupon inside tx with FOR UPDATE so the usage
// counter can be checked and incremented without racing a concurrent
// redemption of the same code.
func (r *CouponRepo) GetAndLock(ctx context.Context, tx *sql.Tx, code string) (*models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1 FOR UPDATE`
	c, err := scanCoupon(tx.QueryRowContext(ctx, query, models.NormalizeCode(code)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrCouponNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// IncrementUsage bumps used_count for a coupon row already locked by
// GetAndLock in the same transaction.
func (r *CouponRepo) IncrementUsage(ctx context.Context, tx *sql.Tx, id int64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE coupons SET used_count = used_count + 1, updated_at = NOW() WHERE id = $1`, id)
	return err
}

// ListActive returns coupons that are active, unexpired and still below
// their usage ceiling, ordered by code.
func (r *CouponRepo) ListActive(ctx context.Context, now time.Time) ([]*models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons
		WHERE is_active
		  AND (expires_at IS NULL OR expires_at > $1)
		  AND (usage_limit IS NULL OR used_count < usage_limit)
		ORDER BY code`

	rows, err := r.db.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coupons []*models.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

// Create inserts a coupon; the code is stored in canonical uppercase
// form. Returns models.ErrCouponExists on a duplicate code.
func (r *CouponRepo) Create(ctx context.Context, c *models.Coupon) error {
	query := `INSERT INTO coupons
		(code, description, discount_type, discount_value, is_active,
		 expires_at, usage_limit, min_purchase_amount, applicable_packages)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, used_count, created_at, updated_at`

	var expiresAt any
	if c.ExpiresAt != nil {
		expiresAt = *c.ExpiresAt
	}
	var usageLimit any
	if c.UsageLimit != nil {
		usageLimit = *c.UsageLimit
	}
	var minPurchase any
	if c.MinPurchaseAmount != nil {
		minPurchase = *c.MinPurchaseAmount
	}
	packages := c.ApplicablePackages
	if packages == nil {
		packages = []string{}
	}

	err := r.db.QueryRowContext(ctx, query,
		models.NormalizeCode(c.Code),
		c.Description,
		c.DiscountType,
		c.DiscountValue,
		c.IsActive,
		expiresAt,
		usageLimit,
		minPurchase,
		pq.Array(packages),
	).Scan(&c.ID, &c.UsedCount, &c.CreatedAt, &c.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return models.ErrCouponExists
	}
	if err != nil {
		return err
	}
	c.Code = models.NormalizeCode(c.Code)
	return nil
}
