package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fundspark/checkout-service/internal/models"
)

// Evaluation failure reasons, surfaced verbatim to API clients.
const (
	ReasonCouponNotFound     = "coupon_not_found"
	ReasonCouponInactive     = "coupon_inactive"
	ReasonCouponExpired      = "coupon_expired"
	ReasonUsageLimitReached  = "usage_limit_reached"
	ReasonMinPurchaseNotMet  = "min_purchase_not_met"
	ReasonPackageNotEligible = "package_not_eligible"
)

// priceFloor keeps a discounted charge from reaching zero; processors
// reject zero and negative amounts.
var priceFloor = decimal.RequireFromString("0.01")

var hundred = decimal.NewFromInt(100)

// Evaluate applies a coupon's eligibility checks in a fixed order, first
// failure wins: active flag, expiry, usage ceiling, minimum purchase,
// package restriction. A valid result carries the discount and the
// discounted price, floored at one cent. Evaluate never mutates the
// coupon; consuming a usage slot is a separate, transactional step.
func Evaluate(c *models.Coupon, basePrice decimal.Decimal, packageID string, now time.Time) models.CouponResult {
	fail := func(reason string) models.CouponResult {
		return models.CouponResult{Discount: decimal.Zero, FinalPrice: basePrice, Reason: reason}
	}

	if !c.IsActive {
		return fail(ReasonCouponInactive)
	}
	if c.ExpiresAt != nil && now.After(*c.ExpiresAt) {
		return fail(ReasonCouponExpired)
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return fail(ReasonUsageLimitReached)
	}
	if c.MinPurchaseAmount != nil && basePrice.LessThan(*c.MinPurchaseAmount) {
		return fail(ReasonMinPurchaseNotMet)
	}
	if !c.AppliesTo(packageID) {
		return fail(ReasonPackageNotEligible)
	}

	var discount decimal.Decimal
	if c.DiscountType == models.DiscountPercentage {
		discount = basePrice.Mul(c.DiscountValue).Div(hundred)
	} else {
		// Never discount more than the price itself.
		discount = decimal.Min(c.DiscountValue, basePrice)
	}

	return models.CouponResult{
		Valid:      true,
		Discount:   discount,
		FinalPrice: decimal.Max(priceFloor, basePrice.Sub(discount)),
		Coupon:     c,
	}
}

// CouponStore is the repository surface the service needs; an interface
// so handlers and tests can substitute fakes.
type CouponStore interface {
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	GetAndLock(ctx context.Context, tx *sql.Tx, code string) (*models.Coupon, error)
	IncrementUsage(ctx context.Context, tx *sql.Tx, id int64) error
	ListActive(ctx context.Context, now time.Time) ([]*models.Coupon, error)
	Create(ctx context.Context, c *models.Coupon) error
}

// CouponCache is the read cache surface. Implementations must degrade
// gracefully: a miss is just a miss, never an error.
type CouponCache interface {
	Get(ctx context.Context, code string) (*models.Coupon, bool)
	Set(ctx context.Context, coupon *models.Coupon)
	Invalidate(ctx context.Context, code string)
}

type CouponService struct {
	store CouponStore
	cache CouponCache
	now   func() time.Time
}

func NewCouponService(store CouponStore, cache CouponCache) *CouponService {
	return &CouponService{
		store: store,
		cache: cache,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Preview evaluates a coupon against a price without consuming a usage
// slot. Repeated calls never change catalog state, so the checkout UI is
// free to call this on every input change.
func (s *CouponService) Preview(ctx context.Context, code string, basePrice decimal.Decimal, packageID string) (models.CouponResult, error) {
	canonical := models.NormalizeCode(code)

	coupon, ok := s.cache.Get(ctx, canonical)
	if !ok {
		var err error
		coupon, err = s.store.GetByCode(ctx, canonical)
		if errors.Is(err, models.ErrCouponNotFound) {
			return models.CouponResult{Discount: decimal.Zero, FinalPrice: basePrice, Reason: ReasonCouponNotFound}, nil
		}
		if err != nil {
			return models.CouponResult{}, fmt.Errorf("get coupon: %w", err)
		}
		s.cache.Set(ctx, coupon)
	}

	return Evaluate(coupon, basePrice, packageID, s.now()), nil
}

// RedeemInTx validates the coupon and consumes one usage slot inside the
// caller's transaction. The row is locked for the duration, so two
// concurrent checkouts cannot both take the last slot. The caller must
// call Forget after a successful commit.
func (s *CouponService) RedeemInTx(ctx context.Context, tx *sql.Tx, code string, basePrice decimal.Decimal, packageID string) (models.CouponResult, error) {
	coupon, err := s.store.GetAndLock(ctx, tx, code)
	if errors.Is(err, models.ErrCouponNotFound) {
		return models.CouponResult{Discount: decimal.Zero, FinalPrice: basePrice, Reason: ReasonCouponNotFound}, nil
	}
	if err != nil {
		return models.CouponResult{}, fmt.Errorf("lock coupon: %w", err)
	}

	result := Evaluate(coupon, basePrice, packageID, s.now())
	if !result.Valid {
		return result, nil
	}

	if err := s.store.IncrementUsage(ctx, tx, coupon.ID); err != nil {
		return models.CouponResult{}, fmt.Errorf("increment usage: %w", err)
	}
	return result, nil
}

// Forget drops a coupon from the read cache after its state changed.
func (s *CouponService) Forget(ctx context.Context, code string) {
	s.cache.Invalidate(ctx, models.NormalizeCode(code))
}

// ListActive returns the coupons currently worth showing to buyers.
func (s *CouponService) ListActive(ctx context.Context) ([]*models.Coupon, error) {
	coupons, err := s.store.ListActive(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("list active coupons: %w", err)
	}
	return coupons, nil
}

// CreateCoupon validates and stores a new catalog entry. The code is
// stored in its canonical form, matching how lookups normalize it.
func (s *CouponService) CreateCoupon(ctx context.Context, c *models.Coupon) error {
	c.Code = models.NormalizeCode(c.Code)
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrCouponInvalid, err)
	}
	if err := s.store.Create(ctx, c); err != nil {
		return err
	}
	// A code can be re-created after deletion; don't serve the stale entry.
	s.cache.Invalidate(ctx, c.Code)
	return nil
}
