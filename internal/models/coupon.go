package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DiscountType selects how a coupon's value is applied to a price.
type DiscountType string

const (
	// DiscountPercentage takes discount_value percent off the base price.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed takes a fixed amount off, capped at the base price.
	DiscountFixed DiscountType = "fixed"
)

// Coupon is a catalog entry. Codes are stored uppercase and matched
// case-insensitively; UsedCount is owned by the database and only ever
// incremented inside a redemption transaction.
type Coupon struct {
	ID                 int64            `json:"id"`
	Code               string           `json:"code"`
	Description        string           `json:"description"`
	DiscountType       DiscountType     `json:"discount_type"`
	DiscountValue      decimal.Decimal  `json:"discount_value"`
	IsActive           bool             `json:"is_active"`
	ExpiresAt          *time.Time       `json:"expires_at,omitempty"`
	UsageLimit         *int             `json:"usage_limit,omitempty"`
	UsedCount          int              `json:"used_count"`
	MinPurchaseAmount  *decimal.Decimal `json:"min_purchase_amount,omitempty"`
	ApplicablePackages []string         `json:"applicable_packages,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// CouponResult is the outcome of evaluating a coupon against a price.
// FinalPrice always equals max($0.01, base price - Discount); for an
// invalid result the discount is zero and FinalPrice is the base price.
type CouponResult struct {
	Valid      bool            `json:"is_valid"`
	Discount   decimal.Decimal `json:"discount"`
	FinalPrice decimal.Decimal `json:"final_price"`
	Reason     string          `json:"reason,omitempty"`
	Coupon     *Coupon         `json:"-"`
}

// NormalizeCode canonicalizes a user-supplied coupon code for lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// AppliesTo reports whether the coupon may be used with the given
// package. A coupon without package restrictions applies to everything.
func (c *Coupon) AppliesTo(packageID string) bool {
	if len(c.ApplicablePackages) == 0 {
		return true
	}
	for _, id := range c.ApplicablePackages {
		if id == packageID {
			return true
		}
	}
	return false
}

// DisplayDiscount renders the discount for listings, e.g. "25% OFF" or
// "$10 OFF".
func (c *Coupon) DisplayDiscount() string {
	if c.DiscountType == DiscountPercentage {
		return c.DiscountValue.String() + "% OFF"
	}
	return "$" + c.DiscountValue.String() + " OFF"
}

var oneHundred = decimal.NewFromInt(100)

// Validate checks a coupon before it enters the catalog. A malformed
// catalog entry is an operator error, so this returns error rather than
// a result value.
func (c *Coupon) Validate() error {
	if NormalizeCode(c.Code) == "" {
		return errors.New("code is required")
	}
	if c.DiscountType != DiscountPercentage && c.DiscountType != DiscountFixed {
		return errors.New("discount_type must be percentage or fixed")
	}
	if !c.DiscountValue.IsPositive() {
		return errors.New("discount_value must be positive")
	}
	if c.DiscountType == DiscountPercentage && c.DiscountValue.GreaterThan(oneHundred) {
		return errors.New("percentage discount cannot exceed 100")
	}
	if c.UsageLimit != nil && *c.UsageLimit <= 0 {
		return errors.New("usage_limit must be positive when set")
	}
	if c.MinPurchaseAmount != nil && !c.MinPurchaseAmount.IsPositive() {
		return errors.New("min_purchase_amount must be positive when set")
	}
	return nil
}
