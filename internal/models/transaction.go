package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction statuses.
const (
	TransactionCompleted = "completed"
)

// Transaction records one checkout pre-check outcome. Only the card's
// trailing four digits and network are kept; the full number never
// reaches storage.
type Transaction struct {
	ID             string          `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	Discount       decimal.Decimal `json:"discount"`
	Status         string          `json:"status"`
	CardLast4      string          `json:"card_last4"`
	CardNetwork    string          `json:"card_network"`
	PackageID      string          `json:"package_id"`
	CouponCode     *string         `json:"coupon_code,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
