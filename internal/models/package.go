package models

import "github.com/shopspring/decimal"

// CreditPackage is a purchasable bundle of proposal credits. Packages are
// seeded by migration and referenced by coupons' package restrictions.
type CreditPackage struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Credits      int             `json:"credits"`
	BonusCredits int             `json:"bonus_credits"`
	Price        decimal.Decimal `json:"price"`
}

// TotalCredits is what the buyer actually receives.
func (p *CreditPackage) TotalCredits() int {
	return p.Credits + p.BonusCredits
}
