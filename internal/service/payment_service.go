package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundspark/checkout-service/internal/card"
	"github.com/fundspark/checkout-service/internal/models"
)

// Checkout failure reasons beyond the coupon and card ones.
const (
	ReasonPackageNotFound = "package_not_found"
	ReasonOverDailyLimit  = "amount_exceeds_daily_limit"
)

// dailyChargeLimit refuses single charges over $10,000; the issuing bank
// would decline them anyway.
var dailyChargeLimit = decimal.NewFromInt(10000)

// txnIDPrefix marks transactions produced by the real-time validation
// flow.
const txnIDPrefix = "rtv_"

type PackageStore interface {
	GetByID(ctx context.Context, id string) (*models.CreditPackage, error)
	List(ctx context.Context) ([]*models.CreditPackage, error)
}

type TransactionStore interface {
	Insert(ctx context.Context, tx *sql.Tx, t *models.Transaction) error
	GetByID(ctx context.Context, id string) (*models.Transaction, error)
}

// CheckoutRequest is one purchase attempt: a card, a package, optionally
// a coupon code.
type CheckoutRequest struct {
	Card       card.Input
	PackageID  string
	CouponCode string
}

// CheckoutResult separates expected rejections (bad card, ineligible
// coupon) from infrastructure errors, which travel on the error return.
type CheckoutResult struct {
	Success     bool
	Reason      string
	CardReport  *card.Report
	Transaction *models.Transaction
}

// PaymentService runs the server-side checkout pre-check: card
// validation, authoritative coupon redemption and the transaction
// record, committed as one database transaction. No money moves here;
// capture against a gateway is a separate concern upstream.
type PaymentService struct {
	db       *sql.DB
	packages PackageStore
	coupons  *CouponService
	txns     TransactionStore
	now      func() time.Time
}

func NewPaymentService(db *sql.DB, packages PackageStore, coupons *CouponService, txns TransactionStore) *PaymentService {
	return &PaymentService{
		db:       db,
		packages: packages,
		coupons:  coupons,
		txns:     txns,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Process validates the whole checkout and records the outcome. The
// package price is read server side; the client never supplies the
// amount. Card failures and coupon failures come back as an unsuccessful
// result, not an error.
func (s *PaymentService) Process(ctx context.Context, req CheckoutRequest) (CheckoutResult, error) {
	pkg, err := s.packages.GetByID(ctx, req.PackageID)
	if errors.Is(err, models.ErrPackageNotFound) {
		return CheckoutResult{Reason: ReasonPackageNotFound}, nil
	}
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("get package: %w", err)
	}

	report := card.Validate(req.Card, s.now())
	if !report.Valid() {
		return CheckoutResult{Reason: report.FirstReason(), CardReport: &report}, nil
	}

	result, err := s.checkout(ctx, pkg, report, req)
	if err != nil {
		return CheckoutResult{}, err
	}
	if result.Success && req.CouponCode != "" {
		s.coupons.Forget(ctx, req.CouponCode)
	}
	return result, nil
}

// checkout holds the transactional tail of Process: coupon redemption,
// the charge-limit check on the discounted amount, and the transaction
// record. Everything commits or nothing does.
func (s *PaymentService) checkout(ctx context.Context, pkg *models.CreditPackage, report card.Report, req CheckoutRequest) (CheckoutResult, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	basePrice := pkg.Price
	discount := decimal.Zero
	chargeAmount := basePrice
	var couponCode *string

	if req.CouponCode != "" {
		res, err := s.coupons.RedeemInTx(ctx, tx, req.CouponCode, basePrice, pkg.ID)
		if err != nil {
			return CheckoutResult{}, err
		}
		if !res.Valid {
			return CheckoutResult{Reason: res.Reason}, nil
		}
		discount = res.Discount
		chargeAmount = res.FinalPrice
		code := models.NormalizeCode(req.CouponCode)
		couponCode = &code
	}

	if chargeAmount.GreaterThan(dailyChargeLimit) {
		return CheckoutResult{Reason: ReasonOverDailyLimit}, nil
	}

	txn := &models.Transaction{
		ID:             txnIDPrefix + uuid.NewString(),
		Amount:         chargeAmount,
		OriginalAmount: basePrice,
		Discount:       discount,
		Status:         models.TransactionCompleted,
		CardLast4:      card.LastFour(req.Card.Number),
		CardNetwork:    string(report.Number.Network),
		PackageID:      pkg.ID,
		CouponCode:     couponCode,
		CreatedAt:      s.now(),
	}
	if err := s.txns.Insert(ctx, tx, txn); err != nil {
		return CheckoutResult{}, fmt.Errorf("insert transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return CheckoutResult{}, fmt.Errorf("commit checkout: %w", err)
	}
	committed = true

	return CheckoutResult{Success: true, Transaction: txn}, nil
}

// GetTransaction looks up a recorded checkout by id. Returns
// models.ErrTransactionNotFound for unknown ids.
func (s *PaymentService) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return s.txns.GetByID(ctx, id)
}

// ListPackages exposes the purchasable catalog.
func (s *PaymentService) ListPackages(ctx context.Context) ([]*models.CreditPackage, error) {
	packages, err := s.packages.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	return packages, nil
}
