package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fundspark/checkout-service/internal/models"
)

type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

// Insert writes the transaction record inside the caller's checkout
// transaction, so it commits together with the coupon usage increment.
func (r *TransactionRepo) Insert(ctx context.Context, tx *sql.Tx, t *models.Transaction) error {
	query := `INSERT INTO transactions
		(id, amount, original_amount, discount, status, card_last4, card_network, package_id, coupon_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var couponCode any
	if t.CouponCode != nil {
		couponCode = *t.CouponCode
	}
	_, err := tx.ExecContext(ctx, query,
		t.ID,
		t.Amount,
		t.OriginalAmount,
		t.Discount,
		t.Status,
		t.CardLast4,
		t.CardNetwork,
		t.PackageID,
		couponCode,
		t.CreatedAt,
	)
	return err
}

// GetByID returns models.ErrTransactionNotFound for unknown ids.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	query := `SELECT id, amount, original_amount, discount, status, card_last4, card_network, package_id, coupon_code, created_at
		FROM transactions WHERE id = $1`

	var t models.Transaction
	var couponCode sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.Amount,
		&t.OriginalAmount,
		&t.Discount,
		&t.Status,
		&t.CardLast4,
		&t.CardNetwork,
		&t.PackageID,
		&couponCode,
		&t.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	if couponCode.Valid {
		s := couponCode.String
		t.CouponCode = &s
	}
	return &t, nil
}
