package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fundspark/checkout-service/internal/models"
)

type PackageRepo struct {
	db *sql.DB
}

func NewPackageRepo(db *sql.DB) *PackageRepo {
	return &PackageRepo{db: db}
}

// GetByID returns models.ErrPackageNotFound for unknown package ids.
func (r *PackageRepo) GetByID(ctx context.Context, id string) (*models.CreditPackage, error) {
	query := `SELECT id, name, credits, bonus_credits, price FROM credit_packages WHERE id = $1`

	var p models.CreditPackage
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Credits, &p.BonusCredits, &p.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrPackageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all packages ordered by price.
func (r *PackageRepo) List(ctx context.Context) ([]*models.CreditPackage, error) {
	query := `SELECT id, name, credits, bonus_credits, price FROM credit_packages ORDER BY price`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packages []*models.CreditPackage
	for rows.Next() {
		var p models.CreditPackage
		if err := rows.Scan(&p.ID, &p.Name, &p.Credits, &p.BonusCredits, &p.Price); err != nil {
			return nil, err
		}
		packages = append(packages, &p)
	}
	return packages, rows.Err()
}
