package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fundspark/checkout-service/internal/models"
)

// CouponValidator is the slice of the coupon service the handler needs.
type CouponValidator interface {
	Preview(ctx context.Context, code string, basePrice decimal.Decimal, packageID string) (models.CouponResult, error)
	ListActive(ctx context.Context) ([]*models.Coupon, error)
	CreateCoupon(ctx context.Context, c *models.Coupon) error
}

type CouponHandler struct {
	coupons CouponValidator
}

func NewCouponHandler(coupons CouponValidator) *CouponHandler {
	return &CouponHandler{coupons: coupons}
}

// --- Request / Response DTOs ---

type validateCouponRequest struct {
	CouponCode string          `json:"coupon_code"`
	BasePrice  decimal.Decimal `json:"base_price"`
	PackageID  string          `json:"package_id"`
}

type activeCouponEntry struct {
	Code        string     `json:"code"`
	Description string     `json:"description"`
	Display     string     `json:"display"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	MinPurchase *string    `json:"min_purchase_amount,omitempty"`
	Packages    []string   `json:"applicable_packages,omitempty"`
}

type createCouponRequest struct {
	Code               string   `json:"code"`
	Description        string   `json:"description"`
	DiscountType       string   `json:"discount_type"`
	DiscountValue      string   `json:"discount_value"`
	IsActive           *bool    `json:"is_active,omitempty"`
	ExpiresAt          string   `json:"expires_at,omitempty"` // RFC3339
	UsageLimit         *int     `json:"usage_limit,omitempty"`
	MinPurchaseAmount  string   `json:"min_purchase_amount,omitempty"`
	ApplicablePackages []string `json:"applicable_packages,omitempty"`
}

// Validate handles POST /coupons/validate. It only previews: the usage
// counter moves during checkout, never here.
func (h *CouponHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if req.CouponCode == "" {
		writeError(w, http.StatusBadRequest, "coupon_code is required")
		return
	}
	if !req.BasePrice.IsPositive() {
		writeError(w, http.StatusBadRequest, "base_price must be positive")
		return
	}

	result, err := h.coupons.Preview(r.Context(), req.CouponCode, req.BasePrice, req.PackageID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Active handles GET /coupons/active.
func (h *CouponHandler) Active(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.ListActive(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	entries := make([]activeCouponEntry, 0, len(coupons))
	for _, c := range coupons {
		entry := activeCouponEntry{
			Code:        c.Code,
			Description: c.Description,
			Display:     c.DisplayDiscount(),
			ExpiresAt:   c.ExpiresAt,
			Packages:    c.ApplicablePackages,
		}
		if c.MinPurchaseAmount != nil {
			s := c.MinPurchaseAmount.String()
			entry.MinPurchase = &s
		}
		entries = append(entries, entry)
	}
	writeJSON(w, http.StatusOK, map[string]any{"coupons": entries})
}

// Create handles POST /admin/coupons.
func (h *CouponHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	coupon, err := req.toModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch err := h.coupons.CreateCoupon(r.Context(), coupon); {
	case errors.Is(err, models.ErrCouponInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrCouponExists):
		writeError(w, http.StatusConflict, "coupon code already exists")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error")
	default:
		writeJSON(w, http.StatusCreated, coupon)
	}
}

func (r *createCouponRequest) toModel() (*models.Coupon, error) {
	value, err := decimal.NewFromString(r.DiscountValue)
	if err != nil {
		return nil, errors.New("invalid discount_value")
	}

	c := &models.Coupon{
		Code:               r.Code,
		Description:        r.Description,
		DiscountType:       models.DiscountType(r.DiscountType),
		DiscountValue:      value,
		IsActive:           true,
		UsageLimit:         r.UsageLimit,
		ApplicablePackages: r.ApplicablePackages,
	}
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
	if r.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, r.ExpiresAt)
		if err != nil {
			return nil, errors.New("invalid expires_at; use RFC3339")
		}
		c.ExpiresAt = &t
	}
	if r.MinPurchaseAmount != "" {
		min, err := decimal.NewFromString(r.MinPurchaseAmount)
		if err != nil {
			return nil, errors.New("invalid min_purchase_amount")
		}
		c.MinPurchaseAmount = &min
	}
	return c, nil
}
