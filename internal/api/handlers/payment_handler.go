package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fundspark/checkout-service/internal/card"
	"github.com/fundspark/checkout-service/internal/models"
	"github.com/fundspark/checkout-service/internal/service"
)

// CheckoutProcessor is the slice of the payment service the handler
// needs.
type CheckoutProcessor interface {
	Process(ctx context.Context, req service.CheckoutRequest) (service.CheckoutResult, error)
	ListPackages(ctx context.Context) ([]*models.CreditPackage, error)
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)
}

type PaymentHandler struct {
	payments CheckoutProcessor
}

func NewPaymentHandler(payments CheckoutProcessor) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type cardData struct {
	CardNumber     string `json:"card_number"`
	CardholderName string `json:"cardholder_name"`
	ExpiryMonth    int    `json:"expiry_month"`
	ExpiryYear     int    `json:"expiry_year"`
	CVV            string `json:"cvv"`
	ZIP            string `json:"zip,omitempty"`
}

type processPaymentRequest struct {
	Card       cardData `json:"card"`
	PackageID  string   `json:"package_id"`
	CouponCode string   `json:"coupon_code,omitempty"`
}

func (r *processPaymentRequest) complete() bool {
	return r.Card.CardNumber != "" &&
		r.Card.CardholderName != "" &&
		r.Card.ExpiryMonth != 0 &&
		r.Card.ExpiryYear != 0 &&
		r.Card.CVV != "" &&
		r.PackageID != ""
}

// Process handles POST /payments/process. Expected validation failures
// come back as 400 with the failing reason; only infrastructure faults
// produce a 500.
func (h *PaymentHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req processPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}
	if !req.complete() {
		writeError(w, http.StatusBadRequest, "missing required payment information")
		return
	}

	result, err := h.payments.Process(r.Context(), service.CheckoutRequest{
		Card: card.Input{
			Number:         req.Card.CardNumber,
			CardholderName: req.Card.CardholderName,
			ExpiryMonth:    req.Card.ExpiryMonth,
			ExpiryYear:     req.Card.ExpiryYear,
			CVV:            req.Card.CVV,
			ZIP:            req.Card.ZIP,
		},
		PackageID:  req.PackageID,
		CouponCode: req.CouponCode,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	if !result.Success {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success":           false,
			"error":             result.Reason,
			"validation_failed": true,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"transaction": result.Transaction,
	})
}

// Transaction handles GET /admin/transactions/{id}.
func (h *PaymentHandler) Transaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	txn, err := h.payments.GetTransaction(r.Context(), id)
	if errors.Is(err, models.ErrTransactionNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

// Packages handles GET /packages.
func (h *PaymentHandler) Packages(w http.ResponseWriter, r *http.Request) {
	packages, err := h.payments.ListPackages(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"packages": packages})
}
