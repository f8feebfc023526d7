package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fundspark/checkout-service/internal/models"
	"github.com/fundspark/checkout-service/internal/service"
)

type stubPaymentService struct {
	result service.CheckoutResult
	got    *service.CheckoutRequest
}

func (s *stubPaymentService) Process(_ context.Context, req service.CheckoutRequest) (service.CheckoutResult, error) {
	s.got = &req
	return s.result, nil
}

func (s *stubPaymentService) ListPackages(_ context.Context) ([]*models.CreditPackage, error) {
	return []*models.CreditPackage{
		{ID: "starter", Name: "Starter", Credits: 100, Price: decimal.NewFromInt(10)},
	}, nil
}

func (s *stubPaymentService) GetTransaction(_ context.Context, id string) (*models.Transaction, error) {
	if s.result.Transaction != nil && s.result.Transaction.ID == id {
		return s.result.Transaction, nil
	}
	return nil, models.ErrTransactionNotFound
}

const completeBody = `{
	"card": {
		"card_number": "4012 8888 8888 1881",
		"cardholder_name": "Amina Okello",
		"expiry_month": 9,
		"expiry_year": 2030,
		"cvv": "123"
	},
	"package_id": "starter",
	"coupon_code": "SAVE20"
}`

func TestPaymentHandler_Process(t *testing.T) {
	code := "SAVE20"
	stub := &stubPaymentService{
		result: service.CheckoutResult{
			Success: true,
			Transaction: &models.Transaction{
				ID:             "rtv_test",
				Amount:         decimal.NewFromInt(8),
				OriginalAmount: decimal.NewFromInt(10),
				Discount:       decimal.NewFromInt(2),
				Status:         models.TransactionCompleted,
				CardLast4:      "1881",
				CardNetwork:    "visa",
				PackageID:      "starter",
				CouponCode:     &code,
			},
		},
	}
	h := NewPaymentHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/payments/process", strings.NewReader(completeBody))
	rec := httptest.NewRecorder()

	h.Process(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if stub.got == nil {
		t.Fatal("service never called")
	}
	if stub.got.CouponCode != "SAVE20" || stub.got.PackageID != "starter" {
		t.Errorf("service called with coupon %q package %q", stub.got.CouponCode, stub.got.PackageID)
	}

	var resp struct {
		Success     bool `json:"success"`
		Transaction struct {
			ID        string `json:"id"`
			CardLast4 string `json:"card_last4"`
		} `json:"transaction"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("success = false")
	}
	if resp.Transaction.CardLast4 != "1881" {
		t.Errorf("card_last4 = %q", resp.Transaction.CardLast4)
	}
}

func TestPaymentHandler_ProcessRejection(t *testing.T) {
	stub := &stubPaymentService{
		result: service.CheckoutResult{Reason: service.ReasonUsageLimitReached},
	}
	h := NewPaymentHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/payments/process", strings.NewReader(completeBody))
	rec := httptest.NewRecorder()

	h.Process(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp struct {
		Success          bool   `json:"success"`
		Error            string `json:"error"`
		ValidationFailed bool   `json:"validation_failed"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success || !resp.ValidationFailed {
		t.Error("rejection flags wrong")
	}
	if resp.Error != service.ReasonUsageLimitReached {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestPaymentHandler_Transaction(t *testing.T) {
	stub := &stubPaymentService{
		result: service.CheckoutResult{
			Transaction: &models.Transaction{
				ID:        "rtv_known",
				Amount:    decimal.NewFromInt(10),
				Status:    models.TransactionCompleted,
				CardLast4: "1881",
				PackageID: "starter",
			},
		},
	}
	h := NewPaymentHandler(stub)

	r := chi.NewRouter()
	r.Get("/admin/transactions/{id}", h.Transaction)

	req := httptest.NewRequest(http.MethodGet, "/admin/transactions/rtv_known", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var txn models.Transaction
	if err := json.NewDecoder(rec.Body).Decode(&txn); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if txn.ID != "rtv_known" || txn.CardLast4 != "1881" {
		t.Errorf("transaction = %+v", txn)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/transactions/rtv_missing", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestPaymentHandler_ProcessIncompleteRequest(t *testing.T) {
	stub := &stubPaymentService{}
	h := NewPaymentHandler(stub)

	body := `{"card":{"card_number":"4012888888881881"},"package_id":"starter"}`
	req := httptest.NewRequest(http.MethodPost, "/payments/process", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Process(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if stub.got != nil {
		t.Error("incomplete request reached the service")
	}
}
