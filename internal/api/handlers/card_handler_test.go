package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCardHandler_Validate(t *testing.T) {
	h := NewCardHandler()

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantValid   bool
		wantNetwork string
	}{
		{
			name:        "valid visa",
			body:        `{"card_number":"4012 8888 8888 1881","expiry_month":9,"expiry_year":2030,"cvv":"123"}`,
			wantStatus:  http.StatusOK,
			wantValid:   true,
			wantNetwork: "visa",
		},
		{
			name:        "checksum failure",
			body:        `{"card_number":"4242424242424241","expiry_month":9,"expiry_year":2030,"cvv":"123"}`,
			wantStatus:  http.StatusOK,
			wantValid:   false,
			wantNetwork: "visa",
		},
		{
			name:        "amex needs a 4-digit cvv",
			body:        `{"card_number":"340000000000009","expiry_month":9,"expiry_year":2030,"cvv":"123"}`,
			wantStatus:  http.StatusOK,
			wantValid:   false,
			wantNetwork: "amex",
		},
		{
			name:       "malformed body",
			body:       `{"card_number":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/cards/validate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			h.Validate(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp struct {
				IsValid bool `json:"is_valid"`
				Number  struct {
					Network string `json:"network"`
				} `json:"number"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.IsValid != tt.wantValid {
				t.Errorf("is_valid = %v, want %v", resp.IsValid, tt.wantValid)
			}
			if resp.Number.Network != tt.wantNetwork {
				t.Errorf("network = %q, want %q", resp.Number.Network, tt.wantNetwork)
			}
		})
	}
}

func TestCardHandler_ValidateFormatsNumber(t *testing.T) {
	h := NewCardHandler()

	body := `{"card_number":"4012888888881881","expiry_month":9,"expiry_year":2030,"cvv":"123"}`
	req := httptest.NewRequest(http.MethodPost, "/cards/validate", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Validate(rec, req)

	var resp struct {
		Formatted string `json:"formatted_number"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Formatted != "4012 8888 8888 1881" {
		t.Errorf("formatted_number = %q", resp.Formatted)
	}
}
