package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fundspark/checkout-service/internal/card"
)

// CardHandler serves the real-time card validation endpoint. It is
// stateless: every request is a pure function of the submitted fields.
type CardHandler struct{}

func NewCardHandler() *CardHandler {
	return &CardHandler{}
}

type cardValidateRequest struct {
	CardNumber  string `json:"card_number"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	CVV         string `json:"cvv"`
	ZIP         string `json:"zip,omitempty"`
}

type cardValidateResponse struct {
	IsValid   bool   `json:"is_valid"`
	Formatted string `json:"formatted_number"`
	card.Report
}

// Validate handles POST /cards/validate. Clients call it on every input
// change; nothing is stored or logged.
func (h *CardHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req cardValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	report := card.Validate(card.Input{
		Number:      req.CardNumber,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		CVV:         req.CVV,
		ZIP:         req.ZIP,
	}, time.Now().UTC())

	writeJSON(w, http.StatusOK, cardValidateResponse{
		IsValid:   report.Valid(),
		Formatted: card.FormatNumber(req.CardNumber),
		Report:    report,
	})
}
