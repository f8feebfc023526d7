package card

import "time"

// Input is one checkout attempt's card data. It is created fresh per
// attempt and never persisted; only the trailing four digits survive into
// the transaction record.
type Input struct {
	Number         string
	CardholderName string
	ExpiryMonth    int
	ExpiryYear     int
	CVV            string
	ZIP            string
}

// Report carries the per-field outcome of a full card validation.
type Report struct {
	Number NumberResult `json:"number"`
	Expiry Check        `json:"expiry"`
	CVV    Check        `json:"cvv"`
	ZIP    Check        `json:"zip"`
}

// Valid reports whether every field passed.
func (r Report) Valid() bool {
	return r.Number.Valid && r.Expiry.Valid && r.CVV.Valid && r.ZIP.Valid
}

// FirstReason returns the reason of the first failing field, or the empty
// string when the report is fully valid. Field order matches the checkout
// form: number, expiry, CVV, ZIP.
func (r Report) FirstReason() string {
	switch {
	case !r.Number.Valid:
		return r.Number.Reason
	case !r.Expiry.Valid:
		return r.Expiry.Reason
	case !r.CVV.Valid:
		return r.CVV.Reason
	case !r.ZIP.Valid:
		return r.ZIP.Reason
	}
	return ""
}

// Validate runs every field validator against one card. The CVV rule
// depends on the detected network, so the number is validated first. The
// ZIP is only checked when present; not every billing form collects it.
func Validate(in Input, now time.Time) Report {
	number := ValidateNumber(in.Number)
	r := Report{
		Number: number,
		Expiry: ValidateExpiry(in.ExpiryMonth, in.ExpiryYear, now),
		CVV:    ValidateCVV(in.CVV, number.Network),
		ZIP:    Check{Valid: true},
	}
	if in.ZIP != "" {
		r.ZIP = ValidateZIP(in.ZIP)
	}
	return r
}
