// Package card implements structural validation of payment card input:
// number checksum and length rules, network detection from numeric
// prefixes, expiry and CVV checks, and display formatting. Everything in
// this package is a pure function of its arguments, so callers may
// revalidate on every keystroke.
package card

import "strings"

// Network identifies a card network detected from the number prefix.
type Network string

const (
	Visa       Network = "visa"
	Mastercard Network = "mastercard"
	Amex       Network = "amex"
	Discover   Network = "discover"
	Diners     Network = "diners"
	JCB        Network = "jcb"
	Unknown    Network = "unknown"
)

// NumberResult is the outcome of validating a card number. The network is
// detected independently of the checksum, so it is populated even when
// Valid is false.
type NumberResult struct {
	Valid   bool    `json:"is_valid"`
	Network Network `json:"network"`
	Reason  string  `json:"reason,omitempty"`
}

// Check is the outcome of a single field validation.
type Check struct {
	Valid  bool   `json:"is_valid"`
	Reason string `json:"reason,omitempty"`
}

const (
	minNumberLength = 13
	maxNumberLength = 19
)

// Sandbox numbers from payment processor docs. Both pass the Luhn
// checksum, so they have to be refused explicitly.
var testNumbers = map[string]struct{}{
	"4111111111111111": {},
	"4242424242424242": {},
}

// Normalize strips everything that is not a decimal digit.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}

// prefixInRange reports whether the first width digits of number form an
// integer in [lo, hi]. Numbers shorter than width never match.
func prefixInRange(number string, width, lo, hi int) bool {
	if len(number) < width {
		return false
	}
	n := 0
	for i := 0; i < width; i++ {
		n = n*10 + int(number[i]-'0')
	}
	return n >= lo && n <= hi
}

// DetectNetwork classifies a card number by its numeric prefix. The input
// may carry formatting. Detection does not depend on the checksum.
func DetectNetwork(raw string) Network {
	digits := Normalize(raw)
	switch {
	case strings.HasPrefix(digits, "4"):
		return Visa
	case prefixInRange(digits, 2, 51, 55), prefixInRange(digits, 2, 22, 27):
		return Mastercard
	case strings.HasPrefix(digits, "34"), strings.HasPrefix(digits, "37"):
		return Amex
	case strings.HasPrefix(digits, "6011"),
		prefixInRange(digits, 6, 622126, 622925),
		prefixInRange(digits, 3, 644, 649),
		strings.HasPrefix(digits, "65"):
		return Discover
	case prefixInRange(digits, 3, 300, 305),
		strings.HasPrefix(digits, "36"),
		strings.HasPrefix(digits, "38"):
		return Diners
	case strings.HasPrefix(digits, "35"):
		return JCB
	default:
		return Unknown
	}
}

// luhnValid implements the Luhn checksum: walking right to left, every
// second digit is doubled, subtracting 9 when the doubled digit exceeds
// 9; the number passes when the digit sum is divisible by 10.
func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidateNumber checks the structural validity of a card number. The
// input may contain spaces or other formatting; everything that is not a
// digit is stripped first. Exact lengths are enforced where the network
// pins them down: Amex numbers carry 15 digits, Visa, Mastercard and
// Discover 16; other networks are accepted anywhere between 13 and 19.
func ValidateNumber(raw string) NumberResult {
	digits := Normalize(raw)
	network := DetectNetwork(digits)

	if len(digits) < minNumberLength || len(digits) > maxNumberLength {
		return NumberResult{Network: network, Reason: "card number must be 13-19 digits"}
	}
	switch network {
	case Amex:
		if len(digits) != 15 {
			return NumberResult{Network: network, Reason: "American Express numbers carry 15 digits"}
		}
	case Visa, Mastercard, Discover:
		if len(digits) != 16 {
			return NumberResult{Network: network, Reason: "card number must be 16 digits"}
		}
	}
	if _, ok := testNumbers[digits]; ok {
		return NumberResult{Network: network, Reason: "test card numbers are not accepted"}
	}
	if !luhnValid(digits) {
		return NumberResult{Network: network, Reason: "invalid card number"}
	}
	return NumberResult{Valid: true, Network: network}
}

// ValidateCVV checks the security code for the given network. American
// Express uses 4 digits, every other network 3. The CVV is not checksum
// protected, so length is all there is to verify.
func ValidateCVV(cvv string, network Network) Check {
	digits := Normalize(cvv)
	if network == Amex {
		if len(digits) != 4 {
			return Check{Reason: "American Express requires a 4-digit CVV"}
		}
		return Check{Valid: true}
	}
	if len(digits) != 3 {
		return Check{Reason: "CVV must be 3 digits"}
	}
	return Check{Valid: true}
}

// ValidateZIP accepts five-digit US postal codes.
func ValidateZIP(zip string) Check {
	if len(Normalize(zip)) != 5 {
		return Check{Reason: "ZIP code must be 5 digits"}
	}
	return Check{Valid: true}
}

// FormatNumber groups the digits of a card number into blocks of four
// separated by single spaces, for display only. Formatting already
// present in the input is discarded first, so the function is idempotent.
// Input beyond 19 digits is truncated.
func FormatNumber(raw string) string {
	digits := Normalize(raw)
	if len(digits) > maxNumberLength {
		digits = digits[:maxNumberLength]
	}
	var b strings.Builder
	for i := 0; i < len(digits); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := i + 4
		if end > len(digits) {
			end = len(digits)
		}
		b.WriteString(digits[i:end])
	}
	return b.String()
}

// LastFour returns the trailing four digits for receipts and transaction
// records. Shorter inputs are returned as is.
func LastFour(raw string) string {
	digits := Normalize(raw)
	if len(digits) < 4 {
		return digits
	}
	return digits[len(digits)-4:]
}
