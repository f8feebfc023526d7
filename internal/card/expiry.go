package card

import "time"

// maxYearsAhead caps how far in the future an expiry year may lie. Cards
// are not issued with longer validity, so anything beyond it is a typo.
const maxYearsAhead = 20

// ValidateExpiry checks an expiry month and year against the supplied
// current time. A card expires at the end of its expiry month, so the
// current month is still valid.
func ValidateExpiry(month, year int, now time.Time) Check {
	if month < 1 || month > 12 {
		return Check{Reason: "invalid month"}
	}
	currentYear, currentMonth := now.Year(), int(now.Month())
	if year < currentYear || (year == currentYear && month < currentMonth) {
		return Check{Reason: "card is expired"}
	}
	if year > currentYear+maxYearsAhead {
		return Check{Reason: "invalid expiry year"}
	}
	return Check{Valid: true}
}
