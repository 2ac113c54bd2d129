package domain

import "math"

// Money is held in integer paise everywhere inside the service, so the
// gateway's minor-unit amounts need no conversion. Rupee amounts cross the
// boundary only at the API layer.

// PaiseFromRupees converts a rupee amount to paise with half-up rounding.
func PaiseFromRupees(rupees float64) int64 {
	return int64(math.Floor(rupees*100 + 0.5))
}

// Rupees renders a paise amount as rupees for responses.
func Rupees(paise int64) float64 {
	return float64(paise) / 100
}
