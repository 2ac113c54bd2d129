package domain

import "time"

// Nights returns checkOut − checkIn in whole days. Intervals are half-open,
// so a same-day handover ([D1,D3) then [D3,D5)) does not overlap.
func Nights(checkIn, checkOut time.Time) int {
	return int(Date(checkOut).Sub(Date(checkIn)) / (24 * time.Hour))
}

// TotalPricePaise computes nights × nightly rate. Never re-evaluated after
// booking creation.
func TotalPricePaise(pricePerNightPaise int64, checkIn, checkOut time.Time) int64 {
	return int64(Nights(checkIn, checkOut)) * pricePerNightPaise
}

// Overlaps reports whether two half-open date intervals intersect.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && aOut.After(bIn)
}
