package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

// Booking reserves one villa for one user over the half-open interval
// [CheckIn, CheckOut). TotalPricePaise is frozen at creation time.
type Booking struct {
	ID              int64
	UserID          int64
	VillaID         int64
	CheckIn         time.Time
	CheckOut        time.Time
	TotalPricePaise int64
	Status          BookingStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Nights returns the stay length in whole days.
func (b *Booking) Nights() int {
	return Nights(b.CheckIn, b.CheckOut)
}

// Active reports whether the booking blocks other bookings on its villa.
func (b *Booking) Active() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}
