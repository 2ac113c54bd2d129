package kafka

import "time"

// BookingEvent is published on every booking state change and fanned out to
// the notifications topic for the email worker.
type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  int64     `json:"booking_id"`
	UserID     int64     `json:"user_id"`
	VillaID    int64     `json:"villa_id"`
	CheckIn    time.Time `json:"check_in"`
	CheckOut   time.Time `json:"check_out"`
	TotalPaise int64     `json:"total_paise"`
	Status     string    `json:"status"`
}

// PaymentEvent is published on capture and refund.
type PaymentEvent struct {
	Type        string `json:"type"`
	PaymentID   int64  `json:"payment_id"`
	BookingID   int64  `json:"booking_id"`
	AmountPaise int64  `json:"amount_paise"`
	Status      string `json:"status"`
	Reference   string `json:"reference"`
}

const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
	EventBookingCompleted = "booking_completed"
	EventPaymentCaptured  = "payment_captured"
	EventPaymentRefunded  = "payment_refunded"
	EventPaymentExpired   = "payment_expired"
)
