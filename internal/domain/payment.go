package domain

import (
	"fmt"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusCompleted  PaymentStatus = "COMPLETED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusRefunded   PaymentStatus = "REFUNDED"
)

// Payment is the money-movement record for exactly one booking.
//
// OrderRef holds the remote order id for the lifetime of the payment.
// GatewayReference starts as a local placeholder, becomes the remote order id
// once the order is created and is replaced by the remote payment id on
// capture.
type Payment struct {
	ID               int64
	BookingID        int64
	AmountPaise      int64
	Method           string
	Gateway          string
	Status           PaymentStatus
	OrderRef         string
	GatewayReference string
	PaymentDate      time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ParsePaymentStatus validates a status string coming from an API caller.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch status := PaymentStatus(s); status {
	case PaymentStatusPending, PaymentStatusProcessing, PaymentStatusCompleted,
		PaymentStatusFailed, PaymentStatusRefunded:
		return status, nil
	}
	return "", fmt.Errorf("%w: unknown payment status %q", ErrValidation, s)
}

// Terminal reports whether the payment can no longer advance through capture.
func (p *Payment) Terminal() bool {
	switch p.Status {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}
