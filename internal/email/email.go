package email

import (
	"context"
	"fmt"

	"github.com/stayinn/backend/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) SendBooking(ctx context.Context, event kafka.BookingEvent) error {
	fmt.Printf("send email about %s for booking %d (villa %d, user %d)\n", event.Type, event.BookingID, event.VillaID, event.UserID)
	return nil
}

func (s *Sender) SendPayment(ctx context.Context, event kafka.PaymentEvent) error {
	fmt.Printf("send email about %s for payment %d (booking %d)\n", event.Type, event.PaymentID, event.BookingID)
	return nil
}
