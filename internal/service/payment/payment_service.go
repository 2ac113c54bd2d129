package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stayinn/backend/internal/domain"
	"github.com/stayinn/backend/internal/gateway"
	"github.com/stayinn/backend/internal/kafka"
	"github.com/stayinn/backend/internal/repository"
)

const gatewayName = "RAZORPAY"

type PaymentUseCase interface {
	CreateOrder(ctx context.Context, bookingID int64) (*OrderTicket, error)
	VerifyAndCapture(ctx context.Context, input VerificationInput) (*domain.Payment, error)
	Refund(ctx context.Context, input RefundInput) (*domain.Payment, error)
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus, reference string) (*domain.Payment, error)
	Delete(ctx context.Context, id int64) error
	ExpireStalePending(ctx context.Context) ([]domain.Payment, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// OrderTicket carries everything the client needs to render gateway checkout.
type OrderTicket struct {
	OrderID     string `json:"order_id"`
	Currency    string `json:"currency"`
	AmountPaise int64  `json:"amount"`
	KeyID       string `json:"key_id"`
	BookingID   int64  `json:"booking_id"`
	PaymentID   int64  `json:"payment_id"`
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
	VillaName   string `json:"villa_name"`
	CompanyName string `json:"company_name"`
}

type VerificationInput struct {
	OrderID         string `json:"razorpay_order_id"`
	RemotePaymentID string `json:"razorpay_payment_id"`
	Signature       string `json:"razorpay_signature"`
}

type RefundInput struct {
	PaymentID   int64
	AmountPaise int64
	Reason      string
}

type PaymentService struct {
	payments           repository.PaymentRepository
	bookings           repository.BookingRepository
	villas             repository.VillaRepository
	users              repository.UserRepository
	gateway            gateway.Client
	producer           Producer
	clock              domain.Clock
	logger             *slog.Logger
	keyID              string
	currency           string
	companyName        string
	paymentTopic       string
	notificationsTopic string
	pendingTTL         time.Duration
}

type PaymentServiceOption func(*PaymentService)

func WithNotificationsTopic(topic string) PaymentServiceOption {
	return func(s *PaymentService) {
		s.notificationsTopic = topic
	}
}

// WithPendingTTL bounds how long a PENDING payment may sit before the sweep
// expires it.
func WithPendingTTL(ttl time.Duration) PaymentServiceOption {
	return func(s *PaymentService) {
		s.pendingTTL = ttl
	}
}

func NewPaymentService(
	payments repository.PaymentRepository,
	bookings repository.BookingRepository,
	villas repository.VillaRepository,
	users repository.UserRepository,
	gw gateway.Client,
	producer Producer,
	clock domain.Clock,
	logger *slog.Logger,
	keyID, currency, companyName, paymentTopic string,
	opts ...PaymentServiceOption,
) *PaymentService {
	service := &PaymentService{
		payments:     payments,
		bookings:     bookings,
		villas:       villas,
		users:        users,
		gateway:      gw,
		producer:     producer,
		clock:        clock,
		logger:       logger,
		keyID:        keyID,
		currency:     currency,
		companyName:  companyName,
		paymentTopic: paymentTopic,
		pendingTTL:   time.Hour,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateOrder opens a remote order for a PENDING booking. The local payment
// row is inserted first with a placeholder reference; if the gateway call
// fails the row stays PENDING for the expiry sweep and the error surfaces.
// Retrying createOrder for the same booking is rejected as a duplicate.
func (s *PaymentService) CreateOrder(ctx context.Context, bookingID int64) (*OrderTicket, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != domain.BookingStatusPending {
		return nil, fmt.Errorf("%w: booking %d is %s", domain.ErrStateConflict, bookingID, booking.Status)
	}

	if _, err := s.payments.GetByBookingID(ctx, bookingID); err == nil {
		return nil, fmt.Errorf("%w: payment already exists for booking %d", domain.ErrConflict, bookingID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, booking.UserID)
	if err != nil {
		return nil, err
	}
	villa, err := s.villas.GetByID(ctx, booking.VillaID)
	if err != nil {
		return nil, err
	}

	placeholder := "PENDING_" + uuid.NewString()[:8]
	payment := &domain.Payment{
		BookingID:        bookingID,
		AmountPaise:      booking.TotalPricePaise,
		Method:           "ONLINE",
		Gateway:          gatewayName,
		OrderRef:         placeholder,
		GatewayReference: placeholder,
		PaymentDate:      s.clock.Today(),
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	receipt := fmt.Sprintf("receipt_%d_%d", bookingID, time.Now().UnixMilli())
	order, err := s.gateway.CreateOrder(ctx, booking.TotalPricePaise, s.currency, receipt, map[string]interface{}{
		"booking_id": bookingID,
		"payment_id": payment.ID,
		"user_id":    booking.UserID,
		"villa_id":   booking.VillaID,
	})
	if err != nil {
		s.logger.Error("gateway order creation failed", "booking_id", bookingID, "payment_id", payment.ID, "err", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}

	if err := s.payments.SetOrderRef(ctx, payment.ID, order.ID); err != nil {
		return nil, err
	}

	return &OrderTicket{
		OrderID:     order.ID,
		Currency:    order.Currency,
		AmountPaise: order.AmountPaise,
		KeyID:       s.keyID,
		BookingID:   bookingID,
		PaymentID:   payment.ID,
		UserName:    user.Name,
		UserEmail:   user.Email,
		VillaName:   villa.Name,
		CompanyName: s.companyName,
	}, nil
}

// VerifyAndCapture validates the gateway's signed confirmation, checks the
// remote payment succeeded, then captures the local payment and confirms its
// booking atomically. Replaying the same confirmation returns the captured
// payment unchanged.
func (s *PaymentService) VerifyAndCapture(ctx context.Context, input VerificationInput) (*domain.Payment, error) {
	if !s.gateway.VerifySignature(input.OrderID, input.RemotePaymentID, input.Signature) {
		return nil, domain.ErrInvalidSignature
	}

	remote, err := s.gateway.FetchPayment(ctx, input.RemotePaymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}
	if remote.Status != "captured" && remote.Status != "authorized" {
		return nil, fmt.Errorf("%w: payment not successful, status %s", domain.ErrGateway, remote.Status)
	}

	payment, err := s.payments.GetByOrderRef(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	if payment.Status == domain.PaymentStatusCompleted {
		if payment.GatewayReference == input.RemotePaymentID {
			return payment, nil
		}
		return nil, fmt.Errorf("%w: payment %d was captured with a different reference", domain.ErrStateConflict, payment.ID)
	}
	if payment.Terminal() {
		return nil, fmt.Errorf("%w: payment %d is %s", domain.ErrStateConflict, payment.ID, payment.Status)
	}

	captured, err := s.payments.CompleteAndConfirmBooking(ctx, payment.ID, input.RemotePaymentID, s.clock.Today())
	if err != nil {
		// A concurrent delivery can win the capture between the status
		// pre-check and the transaction. Losing to the same remote payment
		// id is a replay, not a conflict.
		if errors.Is(err, domain.ErrStateConflict) {
			current, readErr := s.payments.GetByID(ctx, payment.ID)
			if readErr == nil && current.Status == domain.PaymentStatusCompleted && current.GatewayReference == input.RemotePaymentID {
				return current, nil
			}
		}
		return nil, err
	}

	s.publish(ctx, kafka.EventPaymentCaptured, captured)
	return captured, nil
}

// Refund issues a remote refund and then moves payment → REFUNDED and
// booking → CANCELLED atomically. The cancel preconditions are checked
// before the gateway call so a booking past check-in never reaches the
// gateway.
func (s *PaymentService) Refund(ctx context.Context, input RefundInput) (*domain.Payment, error) {
	payment, err := s.payments.GetByID(ctx, input.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.PaymentStatusCompleted {
		return nil, fmt.Errorf("%w: payment %d is %s, only completed payments can be refunded", domain.ErrStateConflict, payment.ID, payment.Status)
	}
	if input.AmountPaise <= 0 || input.AmountPaise > payment.AmountPaise {
		return nil, fmt.Errorf("%w: refund amount must be positive and within the paid amount", domain.ErrValidation)
	}

	booking, err := s.bookings.GetByID(ctx, payment.BookingID)
	if err != nil {
		return nil, err
	}
	if !booking.Active() {
		return nil, fmt.Errorf("%w: booking %d is %s", domain.ErrStateConflict, booking.ID, booking.Status)
	}
	if s.clock.Today().After(booking.CheckIn) {
		return nil, fmt.Errorf("%w: cannot refund booking %d after check-in", domain.ErrStateConflict, booking.ID)
	}

	if _, err := s.gateway.Refund(ctx, payment.GatewayReference, input.AmountPaise, map[string]interface{}{
		"reason":     input.Reason,
		"booking_id": payment.BookingID,
	}); err != nil {
		s.logger.Error("gateway refund failed", "payment_id", payment.ID, "err", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}

	refunded, err := s.payments.RefundAndCancelBooking(ctx, payment.ID, s.clock.Today())
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment refunded", "payment_id", payment.ID, "booking_id", payment.BookingID, "reason", input.Reason)
	s.publish(ctx, kafka.EventPaymentRefunded, refunded)
	return refunded, nil
}

func (s *PaymentService) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	return s.payments.GetByID(ctx, id)
}

func (s *PaymentService) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	return s.payments.GetByBookingID(ctx, bookingID)
}

// UpdateStatus is an admin maintenance write.
func (s *PaymentService) UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus, reference string) (*domain.Payment, error) {
	return s.payments.UpdateStatus(ctx, id, status, reference)
}

func (s *PaymentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.payments.GetByID(ctx, id); err != nil {
		return err
	}
	return s.payments.Delete(ctx, id)
}

// ExpireStalePending fails PENDING payments older than the configured TTL,
// reaping orders abandoned after createOrder.
func (s *PaymentService) ExpireStalePending(ctx context.Context) ([]domain.Payment, error) {
	cutoff := time.Now().Add(-s.pendingTTL)
	expired, err := s.payments.FailStalePendingBefore(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	for i := range expired {
		s.publish(ctx, kafka.EventPaymentExpired, &expired[i])
	}
	return expired, nil
}

func (s *PaymentService) publish(ctx context.Context, eventType string, payment *domain.Payment) {
	if s.producer == nil || s.paymentTopic == "" {
		return
	}
	event := kafka.PaymentEvent{
		Type:        eventType,
		PaymentID:   payment.ID,
		BookingID:   payment.BookingID,
		AmountPaise: payment.AmountPaise,
		Status:      string(payment.Status),
		Reference:   payment.GatewayReference,
	}
	key := fmt.Sprintf("payment-%d", payment.ID)
	if err := s.producer.Publish(ctx, s.paymentTopic, key, event); err != nil {
		s.logger.Warn("failed to publish payment event", "type", eventType, "payment_id", payment.ID, "err", err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			s.logger.Warn("failed to publish notification", "type", eventType, "payment_id", payment.ID, "err", err)
		}
	}
}

var _ PaymentUseCase = (*PaymentService)(nil)
