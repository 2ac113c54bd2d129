package booking

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/stayinn/backend/internal/domain"
	"github.com/stayinn/backend/internal/kafka"
	"github.com/stayinn/backend/internal/repository"
)

type BookingUseCase interface {
	Create(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64, scope Scope) ([]domain.Booking, error)
	ListByVilla(ctx context.Context, villaID int64) ([]domain.Booking, error)
	CheckAvailability(ctx context.Context, input AvailabilityInput) (*Availability, error)
	Confirm(ctx context.Context, id int64) (*domain.Booking, error)
	Cancel(ctx context.Context, id int64, reason string) (*domain.Booking, error)
	AutoComplete(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int64) error
}

type Cache interface {
	AcquireVillaLock(ctx context.Context, villaID int64, ttl time.Duration) (bool, error)
	ReleaseVillaLock(ctx context.Context, villaID int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	payments           repository.PaymentRepository
	villas             repository.VillaRepository
	users              repository.UserRepository
	cache              Cache
	producer           Producer
	clock              domain.Clock
	logger             *slog.Logger
	bookingTopic       string
	notificationsTopic string
	villaLockTTL       time.Duration
}

// Scope narrows a user's booking list relative to today.
type Scope string

const (
	ScopeAll      Scope = ""
	ScopeUpcoming Scope = "upcoming"
	ScopePast     Scope = "past"
)

type CreateBookingInput struct {
	UserID   int64     `json:"user_id"`
	VillaID  int64     `json:"villa_id"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

type AvailabilityInput struct {
	VillaID  int64     `json:"villa_id"`
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

type Availability struct {
	Available           bool
	Nights              int
	EstimatedPricePaise int64
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	villas repository.VillaRepository,
	users repository.UserRepository,
	cache Cache,
	producer Producer,
	clock domain.Clock,
	logger *slog.Logger,
	bookingTopic string,
	villaLockTTL time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:     bookings,
		payments:     payments,
		villas:       villas,
		users:        users,
		cache:        cache,
		producer:     producer,
		clock:        clock,
		logger:       logger,
		bookingTopic: bookingTopic,
		villaLockTTL: villaLockTTL,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Create validates dates and references, then persists a PENDING booking
// priced at nights × the villa's current nightly rate. The conflict check and
// insert run serialized per villa: a Redis villa lock narrows the race window
// and the repository transaction closes it.
func (s *BookingService) Create(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if err := s.validateDates(input.CheckIn, input.CheckOut); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		return nil, err
	}
	villa, err := s.villas.GetByID(ctx, input.VillaID)
	if err != nil {
		return nil, err
	}

	locked := false
	if s.cache != nil {
		ok, err := s.cache.AcquireVillaLock(ctx, input.VillaID, s.villaLockTTL)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: another booking for villa %d is in progress", domain.ErrConflict, input.VillaID)
		}
		locked = true
	}

	booking := &domain.Booking{
		UserID:          input.UserID,
		VillaID:         input.VillaID,
		CheckIn:         domain.Date(input.CheckIn),
		CheckOut:        domain.Date(input.CheckOut),
		TotalPricePaise: domain.TotalPricePaise(villa.PricePerNightPaise, input.CheckIn, input.CheckOut),
	}

	err = s.bookings.Create(ctx, booking)
	if locked {
		_ = s.cache.ReleaseVillaLock(ctx, input.VillaID)
	}
	if err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.EventBookingCreated, booking)
	return booking, nil
}

func (s *BookingService) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) ListByUser(ctx context.Context, userID int64, scope Scope) ([]domain.Booking, error) {
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	switch scope {
	case ScopeAll:
		return bookings, nil
	case ScopeUpcoming, ScopePast:
	default:
		return nil, fmt.Errorf("%w: scope must be %q or %q", domain.ErrValidation, ScopeUpcoming, ScopePast)
	}

	today := s.clock.Today()
	filtered := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		upcoming := !b.CheckOut.Before(today)
		if (scope == ScopeUpcoming) == upcoming {
			filtered = append(filtered, b)
		}
	}
	return filtered, nil
}

func (s *BookingService) ListByVilla(ctx context.Context, villaID int64) ([]domain.Booking, error) {
	if _, err := s.villas.GetByID(ctx, villaID); err != nil {
		return nil, err
	}
	return s.bookings.ListByVilla(ctx, villaID)
}

// CheckAvailability reports whether the villa is free for the half-open
// interval and what the stay would cost at the current nightly rate.
func (s *BookingService) CheckAvailability(ctx context.Context, input AvailabilityInput) (*Availability, error) {
	if err := s.validateDates(input.CheckIn, input.CheckOut); err != nil {
		return nil, err
	}

	villa, err := s.villas.GetByID(ctx, input.VillaID)
	if err != nil {
		return nil, err
	}

	conflicts, err := s.bookings.FindConflicting(ctx, input.VillaID, domain.Date(input.CheckIn), domain.Date(input.CheckOut))
	if err != nil {
		return nil, err
	}

	return &Availability{
		Available:           len(conflicts) == 0,
		Nights:              domain.Nights(input.CheckIn, input.CheckOut),
		EstimatedPricePaise: domain.TotalPricePaise(villa.PricePerNightPaise, input.CheckIn, input.CheckOut),
	}, nil
}

// Confirm moves a booking PENDING → CONFIRMED. Invoked by the payment
// pipeline on capture; any other source state is a state conflict.
func (s *BookingService) Confirm(ctx context.Context, id int64) (*domain.Booking, error) {
	updated, err := s.bookings.UpdateStatus(ctx, id, domain.BookingStatusConfirmed, domain.BookingStatusPending)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.EventBookingConfirmed, updated)
	return updated, nil
}

// Cancel moves a PENDING or CONFIRMED booking to CANCELLED. Rejected once
// today is past the check-in date.
func (s *BookingService) Cancel(ctx context.Context, id int64, reason string) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Active() {
		return nil, fmt.Errorf("%w: booking %d is %s", domain.ErrStateConflict, id, current.Status)
	}
	if s.clock.Today().After(current.CheckIn) {
		return nil, fmt.Errorf("%w: cannot cancel booking %d after check-in", domain.ErrStateConflict, id)
	}

	updated, err := s.bookings.UpdateStatus(ctx, id, domain.BookingStatusCancelled,
		domain.BookingStatusPending, domain.BookingStatusConfirmed)
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking cancelled", "booking_id", id, "reason", reason)
	s.publish(ctx, kafka.EventBookingCancelled, updated)
	return updated, nil
}

// AutoComplete transitions every CONFIRMED booking with checkOut < today to
// COMPLETED and returns the count. Safe to run repeatedly.
func (s *BookingService) AutoComplete(ctx context.Context) (int, error) {
	completed, err := s.bookings.CompleteFinishedBefore(ctx, s.clock.Today())
	if err != nil {
		return 0, err
	}
	for i := range completed {
		s.publish(ctx, kafka.EventBookingCompleted, &completed[i])
	}
	return len(completed), nil
}

// Delete hard-deletes a booking (admin only). Refused while a payment for the
// booking is still in flight; the payment row itself goes with the booking.
func (s *BookingService) Delete(ctx context.Context, id int64) error {
	if _, err := s.bookings.GetByID(ctx, id); err != nil {
		return err
	}

	payment, err := s.payments.GetByBookingID(ctx, id)
	if err == nil && !payment.Terminal() {
		return fmt.Errorf("%w: booking %d has a %s payment", domain.ErrStateConflict, id, payment.Status)
	}

	return s.bookings.Delete(ctx, id)
}

func (s *BookingService) validateDates(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return fmt.Errorf("%w: check-in and check-out dates are required", domain.ErrValidation)
	}
	if domain.Date(checkIn).Before(s.clock.Today()) {
		return fmt.Errorf("%w: check-in date cannot be in the past", domain.ErrValidation)
	}
	if domain.Nights(checkIn, checkOut) < 1 {
		return fmt.Errorf("%w: check-out date must be after check-in date", domain.ErrValidation)
	}
	return nil
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		VillaID:    booking.VillaID,
		CheckIn:    booking.CheckIn,
		CheckOut:   booking.CheckOut,
		TotalPaise: booking.TotalPricePaise,
		Status:     string(booking.Status),
	}
	key := fmt.Sprintf("booking-%d", booking.ID)
	if err := s.producer.Publish(ctx, s.bookingTopic, key, event); err != nil {
		s.logger.Warn("failed to publish booking event", "type", eventType, "booking_id", booking.ID, "err", err)
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			s.logger.Warn("failed to publish notification", "type", eventType, "booking_id", booking.ID, "err", err)
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
