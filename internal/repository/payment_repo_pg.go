package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stayinn/backend/internal/domain"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
	GetByOrderRef(ctx context.Context, orderRef string) (*domain.Payment, error)
	SetOrderRef(ctx context.Context, id int64, orderRef string) error
	CompleteAndConfirmBooking(ctx context.Context, paymentID int64, remotePaymentID string, paymentDate time.Time) (*domain.Payment, error)
	RefundAndCancelBooking(ctx context.Context, paymentID int64, paymentDate time.Time) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus, gatewayReference string) (*domain.Payment, error)
	FailStalePendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Payment, error)
	Delete(ctx context.Context, id int64) error
}

const paymentColumns = `id, booking_id, amount_paise, method, gateway, status, order_ref, gateway_reference, payment_date, created_at, updated_at`

const uniqueViolation = "23505"

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

// Create inserts a PENDING payment. The unique constraint on booking_id
// enforces one payment per booking even under racing createOrder calls.
func (r *PGPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	payment.Status = domain.PaymentStatusPending
	err := r.db.QueryRow(ctx, `INSERT INTO payments (booking_id, amount_paise, method, gateway, status, order_ref, gateway_reference, payment_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		payment.BookingID, payment.AmountPaise, payment.Method, payment.Gateway, payment.Status,
		payment.OrderRef, payment.GatewayReference, payment.PaymentDate).
		Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: payment already exists for booking %d", domain.ErrConflict, payment.BookingID)
		}
		return err
	}
	return nil
}

func (r *PGPaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return p, nil
}

func (r *PGPaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE booking_id=$1`, bookingID)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment for booking %d", domain.ErrNotFound, bookingID)
		}
		return nil, err
	}
	return p, nil
}

func (r *PGPaymentRepository) GetByOrderRef(ctx context.Context, orderRef string) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_ref=$1`, orderRef)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment", domain.ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

// SetOrderRef records the remote order id once the gateway order exists.
func (r *PGPaymentRepository) SetOrderRef(ctx context.Context, id int64, orderRef string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE payments SET order_ref=$1, gateway_reference=$1, updated_at=now() WHERE id=$2`, orderRef, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: payment %d", domain.ErrNotFound, id)
	}
	return nil
}

// CompleteAndConfirmBooking captures the payment and confirms its booking in
// one transaction, so the two status changes are observed together or not at
// all.
func (r *PGPaymentRepository) CompleteAndConfirmBooking(ctx context.Context, paymentID int64, remotePaymentID string, paymentDate time.Time) (*domain.Payment, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `UPDATE payments SET status=$1, gateway_reference=$2, payment_date=$3, updated_at=now()
		WHERE id=$4 AND status IN ('PENDING', 'PROCESSING')
		RETURNING `+paymentColumns,
		domain.PaymentStatusCompleted, remotePaymentID, paymentDate, paymentID)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment %d is not capturable", domain.ErrStateConflict, paymentID)
		}
		return nil, err
	}

	cmd, err := tx.Exec(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 AND status=$3`,
		domain.BookingStatusConfirmed, p.BookingID, domain.BookingStatusPending)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: booking %d is not pending", domain.ErrStateConflict, p.BookingID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// RefundAndCancelBooking marks the payment REFUNDED and cancels its booking
// in one transaction. Callers verify the gateway refund succeeded first.
func (r *PGPaymentRepository) RefundAndCancelBooking(ctx context.Context, paymentID int64, paymentDate time.Time) (*domain.Payment, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `UPDATE payments SET status=$1, payment_date=$2, updated_at=now()
		WHERE id=$3 AND status=$4
		RETURNING `+paymentColumns,
		domain.PaymentStatusRefunded, paymentDate, paymentID, domain.PaymentStatusCompleted)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment %d is not completed", domain.ErrStateConflict, paymentID)
		}
		return nil, err
	}

	cmd, err := tx.Exec(ctx, `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2 AND status IN `+activeStatuses,
		domain.BookingStatusCancelled, p.BookingID)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: booking %d is not cancellable", domain.ErrStateConflict, p.BookingID)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateStatus is an admin maintenance write with no state-machine checks.
func (r *PGPaymentRepository) UpdateStatus(ctx context.Context, id int64, status domain.PaymentStatus, gatewayReference string) (*domain.Payment, error) {
	row := r.db.QueryRow(ctx, `UPDATE payments SET status=$1, gateway_reference=COALESCE(NULLIF($2, ''), gateway_reference), updated_at=now()
		WHERE id=$3 RETURNING `+paymentColumns, status, gatewayReference, id)
	p, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: payment %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return p, nil
}

// FailStalePendingBefore expires PENDING payments created before cutoff.
// Covers orders the client abandoned after createOrder.
func (r *PGPaymentRepository) FailStalePendingBefore(ctx context.Context, cutoff time.Time) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, `UPDATE payments SET status=$1, updated_at=now()
		WHERE status=$2 AND created_at < $3
		RETURNING `+paymentColumns,
		domain.PaymentStatusFailed, domain.PaymentStatusPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		expired = append(expired, *p)
	}
	return expired, rows.Err()
}

func (r *PGPaymentRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM payments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: payment %d", domain.ErrNotFound, id)
	}
	return nil
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	if err := row.Scan(&p.ID, &p.BookingID, &p.AmountPaise, &p.Method, &p.Gateway, &p.Status,
		&p.OrderRef, &p.GatewayReference, &p.PaymentDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
