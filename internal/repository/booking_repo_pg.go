package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stayinn/backend/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, from ...domain.BookingStatus) (*domain.Booking, error)
	FindConflicting(ctx context.Context, villaID int64, checkIn, checkOut time.Time) ([]domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	ListByVilla(ctx context.Context, villaID int64) ([]domain.Booking, error)
	CompleteFinishedBefore(ctx context.Context, today time.Time) ([]domain.Booking, error)
	HasCompletedStay(ctx context.Context, userID, villaID int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

const bookingColumns = `id, user_id, villa_id, check_in, check_out, total_price_paise, status, created_at, updated_at`

// Bookings in these states block the villa for overlapping dates.
const activeStatuses = `('PENDING', 'CONFIRMED')`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

// Create persists a PENDING booking after re-checking the overlap invariant
// inside a transaction that locks the villa row. Two racing creates on the
// same villa serialize on that lock, so exactly one observes no conflict.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var villaID int64
	if err := tx.QueryRow(ctx, `SELECT id FROM villas WHERE id=$1 FOR UPDATE`, booking.VillaID).Scan(&villaID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: villa %d", domain.ErrNotFound, booking.VillaID)
		}
		return err
	}

	var conflicts int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM bookings WHERE villa_id=$1 AND status IN `+activeStatuses+` AND check_in < $3 AND check_out > $2`,
		booking.VillaID, booking.CheckIn, booking.CheckOut).Scan(&conflicts); err != nil {
		return err
	}
	if conflicts > 0 {
		return fmt.Errorf("%w: villa %d is already booked for the selected dates", domain.ErrConflict, booking.VillaID)
	}

	booking.Status = domain.BookingStatusPending
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (user_id, villa_id, check_in, check_out, total_price_paise, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		booking.UserID, booking.VillaID, booking.CheckIn, booking.CheckOut, booking.TotalPricePaise, booking.Status).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return b, nil
}

// UpdateStatus moves a booking to status. When from states are given the
// update only applies while the booking is in one of them; a booking found in
// any other state surfaces as a state conflict.
func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus, from ...domain.BookingStatus) (*domain.Booking, error) {
	query := `UPDATE bookings SET status=$1, updated_at=now() WHERE id=$2`
	args := []any{status, id}
	if len(from) > 0 {
		states := make([]string, 0, len(from))
		for _, s := range from {
			states = append(states, string(s))
		}
		query += ` AND status = ANY($3)`
		args = append(args, states)
	}

	row := r.db.QueryRow(ctx, query+` RETURNING `+bookingColumns, args...)
	b, err := scanBooking(row)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	current, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("%w: booking %d is %s", domain.ErrStateConflict, id, current.Status)
}

func (r *PGBookingRepository) FindConflicting(ctx context.Context, villaID int64, checkIn, checkOut time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE villa_id=$1 AND status IN `+activeStatuses+` AND check_in < $3 AND check_out > $2
		ORDER BY check_in`, villaID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY check_in DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) ListByVilla(ctx context.Context, villaID int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE villa_id=$1 ORDER BY check_in`, villaID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// CompleteFinishedBefore transitions every CONFIRMED booking whose stay ended
// before today to COMPLETED and returns the transitioned rows. Already
// completed rows never match, so the sweep is idempotent.
func (r *PGBookingRepository) CompleteFinishedBefore(ctx context.Context, today time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, updated_at=now()
		WHERE status=$2 AND check_out < $3
		RETURNING `+bookingColumns,
		domain.BookingStatusCompleted, domain.BookingStatusConfirmed, today)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) HasCompletedStay(ctx context.Context, userID, villaID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE user_id=$1 AND villa_id=$2 AND status=$3)`,
		userID, villaID, domain.BookingStatusCompleted).Scan(&exists)
	return exists, err
}

func (r *PGBookingRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
	}
	return nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.UserID, &b.VillaID, &b.CheckIn, &b.CheckOut, &b.TotalPricePaise, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
