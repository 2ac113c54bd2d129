package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stayinn/backend/internal/domain"
)

type RatingRepository interface {
	Create(ctx context.Context, rating *domain.Rating) error
	GetByID(ctx context.Context, id int64) (*domain.Rating, error)
	ExistsByUserAndVilla(ctx context.Context, userID, villaID int64) (bool, error)
	Update(ctx context.Context, rating *domain.Rating) error
	ListByVilla(ctx context.Context, villaID int64) ([]domain.Rating, error)
	AverageForVilla(ctx context.Context, villaID int64) (float64, int64, error)
	Delete(ctx context.Context, id int64) error
}

const ratingColumns = `id, user_id, villa_id, score, feedback, rating_date, created_at, updated_at`

type PGRatingRepository struct {
	db *pgxpool.Pool
}

func NewRatingRepository(db *pgxpool.Pool) RatingRepository {
	return &PGRatingRepository{db: db}
}

func (r *PGRatingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	err := r.db.QueryRow(ctx, `INSERT INTO ratings (user_id, villa_id, score, feedback, rating_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		rating.UserID, rating.VillaID, rating.Score, rating.Feedback, rating.RatingDate).
		Scan(&rating.ID, &rating.CreatedAt, &rating.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: user %d has already rated villa %d", domain.ErrConflict, rating.UserID, rating.VillaID)
		}
		return err
	}
	return nil
}

func (r *PGRatingRepository) GetByID(ctx context.Context, id int64) (*domain.Rating, error) {
	row := r.db.QueryRow(ctx, `SELECT `+ratingColumns+` FROM ratings WHERE id=$1`, id)
	rating, err := scanRating(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: rating %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return rating, nil
}

func (r *PGRatingRepository) ExistsByUserAndVilla(ctx context.Context, userID, villaID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM ratings WHERE user_id=$1 AND villa_id=$2)`, userID, villaID).Scan(&exists)
	return exists, err
}

func (r *PGRatingRepository) Update(ctx context.Context, rating *domain.Rating) error {
	cmd, err := r.db.Exec(ctx, `UPDATE ratings SET score=$1, feedback=$2, rating_date=$3, updated_at=now() WHERE id=$4`,
		rating.Score, rating.Feedback, rating.RatingDate, rating.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: rating %d", domain.ErrNotFound, rating.ID)
	}
	return nil
}

func (r *PGRatingRepository) ListByVilla(ctx context.Context, villaID int64) ([]domain.Rating, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ratingColumns+` FROM ratings WHERE villa_id=$1 ORDER BY rating_date DESC`, villaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []domain.Rating
	for rows.Next() {
		rating, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, *rating)
	}
	return ratings, rows.Err()
}

func (r *PGRatingRepository) AverageForVilla(ctx context.Context, villaID int64) (float64, int64, error) {
	var avg float64
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(AVG(score), 0), count(*) FROM ratings WHERE villa_id=$1`, villaID).Scan(&avg, &count)
	return avg, count, err
}

func (r *PGRatingRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM ratings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: rating %d", domain.ErrNotFound, id)
	}
	return nil
}

func scanRating(row pgx.Row) (*domain.Rating, error) {
	var rating domain.Rating
	if err := row.Scan(&rating.ID, &rating.UserID, &rating.VillaID, &rating.Score, &rating.Feedback,
		&rating.RatingDate, &rating.CreatedAt, &rating.UpdatedAt); err != nil {
		return nil, err
	}
	return &rating, nil
}

var _ RatingRepository = (*PGRatingRepository)(nil)
