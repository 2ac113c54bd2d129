package rating

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stayinn/backend/internal/domain"
	"github.com/stayinn/backend/internal/repository"
)

type RatingUseCase interface {
	Submit(ctx context.Context, input SubmitRatingInput) (*domain.Rating, error)
	Update(ctx context.Context, id int64, input UpdateRatingInput) (*domain.Rating, error)
	GetByID(ctx context.Context, id int64) (*domain.Rating, error)
	ListByVilla(ctx context.Context, villaID int64) ([]domain.Rating, error)
	VillaAverage(ctx context.Context, villaID int64) (*VillaAverage, error)
	Delete(ctx context.Context, id int64) error
}

type SubmitRatingInput struct {
	UserID   int64  `json:"user_id"`
	VillaID  int64  `json:"villa_id"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// UpdateRatingInput carries optional fields; nil leaves the field untouched.
type UpdateRatingInput struct {
	Score    *int    `json:"score"`
	Feedback *string `json:"feedback"`
}

type VillaAverage struct {
	VillaID int64   `json:"villa_id"`
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type RatingService struct {
	ratings  repository.RatingRepository
	bookings repository.BookingRepository
	villas   repository.VillaRepository
	users    repository.UserRepository
	clock    domain.Clock
	logger   *slog.Logger
}

func NewRatingService(
	ratings repository.RatingRepository,
	bookings repository.BookingRepository,
	villas repository.VillaRepository,
	users repository.UserRepository,
	clock domain.Clock,
	logger *slog.Logger,
) *RatingService {
	return &RatingService{
		ratings:  ratings,
		bookings: bookings,
		villas:   villas,
		users:    users,
		clock:    clock,
		logger:   logger,
	}
}

// Submit creates the single rating a user may leave for a villa. The user
// must have at least one COMPLETED stay there.
func (s *RatingService) Submit(ctx context.Context, input SubmitRatingInput) (*domain.Rating, error) {
	if err := validateScore(input.Score); err != nil {
		return nil, err
	}
	if err := validateFeedback(input.Feedback); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		return nil, err
	}
	if _, err := s.villas.GetByID(ctx, input.VillaID); err != nil {
		return nil, err
	}

	exists, err := s.ratings.ExistsByUserAndVilla(ctx, input.UserID, input.VillaID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: user %d has already rated villa %d", domain.ErrConflict, input.UserID, input.VillaID)
	}

	stayed, err := s.bookings.HasCompletedStay(ctx, input.UserID, input.VillaID)
	if err != nil {
		return nil, err
	}
	if !stayed {
		return nil, fmt.Errorf("%w: ratings require a completed stay at the villa", domain.ErrStateConflict)
	}

	rating := &domain.Rating{
		UserID:     input.UserID,
		VillaID:    input.VillaID,
		Score:      input.Score,
		Feedback:   input.Feedback,
		RatingDate: s.clock.Today(),
	}
	if err := s.ratings.Create(ctx, rating); err != nil {
		return nil, err
	}

	s.logger.Info("rating submitted", "rating_id", rating.ID, "villa_id", input.VillaID, "score", input.Score)
	return rating, nil
}

// Update edits an existing rating in place and refreshes its date. The
// completed-stay precondition is not re-checked.
func (s *RatingService) Update(ctx context.Context, id int64, input UpdateRatingInput) (*domain.Rating, error) {
	rating, err := s.ratings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Score != nil {
		if err := validateScore(*input.Score); err != nil {
			return nil, err
		}
		rating.Score = *input.Score
	}
	if input.Feedback != nil {
		if err := validateFeedback(*input.Feedback); err != nil {
			return nil, err
		}
		rating.Feedback = *input.Feedback
	}
	rating.RatingDate = s.clock.Today()

	if err := s.ratings.Update(ctx, rating); err != nil {
		return nil, err
	}
	return rating, nil
}

func (s *RatingService) GetByID(ctx context.Context, id int64) (*domain.Rating, error) {
	return s.ratings.GetByID(ctx, id)
}

func (s *RatingService) ListByVilla(ctx context.Context, villaID int64) ([]domain.Rating, error) {
	return s.ratings.ListByVilla(ctx, villaID)
}

func (s *RatingService) VillaAverage(ctx context.Context, villaID int64) (*VillaAverage, error) {
	if _, err := s.villas.GetByID(ctx, villaID); err != nil {
		return nil, err
	}
	avg, count, err := s.ratings.AverageForVilla(ctx, villaID)
	if err != nil {
		return nil, err
	}
	return &VillaAverage{VillaID: villaID, Average: avg, Count: count}, nil
}

func (s *RatingService) Delete(ctx context.Context, id int64) error {
	return s.ratings.Delete(ctx, id)
}

func validateScore(score int) error {
	if score < domain.RatingScoreMin || score > domain.RatingScoreMax {
		return fmt.Errorf("%w: score must be between %d and %d", domain.ErrValidation, domain.RatingScoreMin, domain.RatingScoreMax)
	}
	return nil
}

func validateFeedback(feedback string) error {
	if len(feedback) < domain.RatingFeedbackMin || len(feedback) > domain.RatingFeedbackMax {
		return fmt.Errorf("%w: feedback must be between %d and %d characters", domain.ErrValidation, domain.RatingFeedbackMin, domain.RatingFeedbackMax)
	}
	return nil
}

var _ RatingUseCase = (*RatingService)(nil)
