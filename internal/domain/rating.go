package domain

import "time"

const (
	RatingScoreMin    = 1
	RatingScoreMax    = 5
	RatingFeedbackMin = 10
	RatingFeedbackMax = 500
)

// Rating is a single (user, villa) review, allowed only after a completed stay.
type Rating struct {
	ID         int64
	UserID     int64
	VillaID    int64
	Score      int
	Feedback   string
	RatingDate time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
