package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stayinn/backend/internal/domain"
	"github.com/stayinn/backend/internal/service/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRatingUseCase struct {
	mock.Mock
}

func (m *MockRatingUseCase) Submit(ctx context.Context, input rating.SubmitRatingInput) (*domain.Rating, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rating), args.Error(1)
}

func (m *MockRatingUseCase) Update(ctx context.Context, id int64, input rating.UpdateRatingInput) (*domain.Rating, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rating), args.Error(1)
}

func (m *MockRatingUseCase) GetByID(ctx context.Context, id int64) (*domain.Rating, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rating), args.Error(1)
}

func (m *MockRatingUseCase) ListByVilla(ctx context.Context, villaID int64) ([]domain.Rating, error) {
	args := m.Called(ctx, villaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rating), args.Error(1)
}

func (m *MockRatingUseCase) VillaAverage(ctx context.Context, villaID int64) (*rating.VillaAverage, error) {
	args := m.Called(ctx, villaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*rating.VillaAverage), args.Error(1)
}

func (m *MockRatingUseCase) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newRatingRouter(service rating.RatingUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewRatingHandler(service).Register(router.Group("/ratings"))
	return router
}

func TestRatingHandler_Submit_Success(t *testing.T) {
	mockService := &MockRatingUseCase{}
	router := newRatingRouter(mockService)

	created := &domain.Rating{
		ID:         11,
		UserID:     7,
		VillaID:    3,
		Score:      4,
		Feedback:   "Lovely stay, would come back.",
		RatingDate: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
	}

	mockService.On("Submit", mock.Anything, rating.SubmitRatingInput{
		UserID:   7,
		VillaID:  3,
		Score:    4,
		Feedback: "Lovely stay, would come back.",
	}).Return(created, nil).Once()

	body := `{"user_id":7,"villa_id":3,"score":4,"feedback":"Lovely stay, would come back."}`
	req := httptest.NewRequest(http.MethodPost, "/ratings/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp ratingResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(11), resp.ID)
	assert.Equal(t, "2025-06-01", resp.RatingDate)
}

func TestRatingHandler_Submit_NoCompletedStay(t *testing.T) {
	mockService := &MockRatingUseCase{}
	router := newRatingRouter(mockService)

	mockService.On("Submit", mock.Anything, mock.Anything).Return(nil, domain.ErrStateConflict).Once()

	body := `{"user_id":7,"villa_id":3,"score":4,"feedback":"Lovely stay, would come back."}`
	req := httptest.NewRequest(http.MethodPost, "/ratings/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRatingHandler_VillaAverage(t *testing.T) {
	mockService := &MockRatingUseCase{}
	router := newRatingRouter(mockService)

	mockService.On("VillaAverage", mock.Anything, int64(3)).
		Return(&rating.VillaAverage{VillaID: 3, Average: 4.25, Count: 8}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/ratings/villa/3/average", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp rating.VillaAverage
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4.25, resp.Average)
	assert.Equal(t, int64(8), resp.Count)
}
