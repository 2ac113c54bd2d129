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
	"github.com/stayinn/backend/internal/service/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Create(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListByUser(ctx context.Context, userID int64, scope booking.Scope) ([]domain.Booking, error) {
	args := m.Called(ctx, userID, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListByVilla(ctx context.Context, villaID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, villaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CheckAvailability(ctx context.Context, input booking.AvailabilityInput) (*booking.Availability, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Availability), args.Error(1)
}

func (m *MockBookingUseCase) Confirm(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Cancel(ctx context.Context, id int64, reason string) (*domain.Booking, error) {
	args := m.Called(ctx, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) AutoComplete(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingUseCase) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newBookingRouter(service booking.BookingUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewBookingHandler(service).Register(router.Group("/bookings"))
	return router
}

func TestBookingHandler_Create_Success(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	created := &domain.Booking{
		ID:              42,
		UserID:          7,
		VillaID:         3,
		CheckIn:         time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		CheckOut:        time.Date(2025, time.June, 13, 0, 0, 0, 0, time.UTC),
		TotalPricePaise: 1500000,
		Status:          domain.BookingStatusPending,
	}

	mockService.On("Create", mock.Anything, mock.AnythingOfType("booking.CreateBookingInput")).Return(created, nil).Once()

	body := `{"user_id":7,"villa_id":3,"check_in":"2025-06-10","check_out":"2025-06-13"}`
	req := httptest.NewRequest(http.MethodPost, "/bookings/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(42), resp["id"])
	assert.Equal(t, "2025-06-10", resp["check_in"])
	assert.Equal(t, float64(3), resp["nights"])
	assert.Equal(t, 15000.0, resp["total_price"])
	assert.Equal(t, "PENDING", resp["status"])

	mockService.AssertExpectations(t)
}

func TestBookingHandler_Create_BadDate(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	body := `{"user_id":7,"villa_id":3,"check_in":"10/06/2025","check_out":"2025-06-13"}`
	req := httptest.NewRequest(http.MethodPost, "/bookings/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "Create")
}

func TestBookingHandler_Create_Conflict(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	mockService.On("Create", mock.Anything, mock.Anything).Return(nil, domain.ErrConflict).Once()

	body := `{"user_id":7,"villa_id":3,"check_in":"2025-06-10","check_out":"2025-06-13"}`
	req := httptest.NewRequest(http.MethodPost, "/bookings/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBookingHandler_Get_NotFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	mockService.On("GetByID", mock.Anything, int64(99)).Return(nil, domain.ErrNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/bookings/99", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingHandler_Get_BadID(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	req := httptest.NewRequest(http.MethodGet, "/bookings/abc", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "GetByID")
}

func TestBookingHandler_Availability(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	mockService.On("CheckAvailability", mock.Anything, mock.AnythingOfType("booking.AvailabilityInput")).
		Return(&booking.Availability{Available: true, Nights: 3, EstimatedPricePaise: 1500000}, nil).Once()

	body := `{"villa_id":3,"check_in":"2025-06-10","check_out":"2025-06-13"}`
	req := httptest.NewRequest(http.MethodPost, "/bookings/availability", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp availabilityResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Available)
	assert.Equal(t, 3, resp.Nights)
	assert.Equal(t, 15000.0, resp.EstimatedPrice)
}

func TestBookingHandler_Cancel_StateConflict(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	mockService.On("Cancel", mock.Anything, int64(42), "too late").Return(nil, domain.ErrStateConflict).Once()

	body := `{"reason":"too late"}`
	req := httptest.NewRequest(http.MethodPut, "/bookings/42/cancel", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBookingHandler_Delete_NoContent(t *testing.T) {
	mockService := &MockBookingUseCase{}
	router := newBookingRouter(mockService)

	mockService.On("Delete", mock.Anything, int64(42)).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/bookings/42", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
