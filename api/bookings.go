package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stayinn/backend/internal/domain"
	"github.com/stayinn/backend/internal/service/booking"
)

const dateFormat = "2006-01-02"

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	UserID   int64  `json:"user_id"`
	VillaID  int64  `json:"villa_id"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

type availabilityRequest struct {
	VillaID  int64  `json:"villa_id"`
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

type bookingResponse struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"user_id"`
	VillaID    int64   `json:"villa_id"`
	CheckIn    string  `json:"check_in"`
	CheckOut   string  `json:"check_out"`
	Nights     int     `json:"nights"`
	TotalPrice float64 `json:"total_price"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

type availabilityResponse struct {
	Available      bool    `json:"available"`
	Nights         int     `json:"nights"`
	EstimatedPrice float64 `json:"estimated_price"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.POST("/availability", h.availability)
	router.POST("/auto-complete", h.autoComplete)
	router.GET("/:id", h.get)
	router.GET("/user/:userId", h.listByUser)
	router.GET("/villa/:villaId", h.listByVilla)
	router.PUT("/:id/confirm", h.confirm)
	router.PUT("/:id/cancel", h.cancel)
	router.DELETE("/:id", h.delete)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	checkIn, checkOut, err := parseStayDates(req.CheckIn, req.CheckOut)
	if err != nil {
		respondError(c, err)
		return
	}

	created, err := h.service.Create(c.Request.Context(), booking.CreateBookingInput{
		UserID:   req.UserID,
		VillaID:  req.VillaID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) availability(c *gin.Context) {
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	checkIn, checkOut, err := parseStayDates(req.CheckIn, req.CheckOut)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), booking.AvailabilityInput{
		VillaID:  req.VillaID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, availabilityResponse{
		Available:      result.Available,
		Nights:         result.Nights,
		EstimatedPrice: domain.Rupees(result.EstimatedPricePaise),
	})
}

func (h *BookingHandler) get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	found, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}

func (h *BookingHandler) listByUser(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		respondError(c, err)
		return
	}

	bookings, err := h.service.ListByUser(c.Request.Context(), userID, booking.Scope(c.Query("scope")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

func (h *BookingHandler) listByVilla(c *gin.Context) {
	villaID, err := pathID(c, "villaId")
	if err != nil {
		respondError(c, err)
		return
	}

	bookings, err := h.service.ListByVilla(c.Request.Context(), villaID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponses(bookings))
}

func (h *BookingHandler) confirm(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	confirmed, err := h.service.Confirm(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(confirmed))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cancelled, err := h.service.Cancel(c.Request.Context(), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(cancelled))
}

func (h *BookingHandler) autoComplete(c *gin.Context) {
	count, err := h.service.AutoComplete(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"completed": count})
}

func (h *BookingHandler) delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toBookingResponses(bookings []domain.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	return out
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:         b.ID,
		UserID:     b.UserID,
		VillaID:    b.VillaID,
		CheckIn:    b.CheckIn.Format(dateFormat),
		CheckOut:   b.CheckOut.Format(dateFormat),
		Nights:     b.Nights(),
		TotalPrice: domain.Rupees(b.TotalPricePaise),
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  b.UpdatedAt.Format(time.RFC3339),
	}
}

func parseStayDates(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := time.Parse(dateFormat, checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: check_in must be a %s date", domain.ErrValidation, dateFormat)
	}
	out, err := time.Parse(dateFormat, checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: check_out must be a %s date", domain.ErrValidation, dateFormat)
	}
	return in, out, nil
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer id", domain.ErrValidation, name)
	}
	return id, nil
}
