package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stayinn/backend/internal/domain"
	"github.com/stayinn/backend/internal/service/payment"
)

type PaymentHandler struct {
	service payment.PaymentUseCase
}

type createOrderRequest struct {
	BookingID int64 `json:"booking_id"`
}

type refundRequest struct {
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

type updatePaymentStatusRequest struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
}

type orderTicketResponse struct {
	OrderID     string  `json:"order_id"`
	Currency    string  `json:"currency"`
	Amount      float64 `json:"amount"`
	AmountPaise int64   `json:"amount_paise"`
	KeyID       string  `json:"key_id"`
	BookingID   int64   `json:"booking_id"`
	PaymentID   int64   `json:"payment_id"`
	UserName    string  `json:"user_name"`
	UserEmail   string  `json:"user_email"`
	VillaName   string  `json:"villa_name"`
	CompanyName string  `json:"company_name"`
}

type paymentResponse struct {
	ID               int64   `json:"id"`
	BookingID        int64   `json:"booking_id"`
	Amount           float64 `json:"amount"`
	Method           string  `json:"method"`
	Gateway          string  `json:"gateway"`
	GatewayReference string  `json:"gateway_reference"`
	Status           string  `json:"status"`
	PaymentDate      string  `json:"payment_date"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

func NewPaymentHandler(service payment.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/order", h.createOrder)
	router.POST("/verify", h.verify)
	router.POST("/:id/refund", h.refund)
	router.GET("/:id", h.get)
	router.GET("/booking/:bookingId", h.getByBooking)
	router.PUT("/:id/status", h.updateStatus)
	router.DELETE("/:id", h.delete)
}

func (h *PaymentHandler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.service.CreateOrder(c.Request.Context(), req.BookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, orderTicketResponse{
		OrderID:     ticket.OrderID,
		Currency:    ticket.Currency,
		Amount:      domain.Rupees(ticket.AmountPaise),
		AmountPaise: ticket.AmountPaise,
		KeyID:       ticket.KeyID,
		BookingID:   ticket.BookingID,
		PaymentID:   ticket.PaymentID,
		UserName:    ticket.UserName,
		UserEmail:   ticket.UserEmail,
		VillaName:   ticket.VillaName,
		CompanyName: ticket.CompanyName,
	})
}

func (h *PaymentHandler) verify(c *gin.Context) {
	var input payment.VerificationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	captured, err := h.service.VerifyAndCapture(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(captured))
}

func (h *PaymentHandler) refund(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	refunded, err := h.service.Refund(c.Request.Context(), payment.RefundInput{
		PaymentID:   id,
		AmountPaise: domain.PaiseFromRupees(req.Amount),
		Reason:      req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(refunded))
}

func (h *PaymentHandler) get(c *gin.Context) {
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
	c.JSON(http.StatusOK, toPaymentResponse(found))
}

func (h *PaymentHandler) getByBooking(c *gin.Context) {
	bookingID, err := pathID(c, "bookingId")
	if err != nil {
		respondError(c, err)
		return
	}

	found, err := h.service.GetByBookingID(c.Request.Context(), bookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(found))
}

func (h *PaymentHandler) updateStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req updatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := domain.ParsePaymentStatus(req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), id, status, req.Reference)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(updated))
}

func (h *PaymentHandler) delete(c *gin.Context) {
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

func toPaymentResponse(p *domain.Payment) paymentResponse {
	return paymentResponse{
		ID:               p.ID,
		BookingID:        p.BookingID,
		Amount:           domain.Rupees(p.AmountPaise),
		Method:           p.Method,
		Gateway:          p.Gateway,
		GatewayReference: p.GatewayReference,
		Status:           string(p.Status),
		PaymentDate:      p.PaymentDate.Format(dateFormat),
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        p.UpdatedAt.Format(time.RFC3339),
	}
}
