package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"metro/internal/domain"
	"metro/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	booking *service.BookingService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(booking *service.BookingService) *PaymentHandler {
	return &PaymentHandler{booking: booking}
}

// ProcessPaymentRequest is the HTTP request body for paying the current booking.
type ProcessPaymentRequest struct {
	CardName    string `json:"card_name"`
	CardNumber  string `json:"card_number"`
	CardBrand   string `json:"card_brand"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	CVV         string `json:"cvv"`
}

// PaymentResponse is the HTTP response for payment operations.
type PaymentResponse struct {
	Status    domain.PaymentStatus `json:"status"`
	PaymentID string               `json:"payment_id,omitempty"`
	Message   string               `json:"message,omitempty"`
	Ticket    *domain.IssuedTicket `json:"ticket,omitempty"`
}

// ProcessPayment handles POST /v1/payments
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	var req ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	st := currentSession(c)
	ticket, err := h.booking.Pay(c.Request.Context(), st, domain.Card{
		Name:        req.CardName,
		Number:      req.CardNumber,
		Brand:       req.CardBrand,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		CVV:         req.CVV,
	})

	// Pay saves every recorded outcome; report it with the attempt.
	if err != nil {
		if paymentRecorded(err) {
			respondJSON(c, mapErrorToHTTPStatus(err), PaymentResponse{
				Status:    domain.PaymentStatusFailed,
				PaymentID: st.Payment.PaymentID,
				Message:   st.Payment.Message,
			})
			return
		}
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, PaymentResponse{
		Status:    domain.PaymentStatusSuccess,
		PaymentID: ticket.PaymentID,
		Ticket:    ticket,
	})
}

// paymentRecorded reports whether a failed Pay left its outcome on the session.
func paymentRecorded(err error) bool {
	return service.IsCardError(err) ||
		errors.Is(err, service.ErrPaymentDeclined) ||
		errors.Is(err, service.ErrTicketNotIssued)
}
