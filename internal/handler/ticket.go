package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"metro/internal/service"
)

// TicketHandler handles HTTP requests for the session's issued tickets.
type TicketHandler struct {
	booking *service.BookingService
	docs    *service.DocumentService
}

// NewTicketHandler creates a new TicketHandler.
func NewTicketHandler(booking *service.BookingService, docs *service.DocumentService) *TicketHandler {
	return &TicketHandler{
		booking: booking,
		docs:    docs,
	}
}

// GetAll handles GET /v1/tickets
// Tickets are listed most recent first.
func (h *TicketHandler) GetAll(c *gin.Context) {
	respondJSON(c, http.StatusOK, gin.H{"tickets": currentSession(c).History()})
}

// GetTicket handles GET /v1/tickets/:id
func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticket, err := h.booking.Ticket(currentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, ticket)
}

// DownloadQR handles GET /v1/tickets/:id/qr
func (h *TicketHandler) DownloadQR(c *gin.Context) {
	sendQR(c, h.booking, c.Param("id"))
}

// DownloadPDF handles GET /v1/tickets/:id/pdf
func (h *TicketHandler) DownloadPDF(c *gin.Context) {
	sendPDF(c, h.booking, h.docs, c.Param("id"))
}
