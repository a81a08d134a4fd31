package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"metro/internal/middleware"
	"metro/internal/qr"
	"metro/internal/service"
	"metro/internal/session"
)

// currentSession returns the request's session state. The Session middleware
// always sets one; a missing state is a wiring error.
func currentSession(c *gin.Context) *session.State {
	st := middleware.SessionFrom(c)
	if st == nil {
		panic("handler: session middleware not installed")
	}
	return st
}

// saveSession persists the request's session state.
func saveSession(c *gin.Context, store session.Store, st *session.State) error {
	if err := store.Save(c.Request.Context(), st); err != nil {
		return fmt.Errorf("save session %s: %w", st.ID, err)
	}
	return nil
}

// sendQR writes a ticket's QR code as a PNG download.
func sendQR(c *gin.Context, booking *service.BookingService, ticketID string) {
	ticket, err := booking.Ticket(currentSession(c), ticketID)
	if err != nil {
		respondError(c, err)
		return
	}

	png, err := qr.DecodeBase64(ticket.QRCode)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+service.TicketFilename(ticket.ID, "png")+`"`)
	c.Data(http.StatusOK, "image/png", png)
}

// sendPDF writes a ticket's printable e-ticket as a PDF download.
func sendPDF(c *gin.Context, booking *service.BookingService, docs *service.DocumentService, ticketID string) {
	ticket, err := booking.Ticket(currentSession(c), ticketID)
	if err != nil {
		respondError(c, err)
		return
	}

	pdf, filename, err := docs.TicketPDF(ticket)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
