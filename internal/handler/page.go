package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"metro/internal/domain"
	"metro/internal/service"
	"metro/internal/session"
)

// expiryYears is how many years ahead the payment form offers.
const expiryYears = 10

// PageHandler serves the server-rendered booking pages.
type PageHandler struct {
	booking  *service.BookingService
	docs     *service.DocumentService
	sessions session.Store
	now      func() time.Time
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(booking *service.BookingService, docs *service.DocumentService, sessions session.Store) *PageHandler {
	return &PageHandler{
		booking:  booking,
		docs:     docs,
		sessions: sessions,
		now:      time.Now,
	}
}

// Home handles GET /
func (h *PageHandler) Home(c *gin.Context) {
	st := currentSession(c)
	form := h.defaultForm(st)

	if v := c.Query("passengers"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			form.Passengers = resizePassengers(form.Passengers, n)
		}
	}

	h.renderHome(c, http.StatusOK, st, form, nil)
}

// SubmitBooking handles POST /booking
func (h *PageHandler) SubmitBooking(c *gin.Context) {
	st := currentSession(c)
	form := parseBookingForm(c)

	_, err := h.booking.StartBooking(c.Request.Context(), st, service.BookingRequest{
		Origin:      form.Origin,
		Destination: form.Destination,
		TicketType:  form.TicketType,
		Passengers:  form.Passengers,
	})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			h.renderHome(c, http.StatusUnprocessableEntity, st, form, verr.Messages)
			return
		}
		h.fail(c, err)
		return
	}

	if err := saveSession(c, h.sessions, st); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// SubmitPayment handles POST /payment
func (h *PageHandler) SubmitPayment(c *gin.Context) {
	st := currentSession(c)

	_, err := h.booking.Pay(c.Request.Context(), st, parseCardForm(c))
	switch {
	case err == nil, paymentRecorded(err):
		// The outcome is saved on the session and shown on the home page.
	case errors.Is(err, service.ErrNoDraftBooking),
		errors.Is(err, service.ErrDraftAlreadyPaid):
	case errors.Is(err, service.ErrPaymentInProgress):
		h.renderHome(c, http.StatusConflict, st, h.defaultForm(st), []string{"A payment for this booking is already being processed."})
		return
	default:
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// ResetBooking handles POST /booking/reset
func (h *PageHandler) ResetBooking(c *gin.Context) {
	st := currentSession(c)
	h.booking.Reset(st)

	if err := saveSession(c, h.sessions, st); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// MyTickets handles GET /tickets
func (h *PageHandler) MyTickets(c *gin.Context) {
	st := currentSession(c)

	data := h.basePage("My Tickets", "tickets")
	for _, t := range st.History() {
		data.Tickets = append(data.Tickets, newTicketView(t))
	}
	c.HTML(http.StatusOK, "tickets.tmpl", data)
}

// About handles GET /about
func (h *PageHandler) About(c *gin.Context) {
	c.HTML(http.StatusOK, "about.tmpl", h.basePage("About", "about"))
}

// DownloadQR handles GET /tickets/:id/qr.png
func (h *PageHandler) DownloadQR(c *gin.Context) {
	sendQR(c, h.booking, c.Param("id"))
}

// DownloadPDF handles GET /tickets/:id/ticket.pdf
func (h *PageHandler) DownloadPDF(c *gin.Context) {
	sendPDF(c, h.booking, h.docs, c.Param("id"))
}

func (h *PageHandler) basePage(title, nav string) pageData {
	network := h.booking.Network()
	return pageData{
		Title:         title,
		Nav:           nav,
		NetworkName:   network.Name,
		Stations:      network.StationNames(),
		TicketTypes:   network.TicketTypes(),
		MinPassengers: service.MinPassengers,
		MaxPassengers: service.MaxPassengers,
	}
}

func (h *PageHandler) renderHome(c *gin.Context, code int, st *session.State, form bookingForm, errs []string) {
	data := h.basePage("Home", "home")
	data.Form = form
	data.Errors = errs
	data.Draft = st.Draft
	data.Payment = st.Payment
	data.CardBrands = domain.CardBrands
	for m := 1; m <= 12; m++ {
		data.Months = append(data.Months, m)
	}
	year := h.now().Year()
	for y := year; y < year+expiryYears; y++ {
		data.Years = append(data.Years, y)
	}

	if st.Payment.Status == domain.PaymentStatusSuccess {
		if t, ok := st.Ticket(st.Payment.TicketID); ok {
			v := newTicketView(t)
			data.Latest = &v
		}
	}

	c.HTML(code, "home.tmpl", data)
}

// defaultForm prefills the booking form from the current draft, if any.
func (h *PageHandler) defaultForm(st *session.State) bookingForm {
	if d := st.Draft; d != nil {
		return bookingForm{
			Origin:      d.Origin,
			Destination: d.Destination,
			TicketType:  d.TicketType,
			Passengers:  append([]domain.Passenger(nil), d.Passengers...),
		}
	}

	network := h.booking.Network()
	stations := network.StationNames()
	form := bookingForm{
		Origin:      stations[0],
		Destination: stations[len(stations)-1],
		Passengers:  make([]domain.Passenger, service.MinPassengers),
	}
	if types := network.TicketTypes(); len(types) > 0 {
		form.TicketType = types[0].Name
	}
	return form
}

func (h *PageHandler) fail(c *gin.Context, err error) {
	log.Printf("[PAGE] request failed: path=%s err=%v", c.Request.URL.Path, err)
	_ = c.Error(err)
	c.String(http.StatusInternalServerError, "Something went wrong. Please try again.")
}

func parseBookingForm(c *gin.Context) bookingForm {
	form := bookingForm{
		Origin:      c.PostForm("origin"),
		Destination: c.PostForm("destination"),
		TicketType:  c.PostForm("ticket_type"),
	}

	count, err := strconv.Atoi(c.PostForm("passenger_count"))
	if err != nil {
		count = service.MinPassengers
	}
	// Validation rejects the count; cap what is read from the form.
	if count > service.MaxPassengers {
		count = service.MaxPassengers + 1
	}
	for i := 0; i < count; i++ {
		idx := strconv.Itoa(i)
		form.Passengers = append(form.Passengers, domain.Passenger{
			Name:  c.PostForm("name_" + idx),
			Phone: c.PostForm("phone_" + idx),
		})
	}
	return form
}

func parseCardForm(c *gin.Context) domain.Card {
	month, _ := strconv.Atoi(c.PostForm("expiry_month"))
	year, _ := strconv.Atoi(c.PostForm("expiry_year"))
	return domain.Card{
		Name:        c.PostForm("card_name"),
		Number:      c.PostForm("card_number"),
		Brand:       c.PostForm("card_brand"),
		ExpiryMonth: month,
		ExpiryYear:  year,
		CVV:         c.PostForm("cvv"),
	}
}

// resizePassengers grows or shrinks the passenger rows to n, within limits.
func resizePassengers(p []domain.Passenger, n int) []domain.Passenger {
	if n < service.MinPassengers {
		n = service.MinPassengers
	}
	if n > service.MaxPassengers {
		n = service.MaxPassengers
	}
	out := make([]domain.Passenger, n)
	copy(out, p)
	return out
}
