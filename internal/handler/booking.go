package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"metro/internal/domain"
	"metro/internal/service"
	"metro/internal/session"
)

// BookingHandler handles HTTP requests for fares, schedules and draft bookings.
type BookingHandler struct {
	booking  *service.BookingService
	sessions session.Store
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(booking *service.BookingService, sessions session.Store) *BookingHandler {
	return &BookingHandler{
		booking:  booking,
		sessions: sessions,
	}
}

// NetworkResponse is the HTTP response describing the network.
type NetworkResponse struct {
	Name        string              `json:"name"`
	Stations    []domain.Station    `json:"stations"`
	TicketTypes []domain.TicketType `json:"ticket_types"`
}

// QuoteRequest is the HTTP request body for a fare quote.
type QuoteRequest struct {
	Origin         string `json:"origin" binding:"required"`
	Destination    string `json:"destination" binding:"required"`
	TicketType     string `json:"ticket_type" binding:"required"`
	PassengerCount int    `json:"passenger_count,omitempty"`
}

// QuoteResponse is the HTTP response for a fare quote.
type QuoteResponse struct {
	service.FareQuote
	PassengerCount int `json:"passenger_count"`
	Total          int `json:"total"`
}

// ScheduleResponse is the HTTP response listing upcoming departures.
type ScheduleResponse struct {
	Direction      domain.Direction `json:"direction"`
	HeadwayMinutes int              `json:"headway_minutes"`
	Departures     []string         `json:"departures"`
}

// CreateBookingRequest is the HTTP request body for creating a draft booking.
type CreateBookingRequest struct {
	Origin      string             `json:"origin"`
	Destination string             `json:"destination"`
	TicketType  string             `json:"ticket_type"`
	Passengers  []domain.Passenger `json:"passengers"`
}

// CurrentBookingResponse is the HTTP response for the session's draft booking.
type CurrentBookingResponse struct {
	Booking *domain.DraftBooking  `json:"booking"`
	Payment domain.PaymentAttempt `json:"payment"`
}

// GetNetwork handles GET /v1/network
func (h *BookingHandler) GetNetwork(c *gin.Context) {
	network := h.booking.Network()
	respondJSON(c, http.StatusOK, NetworkResponse{
		Name:        network.Name,
		Stations:    network.Stations(),
		TicketTypes: network.TicketTypes(),
	})
}

// QuoteFare handles POST /v1/fares/quote
func (h *BookingHandler) QuoteFare(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	count := req.PassengerCount
	if count == 0 {
		count = 1
	}
	if count < service.MinPassengers || count > service.MaxPassengers {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "passenger_count must be between 1 and 10"})
		return
	}

	quote, err := h.booking.Fares().Quote(req.Origin, req.Destination, req.TicketType)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, QuoteResponse{
		FareQuote:      quote,
		PassengerCount: count,
		Total:          quote.Fare * count,
	})
}

// GetSchedule handles GET /v1/schedule?direction=northbound|southbound
func (h *BookingHandler) GetSchedule(c *gin.Context) {
	direction := domain.Direction(c.Query("direction"))

	headway, err := service.Headway(direction)
	if err != nil {
		respondError(c, err)
		return
	}
	departures, err := h.booking.Schedule().NextTrains(direction)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, ScheduleResponse{
		Direction:      direction,
		HeadwayMinutes: int(headway.Minutes()),
		Departures:     departures,
	})
}

// CreateBooking handles POST /v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	st := currentSession(c)
	draft, err := h.booking.StartBooking(c.Request.Context(), st, service.BookingRequest{
		Origin:      req.Origin,
		Destination: req.Destination,
		TicketType:  req.TicketType,
		Passengers:  req.Passengers,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if err := saveSession(c, h.sessions, st); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, draft)
}

// GetCurrentBooking handles GET /v1/bookings/current
func (h *BookingHandler) GetCurrentBooking(c *gin.Context) {
	st := currentSession(c)
	if st.Draft == nil {
		respondError(c, service.ErrNoDraftBooking)
		return
	}

	respondJSON(c, http.StatusOK, CurrentBookingResponse{
		Booking: st.Draft,
		Payment: st.Payment,
	})
}

// ResetBooking handles DELETE /v1/bookings/current
func (h *BookingHandler) ResetBooking(c *gin.Context) {
	st := currentSession(c)
	h.booking.Reset(st)

	if err := saveSession(c, h.sessions, st); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
