// Package session holds per-visitor booking state: the ticket history,
// the draft being booked and the outcome of the last payment attempt.
package session

import (
	"time"

	"metro/internal/domain"
)

// State is the booking state of one session.
type State struct {
	ID        string                `json:"id"`
	Tickets   []domain.IssuedTicket `json:"tickets"` // Append-only, oldest first
	Draft     *domain.DraftBooking  `json:"draft,omitempty"`
	Payment   domain.PaymentAttempt `json:"payment"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// New returns an empty state for a session id.
func New(id string) *State {
	return &State{ID: id}
}

// Reset clears the draft and payment attempt. Issued tickets are kept.
func (s *State) Reset() {
	s.Draft = nil
	s.Payment = domain.PaymentAttempt{}
}

// AddTicket appends an issued ticket to the history.
func (s *State) AddTicket(t domain.IssuedTicket) {
	s.Tickets = append(s.Tickets, t)
}

// History returns issued tickets, most recent first.
func (s *State) History() []domain.IssuedTicket {
	out := make([]domain.IssuedTicket, len(s.Tickets))
	for i, t := range s.Tickets {
		out[len(s.Tickets)-1-i] = t
	}
	return out
}

// Ticket looks up an issued ticket by id.
func (s *State) Ticket(id string) (domain.IssuedTicket, bool) {
	for _, t := range s.Tickets {
		if t.ID == id {
			return t, true
		}
	}
	return domain.IssuedTicket{}, false
}

// HasTicket reports whether a ticket with id was issued in this session.
func (s *State) HasTicket(id string) bool {
	_, ok := s.Ticket(id)
	return ok
}

// LatestTicket returns the most recently issued ticket.
func (s *State) LatestTicket() (domain.IssuedTicket, bool) {
	if len(s.Tickets) == 0 {
		return domain.IssuedTicket{}, false
	}
	return s.Tickets[len(s.Tickets)-1], true
}

// Clone returns a copy that shares no mutable memory with s.
// Issued tickets are immutable so their passenger slices are shared.
func (s *State) Clone() *State {
	c := *s
	if s.Tickets != nil {
		c.Tickets = make([]domain.IssuedTicket, len(s.Tickets))
		copy(c.Tickets, s.Tickets)
	}
	if s.Draft != nil {
		d := *s.Draft
		d.Passengers = append([]domain.Passenger(nil), s.Draft.Passengers...)
		d.Departures = append([]string(nil), s.Draft.Departures...)
		c.Draft = &d
	}
	return &c
}
