package domain

import "time"

// Passenger holds the contact details collected for each traveller.
type Passenger struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// DraftBooking is a fare-calculated journey awaiting payment.
type DraftBooking struct {
	ID           string      `json:"id"`
	Origin       string      `json:"origin"`
	Destination  string      `json:"destination"`
	TicketType   string      `json:"ticket_type"`
	Passengers   []Passenger `json:"passengers"`
	Fare         int         `json:"fare"`  // Per passenger
	Total        int         `json:"total"` // Fare * len(Passengers)
	Direction    Direction   `json:"direction"`
	Departures   []string    `json:"departures"` // Fixed when the draft is created
	CreatedAt    time.Time   `json:"created_at"`
	IssuedTicket string      `json:"issued_ticket,omitempty"` // Set once paid
}

// Paid reports whether a ticket has already been issued for this draft.
func (d *DraftBooking) Paid() bool {
	return d.IssuedTicket != ""
}

// IssuedTicket is a paid booking. It is never modified after issue.
type IssuedTicket struct {
	ID          string      `json:"ticket_id"`
	DraftID     string      `json:"draft_id"`
	Origin      string      `json:"origin"`
	Destination string      `json:"destination"`
	Journey     string      `json:"journey"`
	TicketType  string      `json:"type"`
	Passengers  []Passenger `json:"passengers"`
	Fare        int         `json:"fare"` // Total paid
	ValidOn     string      `json:"valid_on"`
	PaymentID   string      `json:"payment_id"`
	QRCode      string      `json:"qr_data"` // Base64 PNG
	IssuedAt    time.Time   `json:"issued_at"`
}
