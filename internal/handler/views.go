package handler

import (
	"html/template"
	"strings"

	"metro/internal/domain"
	"metro/internal/qr"
	"metro/internal/service"
)

// TemplateFuncs are the helpers available to the page templates.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"rupees": service.FormatRupees,
		"join":   strings.Join,
		"inc":    func(i int) int { return i + 1 },
	}
}

// bookingForm holds the values shown in the booking form.
type bookingForm struct {
	Origin      string
	Destination string
	TicketType  string
	Passengers  []domain.Passenger
}

// ticketView is an issued ticket with its display and download links.
type ticketView struct {
	domain.IssuedTicket
	QRDataURI template.URL
	QRURL     string
	PDFURL    string
}

func newTicketView(t domain.IssuedTicket) ticketView {
	return ticketView{
		IssuedTicket: t,
		// Ticket QR payloads are produced by the issuer, never by the visitor.
		QRDataURI: template.URL(qr.DataURI(t.QRCode)),
		QRURL:     "/tickets/" + t.ID + "/qr.png",
		PDFURL:    "/tickets/" + t.ID + "/ticket.pdf",
	}
}

// pageData is the data passed to every page template.
type pageData struct {
	Title         string
	Nav           string
	NetworkName   string
	Stations      []string
	TicketTypes   []domain.TicketType
	MinPassengers int
	MaxPassengers int

	Form       bookingForm
	Errors     []string
	Draft      *domain.DraftBooking
	Payment    domain.PaymentAttempt
	Latest     *ticketView
	Tickets    []ticketView
	CardBrands []string
	Months     []int
	Years      []int
}
