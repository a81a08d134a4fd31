package service

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"metro/internal/domain"
)

const (
	ticketPrefix     = "CMRL"
	ticketDateLayout = "20060102"
	validOnLayout    = "02 Jan 2006"

	// maxTicketIDAttempts bounds the draws for an id not yet taken.
	maxTicketIDAttempts = 100
)

// QREncoder turns a ticket descriptor into a base64 PNG.
type QREncoder interface {
	EncodeBase64(content string) (string, error)
}

// TicketIssuer builds tickets for paid drafts.
type TicketIssuer struct {
	encoder QREncoder
	now     func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewTicketIssuer creates a new TicketIssuer. A nil clock uses time.Now and a
// nil source is randomly seeded.
func NewTicketIssuer(encoder QREncoder, now func() time.Time, rng *rand.Rand) *TicketIssuer {
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &TicketIssuer{
		encoder: encoder,
		now:     now,
		rng:     rng,
	}
}

// Descriptor is the string encoded in a ticket's QR code.
func Descriptor(origin, destination, ticketType, paymentID string) string {
	return strings.Join([]string{ticketPrefix, origin, destination, ticketType, paymentID}, "|")
}

// Journey formats the human-readable journey of a ticket.
func Journey(origin, destination string) string {
	return origin + " → " + destination
}

// Issue creates the ticket for a draft paid under paymentID. The id is drawn
// again while taken reports it as already used; a nil taken accepts any id.
func (i *TicketIssuer) Issue(draft *domain.DraftBooking, paymentID string, taken func(id string) bool) (*domain.IssuedTicket, error) {
	now := i.now()

	id, err := i.freeTicketID(now, taken)
	if err != nil {
		return nil, err
	}

	qrData, err := i.encoder.EncodeBase64(Descriptor(draft.Origin, draft.Destination, draft.TicketType, paymentID))
	if err != nil {
		return nil, fmt.Errorf("encode ticket qr: %w", err)
	}

	passengers := make([]domain.Passenger, len(draft.Passengers))
	copy(passengers, draft.Passengers)

	return &domain.IssuedTicket{
		ID:          id,
		DraftID:     draft.ID,
		Origin:      draft.Origin,
		Destination: draft.Destination,
		Journey:     Journey(draft.Origin, draft.Destination),
		TicketType:  draft.TicketType,
		Passengers:  passengers,
		Fare:        draft.Total,
		ValidOn:     now.Format(validOnLayout),
		PaymentID:   paymentID,
		QRCode:      qrData,
		IssuedAt:    now,
	}, nil
}

func (i *TicketIssuer) freeTicketID(now time.Time, taken func(string) bool) (string, error) {
	for attempt := 0; attempt < maxTicketIDAttempts; attempt++ {
		id := i.ticketID(now)
		if taken == nil || !taken(id) {
			return id, nil
		}
	}
	return "", ErrTicketIDExhausted
}

func (i *TicketIssuer) ticketID(now time.Time) string {
	i.mu.Lock()
	n := 1000 + i.rng.IntN(9000)
	i.mu.Unlock()
	return fmt.Sprintf("%s-%d-%s", ticketPrefix, n, now.Format(ticketDateLayout))
}

// TicketFilename is the download name of a ticket artifact.
func TicketFilename(ticketID, ext string) string {
	return "cmrl_ticket_" + ticketID + "." + ext
}
