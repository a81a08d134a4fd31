package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"metro/internal/domain"
	"metro/internal/session"
)

// Passenger count limits per booking.
const (
	MinPassengers = 1
	MaxPassengers = 10
)

// paymentLockTTL bounds how long a crashed payment can hold a session.
const paymentLockTTL = 30 * time.Second

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// BookingService runs the booking flow over a session: fare calculation,
// payment and ticket issue. StartBooking and Reset mutate the given state and
// callers persist it; Pay persists its own outcome.
type BookingService struct {
	network  *Network
	fares    *FareEngine
	schedule *ScheduleService
	payments *PaymentService
	issuer   *TicketIssuer
	notifier *NotificationService
	sessions session.Store
	locker   session.Locker
	now      func() time.Time
}

// BookingDeps contains the collaborators of a BookingService.
type BookingDeps struct {
	Network       *Network
	Schedule      *ScheduleService
	Payments      *PaymentService
	Issuer        *TicketIssuer
	Notifications *NotificationService // Optional
	Sessions      session.Store
	Locker        session.Locker
	Now           func() time.Time // Optional
}

// NewBookingService creates a new BookingService.
func NewBookingService(deps BookingDeps) *BookingService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		network:  deps.Network,
		fares:    NewFareEngine(deps.Network),
		schedule: deps.Schedule,
		payments: deps.Payments,
		issuer:   deps.Issuer,
		notifier: deps.Notifications,
		sessions: deps.Sessions,
		locker:   deps.Locker,
		now:      now,
	}
}

// Network returns the network the service books on.
func (s *BookingService) Network() *Network {
	return s.network
}

// Fares returns the fare engine.
func (s *BookingService) Fares() *FareEngine {
	return s.fares
}

// Schedule returns the schedule service.
func (s *BookingService) Schedule() *ScheduleService {
	return s.schedule
}

// BookingRequest is the journey and passenger selection submitted on the booking form.
type BookingRequest struct {
	Origin      string
	Destination string
	TicketType  string
	Passengers  []domain.Passenger
}

// Validate checks a booking request and reports every problem at once.
func (s *BookingService) Validate(req BookingRequest) error {
	var msgs []string

	_, originOK := s.network.Offset(req.Origin)
	_, destOK := s.network.Offset(req.Destination)
	if !originOK {
		msgs = append(msgs, fmt.Sprintf("Unknown departure station %q", req.Origin))
	}
	if !destOK {
		msgs = append(msgs, fmt.Sprintf("Unknown arrival station %q", req.Destination))
	}
	if originOK && destOK && req.Origin == req.Destination {
		msgs = append(msgs, "Departure and arrival stations cannot be the same.")
	}
	if _, ok := s.network.Multiplier(req.TicketType); !ok {
		msgs = append(msgs, fmt.Sprintf("Unknown ticket type %q", req.TicketType))
	}

	if n := len(req.Passengers); n < MinPassengers || n > MaxPassengers {
		msgs = append(msgs, fmt.Sprintf("Passenger count must be between %d and %d", MinPassengers, MaxPassengers))
	}
	for i, p := range req.Passengers {
		if strings.TrimSpace(p.Name) == "" {
			msgs = append(msgs, fmt.Sprintf("Passenger %d name cannot be empty", i+1))
		}
		if !phonePattern.MatchString(p.Phone) {
			msgs = append(msgs, fmt.Sprintf("Passenger %d phone number must be 10 digits", i+1))
		}
	}

	if len(msgs) > 0 {
		return &ValidationError{Messages: msgs}
	}
	return nil
}

// StartBooking validates the request and replaces the session's draft with a
// newly priced one. The previous payment attempt is cleared.
func (s *BookingService) StartBooking(ctx context.Context, st *session.State, req BookingRequest) (*domain.DraftBooking, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	quote, err := s.fares.Quote(req.Origin, req.Destination, req.TicketType)
	if err != nil {
		return nil, err
	}

	departures, err := s.schedule.NextTrains(quote.Direction)
	if err != nil {
		return nil, err
	}

	passengers := make([]domain.Passenger, len(req.Passengers))
	for i, p := range req.Passengers {
		passengers[i] = domain.Passenger{Name: strings.TrimSpace(p.Name), Phone: p.Phone}
	}

	draft := &domain.DraftBooking{
		ID:          uuid.New().String(),
		Origin:      req.Origin,
		Destination: req.Destination,
		TicketType:  req.TicketType,
		Passengers:  passengers,
		Fare:        quote.Fare,
		Total:       quote.Fare * len(passengers),
		Direction:   quote.Direction,
		Departures:  departures,
		CreatedAt:   s.now(),
	}

	st.Reset()
	st.Draft = draft

	log.Printf("[BOOKING] draft created: session=%s draft=%s journey=%q type=%q passengers=%d total=%d",
		st.ID, draft.ID, Journey(draft.Origin, draft.Destination), draft.TicketType, len(passengers), draft.Total)

	return draft, nil
}

// Pay charges the session's draft. On success the ticket is issued and
// appended to the history; on failure the draft is kept for another attempt.
// A draft is issued at most one ticket.
//
// While the payment lock is held the state is reloaded from the session
// store, so st is replaced by the stored copy, and the outcome is saved
// before the lock is released. Callers must not save st again.
func (s *BookingService) Pay(ctx context.Context, st *session.State, card domain.Card) (*domain.IssuedTicket, error) {
	if st.Draft == nil {
		return nil, ErrNoDraftBooking
	}
	if st.Draft.Paid() {
		return nil, ErrDraftAlreadyPaid
	}

	locked, err := s.locker.Acquire(ctx, st.ID, paymentLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire payment lock: %w", err)
	}
	if !locked {
		return nil, ErrPaymentInProgress
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), st.ID); err != nil {
			log.Printf("[BOOKING] release payment lock: session=%s err=%v", st.ID, err)
		}
	}()

	// Another request may have paid since st was loaded.
	if err := s.reload(ctx, st); err != nil {
		return nil, err
	}
	draft := st.Draft
	if draft == nil {
		return nil, ErrNoDraftBooking
	}
	if draft.Paid() {
		return nil, ErrDraftAlreadyPaid
	}

	ticket, payErr := s.charge(ctx, st, draft, card)

	// The charge may have gone through even if the client went away.
	if err := s.sessions.Save(context.WithoutCancel(ctx), st); err != nil {
		log.Printf("[BOOKING] save after payment failed: session=%s draft=%s payment_id=%s err=%v",
			st.ID, draft.ID, st.Payment.PaymentID, err)
		return nil, fmt.Errorf("save session %s: %w", st.ID, err)
	}
	return ticket, payErr
}

// reload replaces st with the stored state. A session that was never saved
// keeps the caller's copy.
func (s *BookingService) reload(ctx context.Context, st *session.State) error {
	stored, err := s.sessions.Get(ctx, st.ID)
	if errors.Is(err, session.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session %s: %w", st.ID, err)
	}
	*st = *stored
	return nil
}

// charge runs the payment and records its outcome on st.
func (s *BookingService) charge(ctx context.Context, st *session.State, draft *domain.DraftBooking, card domain.Card) (*domain.IssuedTicket, error) {
	st.Payment = domain.PaymentAttempt{Attempted: true}

	paymentID, err := s.payments.ProcessPayment(ctx, draft.Total, card)
	if err != nil {
		if !IsCardError(err) && !errors.Is(err, ErrPaymentDeclined) {
			// Cancellation or gateway fault; nothing to show as a decline.
			st.Payment = domain.PaymentAttempt{}
			return nil, err
		}
		st.Payment.Status = domain.PaymentStatusFailed
		st.Payment.Message = err.Error()
		if s.notifier != nil {
			_ = s.notifier.NotifyPaymentFailed(ctx, draft, err.Error())
		}
		return nil, err
	}

	ticket, err := s.issuer.Issue(draft, paymentID, st.HasTicket)
	if err != nil {
		// The charge went through; keep the id so it can be traced.
		st.Payment.Status = domain.PaymentStatusFailed
		st.Payment.PaymentID = paymentID
		st.Payment.Message = "Ticket could not be issued for payment " + paymentID
		log.Printf("[BOOKING] ticket issue failed: session=%s draft=%s payment_id=%s err=%v",
			st.ID, draft.ID, paymentID, err)
		return nil, fmt.Errorf("%w: %w", ErrTicketNotIssued, err)
	}

	st.AddTicket(*ticket)
	draft.IssuedTicket = ticket.ID
	st.Payment.Status = domain.PaymentStatusSuccess
	st.Payment.PaymentID = paymentID
	st.Payment.TicketID = ticket.ID

	if s.notifier != nil {
		_ = s.notifier.NotifyTicketIssued(ctx, ticket)
	}

	log.Printf("[BOOKING] ticket issued: session=%s draft=%s ticket=%s payment_id=%s",
		st.ID, draft.ID, ticket.ID, paymentID)

	return ticket, nil
}

// Reset starts a new booking cycle: the draft and payment attempt are cleared.
func (s *BookingService) Reset(st *session.State) {
	st.Reset()
}

// Ticket returns an issued ticket from the session history.
func (s *BookingService) Ticket(st *session.State, id string) (*domain.IssuedTicket, error) {
	t, ok := st.Ticket(id)
	if !ok {
		return nil, ErrTicketNotFound
	}
	return &t, nil
}
