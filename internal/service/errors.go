package service

import (
	"errors"
	"strings"
)

var (
	// ErrUnknownStation is returned when a station name is not on the network.
	ErrUnknownStation = errors.New("unknown station")

	// ErrUnknownTicketType is returned when a ticket type is not offered.
	ErrUnknownTicketType = errors.New("unknown ticket type")

	// ErrInvalidDirection is returned when a direction is neither northbound nor southbound.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrInvalidNetwork is returned when a network definition fails validation.
	ErrInvalidNetwork = errors.New("invalid network")

	// ErrInvalidCardNumber is returned when the card number is not 16 digits.
	ErrInvalidCardNumber = errors.New("Invalid card number")

	// ErrCardExpired is returned when the card expiry is before the current month.
	ErrCardExpired = errors.New("Card expired")

	// ErrInvalidCVV is returned when the CVV is not 3 digits.
	ErrInvalidCVV = errors.New("Invalid CVV")

	// ErrPaymentDeclined matches every gateway decline.
	ErrPaymentDeclined = errors.New("payment declined")

	// ErrNoDraftBooking is returned when paying without a calculated fare.
	ErrNoDraftBooking = errors.New("no booking selected")

	// ErrDraftAlreadyPaid is returned when paying a draft that already has a ticket.
	ErrDraftAlreadyPaid = errors.New("booking already paid")

	// ErrPaymentInProgress is returned when another payment for the session is running.
	ErrPaymentInProgress = errors.New("payment already in progress")

	// ErrTicketNotFound is returned when a ticket id is not in the session history.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrTicketNotIssued is returned when a payment succeeded but its ticket
	// could not be built.
	ErrTicketNotIssued = errors.New("ticket could not be issued")

	// ErrTicketIDExhausted is returned when no unused ticket id could be drawn.
	ErrTicketIDExhausted = errors.New("no free ticket id")
)

// ValidationError collects every problem found in a booking request.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// DeclineError is a simulated gateway decline carrying a user-facing reason.
type DeclineError struct {
	Reason string
}

func (e *DeclineError) Error() string {
	return e.Reason
}

// Is makes every DeclineError match ErrPaymentDeclined.
func (e *DeclineError) Is(target error) bool {
	return target == ErrPaymentDeclined
}

// IsCardError reports whether err is a card format rejection.
func IsCardError(err error) bool {
	return errors.Is(err, ErrInvalidCardNumber) ||
		errors.Is(err, ErrCardExpired) ||
		errors.Is(err, ErrInvalidCVV)
}
