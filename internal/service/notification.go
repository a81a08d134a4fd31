package service

import (
	"context"
	"log"
	"time"

	"metro/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationTicketIssued  NotificationType = "TICKET_ISSUED"
	NotificationPaymentFailed NotificationType = "PAYMENT_FAILED"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type      NotificationType
	Recipient string // Lead passenger phone
	Title     string
	Message   string
	CreatedAt time.Time
}

// NotificationService records booking notifications. There is no delivery
// channel; notifications are written to the log.
type NotificationService struct{}

// NewNotificationService creates a new NotificationService.
func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotifyTicketIssued tells the lead passenger their ticket is ready.
func (s *NotificationService) NotifyTicketIssued(ctx context.Context, ticket *domain.IssuedTicket) error {
	return s.send(ctx, Notification{
		Type:      NotificationTicketIssued,
		Recipient: leadPhone(ticket.Passengers),
		Title:     "Ticket Booked",
		Message:   "Ticket " + ticket.ID + " for " + ticket.Journey + " is valid on " + ticket.ValidOn,
		CreatedAt: time.Now(),
	})
}

// NotifyPaymentFailed tells the lead passenger a payment did not go through.
func (s *NotificationService) NotifyPaymentFailed(ctx context.Context, draft *domain.DraftBooking, reason string) error {
	return s.send(ctx, Notification{
		Type:      NotificationPaymentFailed,
		Recipient: leadPhone(draft.Passengers),
		Title:     "Payment Failed",
		Message:   "Payment for " + Journey(draft.Origin, draft.Destination) + " failed: " + reason,
		CreatedAt: time.Now(),
	})
}

func (s *NotificationService) send(ctx context.Context, n Notification) error {
	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s, Message=%s",
		n.Type, maskPhone(n.Recipient), n.Title, n.Message)
	return nil
}

func leadPhone(passengers []domain.Passenger) string {
	if len(passengers) == 0 {
		return ""
	}
	return passengers[0].Phone
}

// maskPhone keeps the last four digits.
func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	masked := make([]byte, len(phone))
	for i := range masked {
		if i < len(phone)-4 {
			masked[i] = '*'
		} else {
			masked[i] = phone[i]
		}
	}
	return string(masked)
}
