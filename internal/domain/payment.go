package domain

// PaymentStatus represents the outcome of the last payment attempt.
type PaymentStatus string

const (
	PaymentStatusNone    PaymentStatus = ""
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// PaymentAttempt tracks the latest payment attempt for the current draft.
type PaymentAttempt struct {
	Attempted bool          `json:"attempted"`
	Status    PaymentStatus `json:"status"`
	Message   string        `json:"message,omitempty"` // Failure reason
	PaymentID string        `json:"payment_id,omitempty"`
	TicketID  string        `json:"ticket_id,omitempty"`
}

// Card holds the card fields submitted with a payment. It is never stored.
type Card struct {
	Name        string
	Number      string
	Brand       string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string
}

// CardBrands lists the card brands offered on the payment form.
var CardBrands = []string{"Visa", "MasterCard", "Rupay"}
