package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// BookingAttributes returns middleware that tags the New Relic transaction
// with the booking stage of the session after the handler has run.
// It must be registered after Session.
func BookingAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		txn := nrgin.Transaction(c)
		if txn == nil {
			return
		}

		st := SessionFrom(c)
		if st == nil {
			return
		}

		txn.AddAttribute("session.tickets", len(st.Tickets))
		stage := "browsing"
		switch {
		case st.Draft == nil:
		case st.Draft.Paid():
			stage = "paid"
		case st.Payment.Attempted:
			stage = "payment_" + string(st.Payment.Status)
		default:
			stage = "priced"
		}
		txn.AddAttribute("booking.stage", stage)

		// Record error if present.
		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}
