package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metro/internal/domain"
	"metro/internal/service"
)

func TestMapErrorToHTTPStatus(t *testing.T) {
	testCases := []struct {
		err  error
		want int
	}{
		{service.ErrTicketNotFound, http.StatusNotFound},
		{service.ErrNoDraftBooking, http.StatusNotFound},
		{&service.ValidationError{Messages: []string{"x"}}, http.StatusBadRequest},
		{fmt.Errorf("quote: %w", service.ErrUnknownStation), http.StatusBadRequest},
		{service.ErrUnknownTicketType, http.StatusBadRequest},
		{service.ErrInvalidDirection, http.StatusBadRequest},
		{service.ErrInvalidCardNumber, http.StatusPaymentRequired},
		{service.ErrCardExpired, http.StatusPaymentRequired},
		{&service.DeclineError{Reason: "Network error"}, http.StatusPaymentRequired},
		{service.ErrDraftAlreadyPaid, http.StatusConflict},
		{service.ErrPaymentInProgress, http.StatusConflict},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{fmt.Errorf("%w: %w", service.ErrTicketNotIssued, errors.New("qr")), http.StatusInternalServerError},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, mapErrorToHTTPStatus(tc.err), "error %v", tc.err)
	}
}

func TestPaymentRecorded(t *testing.T) {
	assert.True(t, paymentRecorded(service.ErrInvalidCVV))
	assert.True(t, paymentRecorded(&service.DeclineError{Reason: "Insufficient funds"}))
	assert.True(t, paymentRecorded(fmt.Errorf("%w: %w", service.ErrTicketNotIssued, errors.New("qr"))))
	assert.False(t, paymentRecorded(service.ErrPaymentInProgress))
	assert.False(t, paymentRecorded(context.Canceled))
}

func TestRespondError_Body(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("validation lists every message", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondError(c, &service.ValidationError{Messages: []string{"a", "b"}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "validation failed", resp.Error)
		assert.Equal(t, []string{"a", "b"}, resp.Errors)
	})

	t.Run("internal errors are not leaked", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondError(c, errors.New("redis: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "redis")
		assert.Len(t, c.Errors, 1)
	})
}

func TestResizePassengers(t *testing.T) {
	p := []domain.Passenger{{Name: "Asha", Phone: "9876543210"}}

	grown := resizePassengers(p, 3)
	assert.Len(t, grown, 3)
	assert.Equal(t, "Asha", grown[0].Name)

	assert.Len(t, resizePassengers(p, 0), service.MinPassengers)
	assert.Len(t, resizePassengers(p, 50), service.MaxPassengers)
}

func TestNewTicketView_Links(t *testing.T) {
	v := newTicketView(domain.IssuedTicket{ID: "CMRL-1234-20250315", QRCode: "cXI="})

	assert.Equal(t, "/tickets/CMRL-1234-20250315/qr.png", v.QRURL)
	assert.Equal(t, "/tickets/CMRL-1234-20250315/ticket.pdf", v.PDFURL)
	assert.Equal(t, "data:image/png;base64,cXI=", string(v.QRDataURI))
}
