package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"metro/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"` // Every validation problem
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	resp := ErrorResponse{Error: err.Error()}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		resp.Error = "validation failed"
		resp.Errors = verr.Messages
	}
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		resp.Error = "internal error"
	}

	c.JSON(code, resp)
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var verr *service.ValidationError

	switch {
	// Not found errors
	case errors.Is(err, service.ErrTicketNotFound),
		errors.Is(err, service.ErrNoDraftBooking):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.As(err, &verr),
		errors.Is(err, service.ErrUnknownStation),
		errors.Is(err, service.ErrUnknownTicketType),
		errors.Is(err, service.ErrInvalidDirection):
		return http.StatusBadRequest

	// Card format errors and declines
	case service.IsCardError(err),
		errors.Is(err, service.ErrPaymentDeclined):
		return http.StatusPaymentRequired

	// Conflict errors
	case errors.Is(err, service.ErrDraftAlreadyPaid),
		errors.Is(err, service.ErrPaymentInProgress):
		return http.StatusConflict

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
