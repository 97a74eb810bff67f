package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"

	"hustle/internal/catalog"
	"hustle/internal/domain"
	"hustle/internal/pricing"
	"hustle/internal/repository"
	"hustle/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
// Server errors are also reported to New Relic when the request is traced.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code >= http.StatusInternalServerError {
		nrgin.Transaction(c).NoticeError(err)
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrWalletNotFound),
		errors.Is(err, catalog.ErrItemNotFound),
		errors.Is(err, catalog.ErrVendorNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidRunnerID),
		errors.Is(err, service.ErrInvalidTaskID),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, pricing.ErrUnknownCoupon),
		errors.Is(err, pricing.ErrInvalidItemCost):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusPaymentRequired

	// Authentication errors
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidOTP):
		return http.StatusUnauthorized

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNotRunner),
		errors.Is(err, service.ErrPhoneNotVerified),
		errors.Is(err, service.ErrNotTaskOwner),
		errors.Is(err, service.ErrRunnerNotAssigned),
		errors.Is(err, service.ErrCannotAcceptOwnTask):
		return http.StatusForbidden

	// Conflict errors
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, repository.ErrAlreadyExists),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, service.ErrHoldMismatch),
		errors.Is(err, service.ErrTaskBeingAccepted),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, catalog.ErrItemUnavailable):
		return http.StatusConflict

	// Service unavailable
	case errors.Is(err, service.ErrNoRunnerAvailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// queryFloat parses an optional float query parameter.
func queryFloat(c *gin.Context, name string, def float64) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}
