package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wallet-account-service/internal/adapter/auth"
	apperrors "wallet-account-service/pkg/errors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeError maps domain errors to HTTP status codes.
func writeError(c *gin.Context, err error) {
	var (
		notFound       *apperrors.NotFoundError
		insufficient   *apperrors.InsufficientFundsError
		notAuthorized  *apperrors.NotAuthorizedError
		unknownRcpt    *apperrors.UnknownRecipientError
		persistence    *apperrors.PersistenceError
		partialFailure *apperrors.TransferPartialFailureError
	)

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid_credentials", Message: err.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()})
	case errors.As(err, &insufficient):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{Error: "insufficient_funds", Message: err.Error()})
	case errors.As(err, &notAuthorized):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "not_authorized", Message: err.Error()})
	case errors.As(err, &unknownRcpt):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unknown_recipient", Message: err.Error()})
	case errors.As(err, &partialFailure):
		// Distinct from ordinary failure so operators can reconcile.
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "transfer_partial_failure", Message: err.Error()})
	case errors.As(err, &persistence):
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "persistence_error", Message: err.Error()})
	case strings.HasPrefix(err.Error(), "validation failed"):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: err.Error()})
	}
}

// bearerToken extracts the session token from the Authorization header.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}
	return token
}
