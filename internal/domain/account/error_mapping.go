package account

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/adearn/adearn-api/internal/domain/catalogue"
	"github.com/adearn/adearn-api/internal/pkg/response"
)

// WriteError maps account store errors to HTTP responses. Unknown errors are
// logged and reported as 500.
func WriteError(w http.ResponseWriter, err error) {
	var fieldErr *FieldError

	switch {
	case errors.Is(err, ErrNoSession):
		response.Error(w, http.StatusUnauthorized, "NO_SESSION", "No active session, please log in again")
	case errors.Is(err, ErrInsufficientBalance):
		response.Error(w, http.StatusConflict, "INSUFFICIENT_BALANCE", "Insufficient balance")
	case errors.Is(err, ErrInvalidAmount):
		response.Error(w, http.StatusBadRequest, "INVALID_AMOUNT", "Invalid amount")
	case errors.As(err, &fieldErr):
		response.ErrorWithDetails(w, http.StatusBadRequest, "MISSING_FIELD", "Required field is empty",
			map[string]string{fieldErr.Field: "This field is required"})
	case errors.Is(err, ErrNoActiveSubscription):
		response.Error(w, http.StatusForbidden, "NO_ACTIVE_SUBSCRIPTION", "Buy a package to watch ads")
	case errors.Is(err, ErrQuotaExceeded):
		response.TooManyRequests(w, "QUOTA_EXCEEDED", "Daily ad limit reached")
	case errors.Is(err, ErrNotSettleable):
		response.Conflict(w, "Transaction is not pending")
	case errors.Is(err, catalogue.ErrPackageNotFound):
		response.NotFound(w, "Package not found")
	case errors.Is(err, catalogue.ErrAdNotFound):
		response.NotFound(w, "Ad not found")
	default:
		log.Error().Err(err).Msg("account operation failed")
		response.InternalError(w)
	}
}
