package interfaces

import (
	"net/http"

	financeErrors "github.com/sebuszqo/ExpenseTracker/internal/finance/errors"
	log "github.com/sirupsen/logrus"
)

// respondFinanceError maps the engine's typed errors onto HTTP statuses:
// validation 400, missing 404, insufficient funds 409, lock timeout 503.
// Anything unclassified is a 500 with the fallback message.
func respondFinanceError(respondError func(w http.ResponseWriter, status int, message string, errors ...[]string), w http.ResponseWriter, err error, fallback string) {
	switch {
	case financeErrors.IsValidationError(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case financeErrors.IsNotFoundError(err):
		respondError(w, http.StatusNotFound, err.Error())
	case financeErrors.IsInsufficientFundsError(err):
		respondError(w, http.StatusConflict, err.Error())
	case financeErrors.IsConcurrencyTimeoutError(err):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		log.Errorf("Unexpected error: %v", err)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}
