package panel

import (
	"errors"
	"net/http"

	"rsadesk/internal/config"
	"rsadesk/internal/trade"
)

// statusFor maps desk errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case trade.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, config.ErrScriptNotConfigured),
		errors.Is(err, config.ErrRequirementsNotConfigured),
		errors.Is(err, config.ErrOutputNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// flashLevel picks the page banner style for err.
func flashLevel(err error) string {
	switch statusFor(err) {
	case http.StatusOK:
		return "info"
	case http.StatusBadRequest, http.StatusServiceUnavailable:
		return "warning"
	default:
		return "error"
	}
}
