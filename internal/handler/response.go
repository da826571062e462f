package handler

// RESPONSE HELPERS:
// These standardise how handlers send JSON and map domain errors to HTTP.
// Every error response has the same shape:
//
//	{"error": "invalid_state", "message": "Invalid state parameter"}
//
// so the login page's JavaScript can always parse what came back.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/movie-catalog/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable error type
	Message string `json:"message"` // human-readable description
}

// writeJSON sends a JSON response with the given status code.
// Headers and status must go out before the body; Encode writes the body.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers already sent; nothing left to do but log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to the appropriate HTTP status and sends it.
//
// The sign-in flow errors all map to 401 except a provider-side error
// payload from introspection, which is a 500 carrying the provider's own
// message. Service-layer validation and lookup errors map the usual way.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrStateMismatch):
			status = http.StatusUnauthorized
			errorType = "invalid_state"
		case errors.Is(err, apperror.ErrExchangeFailed):
			status = http.StatusUnauthorized
			errorType = "exchange_failed"
		case errors.Is(err, apperror.ErrTokenInvalid):
			status = http.StatusUnauthorized
			errorType = "token_invalid"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
		case errors.Is(err, apperror.ErrProviderInternal):
			status = http.StatusInternalServerError
			errorType = "provider_error"
		case errors.Is(err, apperror.ErrIdentityLookup):
			status = http.StatusInternalServerError
			errorType = "identity_lookup_failed"
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Unknown error; generic 500, never the raw message (it may carry SQL
	// or internal paths).
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
