package apperror

import (
	"errors"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	underlying := errors.New("upstream said no")

	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("genre", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("name", "name is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "StateMismatch wraps ErrStateMismatch",
			err:       StateMismatch(),
			target:    ErrStateMismatch,
			wantMatch: true,
		},
		{
			name:      "ExchangeFailed wraps ErrExchangeFailed",
			err:       ExchangeFailed("google", underlying),
			target:    ErrExchangeFailed,
			wantMatch: true,
		},
		{
			name:      "ExchangeFailed keeps the underlying cause",
			err:       ExchangeFailed("google", underlying),
			target:    underlying,
			wantMatch: true,
		},
		{
			name:      "TokenInvalid wraps ErrTokenInvalid",
			err:       TokenInvalid("Token's client ID does not match app's."),
			target:    ErrTokenInvalid,
			wantMatch: true,
		},
		{
			name:      "ProviderInternal wraps ErrProviderInternal",
			err:       ProviderInternal("invalid token"),
			target:    ErrProviderInternal,
			wantMatch: true,
		},
		{
			name:      "IdentityLookup wraps ErrIdentityLookup",
			err:       IdentityLookup("facebook", underlying),
			target:    ErrIdentityLookup,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("You need to be logged in to do that!"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("genre", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
		{
			name:      "StateMismatch does NOT match ErrTokenInvalid",
			err:       StateMismatch(),
			target:    ErrTokenInvalid,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "state mismatch carries the exact login-flow wording",
			err:         StateMismatch(),
			wantMessage: "Invalid state parameter",
		},
		{
			name:        "provider internal forwards the raw payload",
			err:         ProviderInternal("invalid_token: expired"),
			wantMessage: "invalid_token: expired",
		},
		{
			name:        "token invalid carries the given message verbatim",
			err:         TokenInvalid("Token's user ID doesn't match given user ID."),
			wantMessage: "Token's user ID doesn't match given user ID.",
		},
		{
			name:        "not found names resource and id",
			err:         NotFound("movie", "xyz"),
			wantMessage: "movie not found with id xyz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestValidationFailed_Field(t *testing.T) {
	err := ValidationFailed("name", "too long")
	if err.Field != "name" {
		t.Errorf("Field = %q, want %q", err.Field, "name")
	}
}
