package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")

	// Sign-in flow errors. Each one is terminal for the current flow;
	// the orchestrator never retries past any of these.
	ErrUnauthorized   = errors.New("unauthorized")
	ErrStateMismatch  = errors.New("state token mismatch")
	ErrExchangeFailed = errors.New("provider exchange failed")
	ErrTokenInvalid   = errors.New("provider token invalid")
	ErrIdentityLookup = errors.New("identity lookup failed")

	// ErrProviderInternal marks an error payload returned by the provider's
	// own introspection endpoint. Unlike the 401-class errors above, this is
	// the provider reporting a fault, so it surfaces as a 500.
	ErrProviderInternal = errors.New("provider-side error")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Unauthorized returns an AppError for a write attempted without a session.
// HTTP handlers map this to 401 or a flash-and-redirect depending on surface.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// StateMismatch is the CSRF defense failure: the callback's state parameter
// did not equal the token minted for this session.
func StateMismatch() *AppError {
	return &AppError{
		Err:     ErrStateMismatch,
		Message: "Invalid state parameter",
	}
}

// ExchangeFailed wraps a provider's rejection of an authorization code.
func ExchangeFailed(provider string, err error) *AppError {
	return &AppError{
		Err:     errors.Join(ErrExchangeFailed, err),
		Message: fmt.Sprintf("Failed to upgrade the authorization code with %s", provider),
	}
}

// TokenInvalid covers the token verification cross-checks: subject mismatch,
// audience mismatch, or an error field in the introspection response.
func TokenInvalid(message string) *AppError {
	return &AppError{
		Err:     ErrTokenInvalid,
		Message: message,
	}
}

// ProviderInternal carries a raw provider error payload. The Google flow
// forwards this payload to the client verbatim (compatibility behavior);
// the Facebook flow never constructs one.
func ProviderInternal(rawPayload string) *AppError {
	return &AppError{
		Err:     ErrProviderInternal,
		Message: rawPayload,
	}
}

// IdentityLookup wraps a failure to fetch or decode the provider's
// user-info response after a verified exchange.
func IdentityLookup(provider string, err error) *AppError {
	return &AppError{
		Err:     errors.Join(ErrIdentityLookup, err),
		Message: fmt.Sprintf("Failed to fetch identity from %s", provider),
	}
}
