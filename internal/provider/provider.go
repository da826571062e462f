// Package provider contains the identity-provider adapters.
//
// Each concrete adapter (Google, Facebook) encapsulates one external
// token-exchange protocol behind the same capability interface. The sign-in
// orchestrator is polymorphic over Provider: adding a provider means adding
// an adapter and registering it, never editing the orchestrator.
package provider

import (
	"context"
	"net/http"
	"time"
)

// Names of the built-in providers, used as the session's provider tag.
const (
	NameGoogle   = "google"
	NameFacebook = "facebook"
)

// callTimeout bounds every outbound provider call. The upstream services
// give no latency guarantees; without a bound a slow provider would hang a
// visitor's sign-in indefinitely.
const callTimeout = 10 * time.Second

// Token is a verified provider access token.
//
// SubjectID is the provider's stable identifier for the account. Google's
// exchange verifies and returns it immediately (the signed identity payload
// carries it); Facebook's exchange does not; its SubjectID stays empty
// until FetchIdentity runs. The orchestrator's already-connected
// short-circuit only fires when SubjectID is known at exchange time, which
// preserves the two providers' documented asymmetry.
type Token struct {
	AccessToken string
	SubjectID   string
}

// Identity is the profile the adapter resolves from a verified token.
type Identity struct {
	SubjectID string
	Email     string
	Name      string
	Picture   string
}

// Provider is the capability contract implemented once per identity
// provider.
type Provider interface {
	// Name returns the provider tag stored in the session ("google",
	// "facebook").
	Name() string

	// ExchangeCode trades the client-posted authorization code (or, for
	// Facebook, an already-exchanged short-lived token) for a verified
	// access token. All verification the provider's protocol supports
	// happens here; a token returned from ExchangeCode is trusted.
	ExchangeCode(ctx context.Context, code string) (*Token, error)

	// FetchIdentity resolves profile fields from the provider's user-info
	// endpoint using a verified access token.
	FetchIdentity(ctx context.Context, token *Token) (*Identity, error)

	// Revoke invalidates the token at the provider. Failures are non-fatal:
	// the caller logs them and proceeds with local sign-out regardless.
	Revoke(ctx context.Context, token *Token) error
}

// Registry maps provider tags to adapters. The orchestrator selects the
// concrete adapter by the tag recorded in the session or the callback route.
type Registry map[string]Provider

// Get returns the adapter for the given tag.
func (r Registry) Get(name string) (Provider, bool) {
	p, ok := r[name]
	return p, ok
}

// newHTTPClient returns the bounded client the adapters share for their
// plain (non-oauth2) endpoint calls.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: callTimeout}
}
