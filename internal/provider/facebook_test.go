package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sakif/movie-catalog/internal/apperror"
)

// newTestFacebook wires a Facebook adapter against a stubbed Graph API.
func newTestFacebook(t *testing.T, handler http.Handler) *Facebook {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	f := NewFacebook("test-app-id", "test-app-secret")
	f.graphURL = srv.URL
	return f
}

// =========================================================================
// EXCHANGE TESTS
// =========================================================================

func TestFacebookExchangeCode(t *testing.T) {
	f := newTestFacebook(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/access_token" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("grant_type") != "fb_exchange_token" {
			t.Errorf("grant_type = %q, want fb_exchange_token", q.Get("grant_type"))
		}
		if q.Get("fb_exchange_token") != "short-lived" {
			t.Errorf("fb_exchange_token = %q, want short-lived", q.Get("fb_exchange_token"))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"long-lived","token_type":"bearer","expires_in":5183944}`)
	}))

	token, err := f.ExchangeCode(context.Background(), "short-lived")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}
	if token.AccessToken != "long-lived" {
		t.Errorf("AccessToken = %q, want %q", token.AccessToken, "long-lived")
	}
	// Facebook's exchange asserts nothing about the account; the subject
	// stays empty until identity resolution.
	if token.SubjectID != "" {
		t.Errorf("SubjectID = %q, want empty", token.SubjectID)
	}
}

func TestFacebookExchangeCode_GraphRejects(t *testing.T) {
	f := newTestFacebook(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid OAuth access token."}}`, http.StatusBadRequest)
	}))

	_, err := f.ExchangeCode(context.Background(), "bad-token")
	if !errors.Is(err, apperror.ErrExchangeFailed) {
		t.Fatalf("ExchangeCode() error = %v, want ErrExchangeFailed", err)
	}
}

func TestFacebookExchangeCode_UnexpectedShape(t *testing.T) {
	f := newTestFacebook(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The legacy string-encoded response, not JSON.
		fmt.Fprint(w, "access_token=long-lived&expires=5183944")
	}))

	_, err := f.ExchangeCode(context.Background(), "short-lived")
	if !errors.Is(err, apperror.ErrExchangeFailed) {
		t.Fatalf("ExchangeCode() error = %v, want ErrExchangeFailed", err)
	}
}

func TestFacebookExchangeCode_EmptyAccessToken(t *testing.T) {
	f := newTestFacebook(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"token_type":"bearer","expires_in":5183944}`)
	}))

	_, err := f.ExchangeCode(context.Background(), "short-lived")
	if !errors.Is(err, apperror.ErrExchangeFailed) {
		t.Fatalf("ExchangeCode() error = %v, want ErrExchangeFailed", err)
	}
}

// =========================================================================
// IDENTITY TESTS
// =========================================================================

func TestFacebookFetchIdentity(t *testing.T) {
	f := newTestFacebook(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/" + graphVersion + "/me":
			fmt.Fprint(w, `{"name":"Grace Hopper","id":"fb-456","email":"grace@example.com"}`)
		case "/" + graphVersion + "/me/picture":
			if r.URL.Query().Get("redirect") != "0" {
				t.Errorf("picture request missing redirect=0")
			}
			fmt.Fprint(w, `{"data":{"url":"https://example.com/grace.png"}}`)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			http.NotFound(w, r)
		}
	}))

	identity, err := f.FetchIdentity(context.Background(), &Token{AccessToken: "long-lived"})
	if err != nil {
		t.Fatalf("FetchIdentity() error = %v", err)
	}
	if identity.SubjectID != "fb-456" {
		t.Errorf("SubjectID = %q, want %q", identity.SubjectID, "fb-456")
	}
	if identity.Name != "Grace Hopper" {
		t.Errorf("Name = %q, want %q", identity.Name, "Grace Hopper")
	}
	if identity.Email != "grace@example.com" {
		t.Errorf("Email = %q, want %q", identity.Email, "grace@example.com")
	}
	if identity.Picture != "https://example.com/grace.png" {
		t.Errorf("Picture = %q", identity.Picture)
	}
}

func TestFacebookFetchIdentity_MissingID(t *testing.T) {
	f := newTestFacebook(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name":"No ID"}`)
	}))

	_, err := f.FetchIdentity(context.Background(), &Token{AccessToken: "long-lived"})
	if !errors.Is(err, apperror.ErrIdentityLookup) {
		t.Fatalf("FetchIdentity() error = %v, want ErrIdentityLookup", err)
	}
}

// =========================================================================
// REVOKE TESTS
// =========================================================================

func TestFacebookRevoke(t *testing.T) {
	var gotMethod, gotPath string
	f := newTestFacebook(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success":true}`)
	}))

	err := f.Revoke(context.Background(), &Token{AccessToken: "long-lived", SubjectID: "fb-456"})
	if err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %q, want DELETE", gotMethod)
	}
	if want := "/" + graphVersion + "/fb-456/permissions"; gotPath != want {
		t.Errorf("path = %q, want %q", gotPath, want)
	}
}

func TestFacebookRevoke_RequiresSubjectID(t *testing.T) {
	f := NewFacebook("test-app-id", "test-app-secret")

	err := f.Revoke(context.Background(), &Token{AccessToken: "long-lived"})
	if err == nil {
		t.Error("Revoke() should have failed without a subject ID")
	}
}
