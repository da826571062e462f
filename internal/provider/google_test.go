package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/sakif/movie-catalog/internal/apperror"
)

const testClientID = "test-client-id"

// unsignedIDToken builds an alg=none JWT carrying the given subject, the way
// a token endpoint stub can hand one back without key material.
func unsignedIDToken(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": subject})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing test id_token: %v", err)
	}
	return signed
}

// googleStub describes what the fake Google endpoints return for one test.
type googleStub struct {
	tokenStatus   int    // token endpoint HTTP status (0 → 200)
	idTokenSub    string // subject placed in the returned id_token
	tokenInfoBody string // raw JSON body of the tokeninfo response
}

// newTestGoogle wires a Google adapter against an httptest server standing in
// for every Google endpoint.
func newTestGoogle(t *testing.T, stub googleStub) (*Google, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if stub.tokenStatus != 0 && stub.tokenStatus != http.StatusOK {
			http.Error(w, `{"error":"invalid_grant"}`, stub.tokenStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"test-access-token","token_type":"Bearer","expires_in":3600,"id_token":%q}`,
			unsignedIDToken(t, stub.idTokenSub))
	})
	mux.HandleFunc("/tokeninfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, stub.tokenInfoBody)
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name":"Ada Lovelace","picture":"https://example.com/ada.png","email":"ada@example.com"}`)
	})
	mux.HandleFunc("/revoke", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	g := NewGoogle(testClientID, "test-secret")
	g.config.Endpoint = oauth2.Endpoint{
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	g.tokenInfoURL = srv.URL + "/tokeninfo"
	g.userInfoURL = srv.URL + "/userinfo"
	g.revokeURL = srv.URL + "/revoke"
	return g, srv
}

// appErrMessage digs the user-facing message out of an error chain.
func appErrMessage(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("error %v is not an *apperror.AppError", err)
	}
	return appErr.Message
}

// =========================================================================
// EXCHANGE TESTS
// =========================================================================

func TestGoogleExchangeCode(t *testing.T) {
	g, _ := newTestGoogle(t, googleStub{
		idTokenSub:    "sub-123",
		tokenInfoBody: fmt.Sprintf(`{"user_id":"sub-123","issued_to":%q}`, testClientID),
	})

	token, err := g.ExchangeCode(context.Background(), "one-time-code")
	if err != nil {
		t.Fatalf("ExchangeCode() error = %v", err)
	}
	if token.AccessToken != "test-access-token" {
		t.Errorf("AccessToken = %q, want %q", token.AccessToken, "test-access-token")
	}
	if token.SubjectID != "sub-123" {
		t.Errorf("SubjectID = %q, want %q", token.SubjectID, "sub-123")
	}
}

func TestGoogleExchangeCode_ExchangeFails(t *testing.T) {
	g, _ := newTestGoogle(t, googleStub{tokenStatus: http.StatusBadRequest})

	_, err := g.ExchangeCode(context.Background(), "bad-code")
	if !errors.Is(err, apperror.ErrExchangeFailed) {
		t.Fatalf("ExchangeCode() error = %v, want ErrExchangeFailed", err)
	}
	// The raw exchange error rides the message for this provider.
	msg := appErrMessage(t, err)
	if want := "Failed to upgrade the authorization code"; !strings.HasPrefix(msg, want) {
		t.Errorf("Message = %q, want prefix %q", msg, want)
	}
}

func TestGoogleExchangeCode_IntrospectionError(t *testing.T) {
	g, _ := newTestGoogle(t, googleStub{
		idTokenSub:    "sub-123",
		tokenInfoBody: `{"error":"invalid token"}`,
	})

	_, err := g.ExchangeCode(context.Background(), "one-time-code")
	if !errors.Is(err, apperror.ErrProviderInternal) {
		t.Fatalf("ExchangeCode() error = %v, want ErrProviderInternal", err)
	}
	// The introspection error text is forwarded as-is.
	if msg := appErrMessage(t, err); msg != "invalid token" {
		t.Errorf("Message = %q, want %q", msg, "invalid token")
	}
}

func TestGoogleExchangeCode_SubjectMismatch(t *testing.T) {
	g, _ := newTestGoogle(t, googleStub{
		idTokenSub:    "sub-123",
		tokenInfoBody: fmt.Sprintf(`{"user_id":"someone-else","issued_to":%q}`, testClientID),
	})

	_, err := g.ExchangeCode(context.Background(), "one-time-code")
	if !errors.Is(err, apperror.ErrTokenInvalid) {
		t.Fatalf("ExchangeCode() error = %v, want ErrTokenInvalid", err)
	}
	if msg := appErrMessage(t, err); msg != "Token's user ID doesn't match given user ID." {
		t.Errorf("Message = %q", msg)
	}
}

func TestGoogleExchangeCode_ClientIDMismatch(t *testing.T) {
	g, _ := newTestGoogle(t, googleStub{
		idTokenSub:    "sub-123",
		tokenInfoBody: `{"user_id":"sub-123","issued_to":"another-app"}`,
	})

	_, err := g.ExchangeCode(context.Background(), "one-time-code")
	if !errors.Is(err, apperror.ErrTokenInvalid) {
		t.Fatalf("ExchangeCode() error = %v, want ErrTokenInvalid", err)
	}
	if msg := appErrMessage(t, err); msg != "Token's client ID does not match app's." {
		t.Errorf("Message = %q", msg)
	}
}

// =========================================================================
// IDENTITY / REVOKE TESTS
// =========================================================================

func TestGoogleFetchIdentity(t *testing.T) {
	g, _ := newTestGoogle(t, googleStub{})

	identity, err := g.FetchIdentity(context.Background(), &Token{
		AccessToken: "test-access-token",
		SubjectID:   "sub-123",
	})
	if err != nil {
		t.Fatalf("FetchIdentity() error = %v", err)
	}
	if identity.Name != "Ada Lovelace" {
		t.Errorf("Name = %q, want %q", identity.Name, "Ada Lovelace")
	}
	if identity.Email != "ada@example.com" {
		t.Errorf("Email = %q, want %q", identity.Email, "ada@example.com")
	}
	if identity.Picture != "https://example.com/ada.png" {
		t.Errorf("Picture = %q", identity.Picture)
	}
	// The subject travels through from the verified token.
	if identity.SubjectID != "sub-123" {
		t.Errorf("SubjectID = %q, want %q", identity.SubjectID, "sub-123")
	}
}

func TestGoogleRevoke(t *testing.T) {
	g, _ := newTestGoogle(t, googleStub{})

	err := g.Revoke(context.Background(), &Token{AccessToken: "test-access-token"})
	if err != nil {
		t.Errorf("Revoke() error = %v", err)
	}
}

func TestGoogleRevoke_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)

	g := NewGoogle(testClientID, "test-secret")
	g.revokeURL = srv.URL

	err := g.Revoke(context.Background(), &Token{AccessToken: "stale"})
	if err == nil {
		t.Error("Revoke() should have returned an error for a non-200 response")
	}
}
