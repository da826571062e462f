package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/sakif/movie-catalog/internal/apperror"
	"github.com/sakif/movie-catalog/internal/model"
	"github.com/sakif/movie-catalog/internal/provider"
	"github.com/sakif/movie-catalog/internal/session"
)

// discardLogger silences log output in tests.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProvider is a call-counting Provider. Each step can be programmed to
// fail, and the counters verify which steps ran.
type fakeProvider struct {
	name string

	exchangeCalls int
	identityCalls int
	revokeCalls   int

	exchangeToken *provider.Token
	exchangeErr   error
	identity      *provider.Identity
	identityErr   error
	revokeErr     error
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) ExchangeCode(ctx context.Context, code string) (*provider.Token, error) {
	f.exchangeCalls++
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.exchangeToken, nil
}

func (f *fakeProvider) FetchIdentity(ctx context.Context, token *provider.Token) (*provider.Identity, error) {
	f.identityCalls++
	if f.identityErr != nil {
		return nil, f.identityErr
	}
	return f.identity, nil
}

func (f *fakeProvider) Revoke(ctx context.Context, token *provider.Token) error {
	f.revokeCalls++
	return f.revokeErr
}

// fakeUserRepo implements repository.UserRepository in memory.
type fakeUserRepo struct {
	findOrCreateCalls int
	byEmail           map[string]*model.User
	nextID            int
	err               error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*model.User)}
}

func (f *fakeUserRepo) FindOrCreateByEmail(ctx context.Context, user *model.User) error {
	f.findOrCreateCalls++
	if f.err != nil {
		return f.err
	}
	if existing, ok := f.byEmail[user.Email]; ok {
		*user = *existing
		return nil
	}
	f.nextID++
	user.ID = "user-" + strconv.Itoa(f.nextID)
	stored := *user
	f.byEmail[user.Email] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, apperror.NotFound("user", email)
}

// newSignInFixture builds a service wired to one fake provider and an
// in-memory user repo, plus a session holding a freshly issued state token.
func newSignInFixture(t *testing.T, p *fakeProvider) (*SignInService, *fakeUserRepo, *session.Session, string) {
	t.Helper()
	users := newFakeUserRepo()
	svc := NewSignInService(provider.Registry{p.name: p}, users, discardLogger())

	sess := &session.Session{}
	state, err := svc.IssueState(sess)
	if err != nil {
		t.Fatalf("IssueState() error = %v", err)
	}
	return svc, users, sess, state
}

// =========================================================================
// CONNECT TESTS
// =========================================================================

func TestConnect(t *testing.T) {
	p := &fakeProvider{
		name:          "google",
		exchangeToken: &provider.Token{AccessToken: "tok", SubjectID: "sub-1"},
		identity: &provider.Identity{
			SubjectID: "sub-1",
			Email:     "ada@example.com",
			Name:      "Ada Lovelace",
			Picture:   "https://example.com/ada.png",
		},
	}
	svc, users, sess, state := newSignInFixture(t, p)

	result, err := svc.Connect(context.Background(), sess, "google", state, "one-time-code")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if result.AlreadyConnected {
		t.Error("first Connect() reported AlreadyConnected")
	}
	if result.User == nil || result.User.ID == "" {
		t.Fatal("Connect() did not resolve a durable user")
	}
	if result.DisplayName != "Ada Lovelace" {
		t.Errorf("DisplayName = %q, want %q", result.DisplayName, "Ada Lovelace")
	}
	if users.findOrCreateCalls != 1 {
		t.Errorf("FindOrCreateByEmail called %d times, want 1", users.findOrCreateCalls)
	}

	// The session ends up fully authenticated: all identity fields together.
	if !sess.SignedIn() {
		t.Error("session does not report SignedIn after Connect")
	}
	if sess.Provider != "google" || sess.AccessToken != "tok" || sess.SubjectID != "sub-1" ||
		sess.UserID != result.User.ID || sess.Email != "ada@example.com" {
		t.Errorf("session identity incomplete: %+v", sess)
	}
}

func TestConnect_UnknownProvider(t *testing.T) {
	p := &fakeProvider{name: "google"}
	svc, _, sess, state := newSignInFixture(t, p)

	_, err := svc.Connect(context.Background(), sess, "myspace", state, "code")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Connect() error = %v, want ErrValidation", err)
	}
	if p.exchangeCalls != 0 {
		t.Errorf("exchange called %d times for unknown provider, want 0", p.exchangeCalls)
	}
}

func TestConnect_StateMismatch_NoProviderCalls(t *testing.T) {
	p := &fakeProvider{name: "google"}
	svc, users, sess, _ := newSignInFixture(t, p)

	_, err := svc.Connect(context.Background(), sess, "google", "forged-state", "code")
	if !errors.Is(err, apperror.ErrStateMismatch) {
		t.Fatalf("Connect() error = %v, want ErrStateMismatch", err)
	}

	// A forged callback costs zero network calls and zero store writes.
	if p.exchangeCalls != 0 || p.identityCalls != 0 {
		t.Errorf("provider called on state mismatch: exchange=%d identity=%d",
			p.exchangeCalls, p.identityCalls)
	}
	if users.findOrCreateCalls != 0 {
		t.Errorf("user store written on state mismatch")
	}
}

func TestConnect_EmptyStateRejected(t *testing.T) {
	p := &fakeProvider{name: "google"}
	svc, _, _, _ := newSignInFixture(t, p)

	// A session that never visited the login surface has no token; an empty
	// state must not match it.
	freshSess := &session.Session{}
	_, err := svc.Connect(context.Background(), freshSess, "google", "", "code")
	if !errors.Is(err, apperror.ErrStateMismatch) {
		t.Fatalf("Connect() error = %v, want ErrStateMismatch", err)
	}
}

func TestConnect_ExchangeFailurePropagates(t *testing.T) {
	p := &fakeProvider{
		name:        "google",
		exchangeErr: apperror.ExchangeFailed("google", errors.New("boom")),
	}
	svc, users, sess, state := newSignInFixture(t, p)

	_, err := svc.Connect(context.Background(), sess, "google", state, "code")
	if !errors.Is(err, apperror.ErrExchangeFailed) {
		t.Fatalf("Connect() error = %v, want ErrExchangeFailed", err)
	}
	if p.identityCalls != 0 {
		t.Error("identity fetched after failed exchange")
	}
	if users.findOrCreateCalls != 0 {
		t.Error("user store written after failed exchange")
	}
	if sess.SignedIn() {
		t.Error("session signed in after failed exchange")
	}
}

func TestConnect_AlreadyConnected(t *testing.T) {
	p := &fakeProvider{
		name:          "google",
		exchangeToken: &provider.Token{AccessToken: "tok2", SubjectID: "sub-1"},
		identity: &provider.Identity{
			SubjectID: "sub-1",
			Email:     "ada@example.com",
			Name:      "Ada Lovelace",
		},
	}
	svc, users, sess, state := newSignInFixture(t, p)

	if _, err := svc.Connect(context.Background(), sess, "google", state, "code"); err != nil {
		t.Fatalf("first Connect() error = %v", err)
	}
	firstWrites := users.findOrCreateCalls

	// Same provider, same subject, same session: reconnect succeeds without
	// re-resolving identity or touching the store.
	state2, err := svc.IssueState(sess)
	if err != nil {
		t.Fatalf("IssueState() error = %v", err)
	}
	result, err := svc.Connect(context.Background(), sess, "google", state2, "code")
	if err != nil {
		t.Fatalf("second Connect() error = %v", err)
	}

	if !result.AlreadyConnected {
		t.Error("second Connect() did not report AlreadyConnected")
	}
	if result.User != nil {
		t.Error("AlreadyConnected result carries a user")
	}
	if users.findOrCreateCalls != firstWrites {
		t.Errorf("store written on reconnect: %d calls, want %d", users.findOrCreateCalls, firstWrites)
	}
	if p.identityCalls != 1 {
		t.Errorf("identity fetched %d times, want 1", p.identityCalls)
	}
}

func TestConnect_EmptySubjectNeverShortCircuits(t *testing.T) {
	// A provider whose exchange asserts no subject (Facebook) always runs
	// the full flow, even on reconnect.
	p := &fakeProvider{
		name:          "facebook",
		exchangeToken: &provider.Token{AccessToken: "fb-tok"},
		identity: &provider.Identity{
			SubjectID: "fb-1",
			Email:     "grace@example.com",
			Name:      "Grace Hopper",
		},
	}
	svc, _, sess, state := newSignInFixture(t, p)

	if _, err := svc.Connect(context.Background(), sess, "facebook", state, "code"); err != nil {
		t.Fatalf("first Connect() error = %v", err)
	}

	state2, err := svc.IssueState(sess)
	if err != nil {
		t.Fatalf("IssueState() error = %v", err)
	}
	result, err := svc.Connect(context.Background(), sess, "facebook", state2, "code")
	if err != nil {
		t.Fatalf("second Connect() error = %v", err)
	}
	if result.AlreadyConnected {
		t.Error("reconnect short-circuited without a subject assertion")
	}
	if p.identityCalls != 2 {
		t.Errorf("identity fetched %d times, want 2", p.identityCalls)
	}
}

func TestConnect_MissingEmailRejected(t *testing.T) {
	p := &fakeProvider{
		name:          "google",
		exchangeToken: &provider.Token{AccessToken: "tok", SubjectID: "sub-1"},
		identity:      &provider.Identity{SubjectID: "sub-1", Name: "No Email"},
	}
	svc, users, sess, state := newSignInFixture(t, p)

	_, err := svc.Connect(context.Background(), sess, "google", state, "code")
	if !errors.Is(err, apperror.ErrIdentityLookup) {
		t.Fatalf("Connect() error = %v, want ErrIdentityLookup", err)
	}
	if users.findOrCreateCalls != 0 {
		t.Error("user store written despite missing email")
	}
	if sess.SignedIn() {
		t.Error("session signed in despite missing email")
	}
}

// =========================================================================
// DISCONNECT TESTS
// =========================================================================

func TestDisconnect(t *testing.T) {
	p := &fakeProvider{name: "google"}
	svc, _, _, _ := newSignInFixture(t, p)

	sess := &session.Session{}
	sess.SetIdentity("google", "tok", "sub-1", "user-1", "Ada", "pic", "ada@example.com")

	if !svc.Disconnect(context.Background(), sess) {
		t.Fatal("Disconnect() = false for a signed-in session")
	}
	if p.revokeCalls != 1 {
		t.Errorf("Revoke called %d times, want 1", p.revokeCalls)
	}
	if sess.SignedIn() {
		t.Error("session still signed in after Disconnect")
	}
}

func TestDisconnect_RevokeFailureStillClears(t *testing.T) {
	p := &fakeProvider{name: "google", revokeErr: errors.New("provider is down")}
	svc, _, _, _ := newSignInFixture(t, p)

	sess := &session.Session{}
	sess.SetIdentity("google", "tok", "sub-1", "user-1", "Ada", "pic", "ada@example.com")

	// The provider being down must not trap the user in a session.
	if !svc.Disconnect(context.Background(), sess) {
		t.Fatal("Disconnect() = false despite local teardown")
	}
	if sess.SignedIn() {
		t.Error("session still signed in after failed revoke")
	}
}

func TestDisconnect_NotSignedIn(t *testing.T) {
	p := &fakeProvider{name: "google"}
	svc, _, _, _ := newSignInFixture(t, p)

	sess := &session.Session{}
	if svc.Disconnect(context.Background(), sess) {
		t.Error("Disconnect() = true for an anonymous session")
	}
	if p.revokeCalls != 0 {
		t.Error("Revoke called for an anonymous session")
	}
}
