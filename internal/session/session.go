// Package session holds per-visitor server-side state for the sign-in flow
// and the catalog surface.
//
// The browser carries only an opaque session ID in an HttpOnly cookie; all
// actual state (anti-forgery token, provider access token, resolved
// identity, flash notices) lives server-side in the Manager. Nothing
// security-relevant is ever stored client-side.
package session

import (
	"crypto/rand"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/rs/xid"
)

// CookieName is the session cookie carrying the opaque session ID.
const CookieName = "catalog_session"

// stateTokenLength and stateTokenAlphabet define the anti-forgery token
// format: 32 characters drawn from uppercase letters and digits. The source
// of randomness is crypto/rand; the token binds a login attempt to the
// session that initiated it, so it must be unpredictable.
const (
	stateTokenLength   = 32
	stateTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Session is one visitor's state bag.
//
// The identity fields (UserID, Name, Picture, Email, Provider) are either
// all absent or all present together: SetIdentity populates them in one call
// after a fully verified sign-in, and ClearIdentity wipes them in one call
// on sign-out. A partially populated bag is never a valid rest state.
type Session struct {
	mu sync.Mutex

	id string

	// Sign-in flow state.
	StateToken  string // anti-forgery token minted on the login surface
	Provider    string // "google" or "facebook" once connected
	AccessToken string // provider access token, kept for revocation
	SubjectID   string // provider's stable identifier for this account

	// Resolved identity, populated only after a provider round-trip
	// succeeds and the user row is durably created or found.
	UserID  string
	Name    string
	Picture string
	Email   string

	flashes []string

	createdAt time.Time
}

// ID returns the opaque session identifier stored in the browser cookie.
func (s *Session) ID() string { return s.id }

// SetIdentity stores the resolved identity. All five fields land together;
// callers must never populate a subset.
func (s *Session) SetIdentity(provider, accessToken, subjectID, userID, name, picture, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Provider = provider
	s.AccessToken = accessToken
	s.SubjectID = subjectID
	s.UserID = userID
	s.Name = name
	s.Picture = picture
	s.Email = email
}

// ClearIdentity wipes every identity field together, returning the session
// to the anonymous state. The state token is also discarded: a fresh login
// must mint a fresh one.
func (s *Session) ClearIdentity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Provider = ""
	s.AccessToken = ""
	s.SubjectID = ""
	s.UserID = ""
	s.Name = ""
	s.Picture = ""
	s.Email = ""
	s.StateToken = ""
}

// IssueStateToken mints a fresh anti-forgery token and stores it on the
// session, replacing any previous one.
func (s *Session) IssueStateToken() (string, error) {
	token, err := randomToken(stateTokenLength)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.StateToken = token
	s.mu.Unlock()
	return token, nil
}

// SignedIn reports whether this session has a resolved user.
func (s *Session) SignedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.UserID != ""
}

// Flash queues a user-visible notice to be shown on the next rendered page.
func (s *Session) Flash(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes = append(s.flashes, message)
}

// PopFlashes returns and clears the queued notices.
func (s *Session) PopFlashes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.flashes
	s.flashes = nil
	return out
}

// Manager owns all live sessions, keyed by the opaque cookie ID.
//
// Sessions are per-visitor; requests from different visitors never touch the
// same Session. The map itself is shared, hence the RWMutex.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session store.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Get returns the session for the request, creating one (and setting the
// cookie) if the visitor doesn't have one yet.
func (m *Manager) Get(w http.ResponseWriter, r *http.Request) *Session {
	if cookie, err := r.Cookie(CookieName); err == nil {
		m.mu.RLock()
		sess, ok := m.sessions[cookie.Value]
		m.mu.RUnlock()
		if ok {
			return sess
		}
	}

	sess := &Session{
		id:        xid.New().String(),
		createdAt: time.Now(),
	}

	m.mu.Lock()
	m.sessions[sess.id] = sess
	m.mu.Unlock()

	// HttpOnly: JavaScript can't read the cookie. SameSite=Lax: the cookie
	// rides top-level navigations but not cross-site POSTs.
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return sess
}

// Lookup returns the session for an existing cookie without creating one.
func (m *Manager) Lookup(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, false
	}
	m.mu.RLock()
	sess, ok := m.sessions[cookie.Value]
	m.mu.RUnlock()
	return sess, ok
}

// randomToken draws n characters from the state token alphabet using
// crypto/rand. rand.Int is unbiased, unlike taking a byte modulo the
// alphabet size.
func randomToken(n int) (string, error) {
	max := big.NewInt(int64(len(stateTokenAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = stateTokenAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
