package handler

import (
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/movie-catalog/internal/provider"
	"github.com/sakif/movie-catalog/internal/service"
	"github.com/sakif/movie-catalog/internal/session"
)

// maxCallbackBody caps the provider callback body. The body is a one-time
// code or a short-lived token; anything larger is garbage.
const maxCallbackBody = 4096

// AuthHandler owns the sign-in surface:
//
//	GET  /login       → login page embedding the state token + client ids
//	POST /gconnect    → Google callback (body = one-time code)
//	POST /fbconnect   → Facebook callback (body = short-lived token)
//	GET  /disconnect  → best-effort remote revoke + local sign-out
type AuthHandler struct {
	signin   *service.SignInService
	sessions *session.Manager
	rn       *Renderer
	logger   *slog.Logger

	// Client identifiers rendered into the login page so the provider SDKs
	// can start their consent flows.
	googleClientID string
	facebookAppID  string
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(
	signin *service.SignInService,
	sessions *session.Manager,
	rn *Renderer,
	googleClientID, facebookAppID string,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		signin:         signin,
		sessions:       sessions,
		rn:             rn,
		logger:         logger,
		googleClientID: googleClientID,
		facebookAppID:  facebookAppID,
	}
}

// HandleLogin renders the login surface.
//
// HTTP: GET /login
//
// Visiting the page mints the anti-forgery state token and stores it in the
// visitor's session; the page embeds it so the provider callbacks can echo
// it back. Re-visiting replaces the token; only the latest one is valid.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)

	state, err := h.signin.IssueState(sess)
	if err != nil {
		h.logger.Error("failed to issue state token", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := pageData(sess, "Sign in")
	data["State"] = state
	data["GoogleClientID"] = h.googleClientID
	data["FacebookAppID"] = h.facebookAppID
	h.rn.render(w, "login", data)
}

// HandleGoogleConnect completes the Google sign-in.
//
// HTTP: POST /gconnect?state=xxx  (body: one-time authorization code)
// Responses: 200 connected / already connected, 401 bad state, exchange or
// verification failure, 500 provider-side error payload.
func (h *AuthHandler) HandleGoogleConnect(w http.ResponseWriter, r *http.Request) {
	h.handleConnect(w, r, provider.NameGoogle)
}

// HandleFacebookConnect completes the Facebook sign-in.
//
// HTTP: POST /fbconnect?state=xxx  (body: short-lived provider token)
func (h *AuthHandler) HandleFacebookConnect(w http.ResponseWriter, r *http.Request) {
	h.handleConnect(w, r, provider.NameFacebook)
}

func (h *AuthHandler) handleConnect(w http.ResponseWriter, r *http.Request, providerName string) {
	sess := h.sessions.Get(w, r)

	state := r.URL.Query().Get("state")
	code, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody))
	if err != nil {
		http.Error(w, "could not read request body", http.StatusBadRequest)
		return
	}

	result, err := h.signin.Connect(r.Context(), sess, providerName, state, string(code))
	if err != nil {
		writeError(w, err)
		return
	}

	if result.AlreadyConnected {
		writeJSON(w, http.StatusOK, "Current user is already connected.")
		return
	}

	sess.Flash(fmt.Sprintf("you are now logged in as %s", result.DisplayName))

	// The login page swaps this fragment in as the welcome message.
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<h1>Welcome, %s!</h1>", template.HTMLEscapeString(result.DisplayName))
	if result.Picture != "" {
		fmt.Fprintf(w, `<img src="%s" style="width:300px;height:300px;border-radius:150px;">`,
			template.HTMLEscapeString(result.Picture))
	}
}

// HandleDisconnect signs the visitor out and redirects to the catalog.
//
// HTTP: GET /disconnect
//
// The remote revoke is best-effort inside the service; this handler always
// lands the user back on the catalog root, signed out, whatever the
// provider did.
func (h *AuthHandler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Get(w, r)

	if h.signin.Disconnect(r.Context(), sess) {
		sess.Flash("You have successfully been logged out.")
	} else {
		sess.Flash("You were not logged in to begin with!")
	}

	http.Redirect(w, r, "/catalog/", http.StatusSeeOther)
}

// pageData builds the fields every rendered page expects from the base
// layout: title, sign-in status, and pending flash notices.
func pageData(sess *session.Session, title string) map[string]any {
	return map[string]any{
		"Title":    title,
		"SignedIn": sess.SignedIn(),
		"UserName": sess.Name,
		"Flashes":  sess.PopFlashes(),
	}
}
