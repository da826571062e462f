// Package service contains the business logic layer of the application.
//
// The sign-in orchestrator here is the one genuinely stateful piece of the
// app. It drives a visitor's session through:
//
//	anonymous → state token issued → code exchanged → token verified
//	          → identity resolved → authenticated
//
// with every step able to short-circuit to a terminal error. The concrete
// provider protocol lives behind the provider.Provider interface; the
// orchestrator never branches on which provider it is talking to.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/movie-catalog/internal/apperror"
	"github.com/sakif/movie-catalog/internal/model"
	"github.com/sakif/movie-catalog/internal/provider"
	"github.com/sakif/movie-catalog/internal/repository"
	"github.com/sakif/movie-catalog/internal/session"
)

// SignInService orchestrates third-party sign-in and sign-out.
type SignInService struct {
	providers provider.Registry
	users     repository.UserRepository
	logger    *slog.Logger
}

// NewSignInService creates a SignInService with all dependencies injected.
func NewSignInService(
	providers provider.Registry,
	users repository.UserRepository,
	logger *slog.Logger,
) *SignInService {
	return &SignInService{
		providers: providers,
		users:     users,
		logger:    logger,
	}
}

// ConnectResult is returned by a successful Connect.
type ConnectResult struct {
	// User is the durable record, nil when AlreadyConnected.
	User *model.User
	// DisplayName is what the welcome response shows.
	DisplayName string
	// Picture is the profile picture for the welcome response.
	Picture string
	// AlreadyConnected is set when the session already held a verified
	// token for the same provider identity; nothing was re-resolved and no
	// store write happened.
	AlreadyConnected bool
}

// IssueState mints the anti-forgery token for the login surface. The client
// must echo it back as the callback's state parameter.
func (s *SignInService) IssueState(sess *session.Session) (string, error) {
	token, err := sess.IssueStateToken()
	if err != nil {
		return "", fmt.Errorf("service/signin: issuing state token: %w", err)
	}
	return token, nil
}

// Connect runs the full sign-in flow for one provider callback.
//
// ORDER MATTERS:
// The state check comes first, before any network call; a forged callback
// must be rejected without costing us (or the provider) a round-trip. Every
// later step short-circuits on failure; there is no retry and no partial
// success.
func (s *SignInService) Connect(
	ctx context.Context,
	sess *session.Session,
	providerName, state, code string,
) (*ConnectResult, error) {
	p, ok := s.providers.Get(providerName)
	if !ok {
		return nil, apperror.ValidationFailed("provider",
			fmt.Sprintf("unknown provider %q", providerName))
	}

	// CSRF defense: the callback's state must exactly equal the token this
	// session was issued on the login surface.
	if state == "" || sess.StateToken == "" || state != sess.StateToken {
		s.logger.Warn("sign-in rejected: state mismatch",
			slog.String("provider", providerName),
		)
		return nil, apperror.StateMismatch()
	}

	// Exchange the code. For Google this includes the three-way token
	// verification; a returned token is trusted.
	token, err := p.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.Warn("sign-in rejected: exchange failed",
			slog.String("provider", providerName),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	// Idempotence: the same provider identity reconnecting within the same
	// session is a success, not a new sign-in. No identity re-resolution,
	// no store write. Only fires when the exchange itself asserts the
	// subject (Google); Facebook's exchange doesn't, so its reconnects run
	// the full flow; matching the providers' different guarantees.
	if token.SubjectID != "" &&
		sess.AccessToken != "" &&
		sess.Provider == p.Name() &&
		sess.SubjectID == token.SubjectID {
		return &ConnectResult{
			DisplayName:      sess.Name,
			Picture:          sess.Picture,
			AlreadyConnected: true,
		}, nil
	}

	// Resolve the profile from the provider's user-info surface.
	identity, err := p.FetchIdentity(ctx, token)
	if err != nil {
		s.logger.Error("sign-in failed: identity fetch",
			slog.String("provider", providerName),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	if identity.Email == "" {
		// The email is our user key; without it there is nothing to link
		// the identity to.
		return nil, apperror.IdentityLookup(providerName,
			fmt.Errorf("provider returned no email"))
	}

	// First sign-in creates the durable user record; later sign-ins find
	// it. User creation is a side effect of this step, never a separate
	// registration.
	user := &model.User{
		Name:    identity.Name,
		Email:   identity.Email,
		Picture: identity.Picture,
	}
	if err := s.users.FindOrCreateByEmail(ctx, user); err != nil {
		return nil, fmt.Errorf("service/signin: resolving user for %s: %w", identity.Email, err)
	}

	// All five identity fields land together; the session is never left
	// partially authenticated at rest.
	sess.SetIdentity(
		p.Name(),
		token.AccessToken,
		identity.SubjectID,
		user.ID,
		identity.Name,
		identity.Picture,
		identity.Email,
	)

	s.logger.Info("user signed in",
		slog.String("provider", p.Name()),
		slog.String("userID", user.ID),
		slog.String("email", user.Email),
	)

	return &ConnectResult{
		User:        user,
		DisplayName: identity.Name,
		Picture:     identity.Picture,
	}, nil
}

// Disconnect signs the visitor out.
//
// The remote revoke is best-effort: a provider that is down or rejects the
// revocation must not trap the user in a signed-in session. Failures are
// logged and swallowed; local teardown is unconditional.
//
// Returns false when the session had no provider recorded; sign-out is
// then a no-op that still reports success.
func (s *SignInService) Disconnect(ctx context.Context, sess *session.Session) bool {
	if sess.Provider == "" {
		return false
	}

	if p, ok := s.providers.Get(sess.Provider); ok {
		token := &provider.Token{
			AccessToken: sess.AccessToken,
			SubjectID:   sess.SubjectID,
		}
		if err := p.Revoke(ctx, token); err != nil {
			s.logger.Warn("remote token revocation failed; signing out locally anyway",
				slog.String("provider", sess.Provider),
				slog.String("error", err.Error()),
			)
		}
	}

	userID := sess.UserID
	sess.ClearIdentity()

	s.logger.Info("user signed out", slog.String("userID", userID))
	return true
}
