// Package session holds the current authenticated identity/token pair and
// keeps it durable across restarts via a Persistence backend.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/launchlift/launchlift/internal/auth"
	"github.com/launchlift/launchlift/internal/models"
)

// Authenticator is the external collaborator that validates credentials
// and resolves tokens. auth.Service is the production implementation.
type Authenticator interface {
	Login(ctx context.Context, creds auth.Credentials) (*auth.Result, error)
	Signup(ctx context.Context, payload auth.SignupPayload) (*auth.Result, error)
	FetchProfile(ctx context.Context, token string) (models.Identity, error)
}

// Session is a point-in-time view of the store. Token and Identity are
// both set or both zero.
type Session struct {
	Token     string
	Identity  *models.Identity
	Loading   bool
	LastError string
}

// Authenticated reports whether a full session is present.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.Identity != nil
}

// Store owns the single current session. Mutations are serialized; remote
// calls run outside the lock so a second concurrent login simply
// overwrites the first's result (last-write-wins).
type Store struct {
	mu      sync.Mutex
	authn   Authenticator
	persist Persistence

	token    string
	identity *models.Identity
	loading  bool
	lastErr  string
}

// NewStore constructs a store hydrated from persistence. Missing or
// malformed persisted data degrades to an empty session.
func NewStore(ctx context.Context, authn Authenticator, persist Persistence) *Store {
	s := &Store{authn: authn, persist: persist}
	if token, identity, ok := persist.Load(ctx); ok {
		s.token = token
		s.identity = &identity
	}
	return s
}

// Snapshot returns the current session view.
func (s *Store) Snapshot() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Session{Token: s.token, Identity: s.identity, Loading: s.loading, LastError: s.lastErr}
}

// Login validates credentials via the authenticator. Failure records the
// error message and leaves any existing session untouched.
func (s *Store) Login(ctx context.Context, creds auth.Credentials) (models.Identity, error) {
	return s.authenticate(ctx, func() (*auth.Result, error) {
		return s.authn.Login(ctx, creds)
	})
}

// Signup has the same contract as Login for account creation.
func (s *Store) Signup(ctx context.Context, payload auth.SignupPayload) (models.Identity, error) {
	return s.authenticate(ctx, func() (*auth.Result, error) {
		return s.authn.Signup(ctx, payload)
	})
}

func (s *Store) authenticate(ctx context.Context, attempt func() (*auth.Result, error)) (models.Identity, error) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	result, err := attempt()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.lastErr = err.Error()
		return models.Identity{}, err
	}

	s.token = result.Token
	identity := result.Identity
	s.identity = &identity
	s.lastErr = ""
	s.save(ctx)
	return result.Identity, nil
}

// EstablishSession sets the session directly, bypassing remote validation.
// Used for pre-validated flows such as OTP verification.
func (s *Store) EstablishSession(ctx context.Context, identity models.Identity, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.identity = &identity
	s.lastErr = ""
	s.save(ctx)
}

// Logout clears the session unconditionally. Idempotent.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clear(ctx)
}

// RefreshProfile re-resolves the identity from the current token. With no
// token it is a no-op. A failed refresh logs the session out and returns
// the error.
func (s *Store) RefreshProfile(ctx context.Context) (models.Identity, error) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return models.Identity{}, nil
	}

	identity, err := s.authn.FetchProfile(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != token {
		// The session changed while the fetch was in flight (logout or a
		// new login); the stale result must not overwrite it.
		return models.Identity{}, nil
	}
	if err != nil {
		s.clear(ctx)
		return models.Identity{}, err
	}
	s.identity = &identity
	s.save(ctx)
	return identity, nil
}

// save and clear assume s.mu is held.

func (s *Store) save(ctx context.Context) {
	if s.token == "" || s.identity == nil {
		return
	}
	if err := s.persist.Save(ctx, s.token, *s.identity); err != nil {
		slog.Error("Failed to persist session", "error", err)
	}
}

func (s *Store) clear(ctx context.Context) {
	s.token = ""
	s.identity = nil
	if err := s.persist.Clear(ctx); err != nil {
		slog.Error("Failed to clear persisted session", "error", err)
	}
}
