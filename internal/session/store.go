// Package session owns the client's authentication state: the current
// identity, the persisted token, and change notifications to observers.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/julianstephens/habitsync/internal/errors"
	"github.com/julianstephens/habitsync/internal/keyring"
	"github.com/julianstephens/habitsync/internal/logger"
	"github.com/julianstephens/habitsync/internal/models"
	"github.com/julianstephens/habitsync/internal/validation"
)

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
}

// Navigator receives the "go to login" signal after logout.
type Navigator interface {
	ToLogin()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) ToLogin() { f() }

type subscriber struct {
	id int
	fn func(models.Session)
}

// Store is the single source of truth for who is logged in.
type Store struct {
	auth      Authenticator
	tokens    keyring.TokenStore
	nav       Navigator
	validator *validation.Validator

	mu      sync.Mutex
	current models.Session
	subs    []subscriber
	nextID  int

	// emitMu serializes observer delivery so every observer sees changes in
	// the order they were committed.
	emitMu sync.Mutex
}

// New creates a Store, restoring a previously persisted token if present.
// A restored session carries the token only; identity fields stay blank
// until the next login.
func New(auth Authenticator, tokens keyring.TokenStore, nav Navigator) (*Store, error) {
	s := &Store{
		auth:      auth,
		tokens:    tokens,
		nav:       nav,
		validator: validation.New(),
	}

	token, err := tokens.Get()
	switch {
	case err == nil:
		s.current = models.Session{Token: token}
		logger.Warn("Restored persisted session token; identity unknown until next login")
	case errors.Is(err, keyring.ErrNotFound):
		logger.Debug("No persisted session token")
	default:
		return nil, fmt.Errorf("failed to read persisted session token: %w", err)
	}

	return s, nil
}

// Login authenticates with the remote service. On failure the session is
// left exactly as it was.
func (s *Store) Login(ctx context.Context, username, password string) (models.Session, error) {
	req := models.LoginRequest{Username: username, Password: password}
	if err := s.validator.ValidateLogin(req); err != nil {
		return s.Current(), err
	}

	resp, err := s.auth.Login(ctx, req)
	if err != nil {
		logger.Warn("Login failed", "username", username, "error", err)
		return s.Current(), authError("login", err)
	}

	return s.establish("login", models.Session{
		Token:    resp.Token,
		UserID:   resp.UserID,
		Username: username,
	})
}

// Signup registers a new account and logs in as it.
func (s *Store) Signup(ctx context.Context, username, email, password string) (models.Session, error) {
	req := models.SignupRequest{Username: username, Email: email, Password: password}
	if err := s.validator.ValidateSignup(req); err != nil {
		return s.Current(), err
	}

	resp, err := s.auth.Signup(ctx, req)
	if err != nil {
		logger.Warn("Signup failed", "username", username, "error", err)
		return s.Current(), authError("signup", err)
	}

	return s.establish("signup", models.Session{
		Token:    resp.Token,
		UserID:   resp.UserID,
		Username: username,
		Email:    email,
	})
}

func (s *Store) establish(op string, next models.Session) (models.Session, error) {
	if next.Token == "" {
		return s.Current(), &apperrors.AuthError{Op: op, Message: "server returned no token"}
	}
	if err := s.tokens.Set(next.Token); err != nil {
		logger.Warn("Failed to persist session token", "op", op, "error", err)
		return s.Current(), &apperrors.AuthError{Op: op, Message: "could not persist session token", Err: err}
	}

	s.set(next)
	logger.Info("Session established", "op", op, "user_id", next.UserID, "username", next.Username)
	return next, nil
}

// authError converts a gateway failure into an AuthError carrying the
// server's explanation when there is one.
func authError(op string, err error) error {
	var remote *apperrors.RemoteError
	if errors.As(err, &remote) {
		msg := remote.Message
		switch {
		case remote.Unreachable():
			msg = "could not reach server"
		case msg == "":
			msg = fmt.Sprintf("server returned status %d", remote.StatusCode)
		}
		return &apperrors.AuthError{Op: op, Message: msg, Err: err}
	}
	return &apperrors.AuthError{Op: op, Message: err.Error(), Err: err}
}

// Logout forgets the session. Calling it when already logged out is not an
// error; observers and the navigator are notified either way.
func (s *Store) Logout() error {
	if err := s.tokens.Delete(); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to remove persisted session token: %w", err)
	}

	s.set(models.Session{})
	logger.Info("Logged out")

	if s.nav != nil {
		s.nav.ToLogin()
	}
	return nil
}

// IsAuthenticated reports whether a token is persisted. The token itself is
// not checked.
func (s *Store) IsAuthenticated() bool {
	token, err := s.tokens.Get()
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		logger.Warn("Failed to read persisted session token", "error", err)
	}
	return err == nil && token != ""
}

// Current returns a snapshot of the session.
func (s *Store) Current() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Token returns the in-memory bearer token, or "" when logged out.
func (s *Store) Token() string {
	return s.Current().Token
}

// Subscribe registers fn and immediately calls it with the current session.
// fn is then called after every change until the returned function is
// called. fn must not call Subscribe.
func (s *Store) Subscribe(fn func(models.Session)) (unsubscribe func()) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	snapshot := s.current
	s.mu.Unlock()

	fn(snapshot)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) set(next models.Session) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	s.current = next
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(next)
	}
}

// TokenExpiry decodes the token's exp claim for display. The signature is
// not verified and the result never decides authentication.
func (s *Store) TokenExpiry() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		logger.Debug("Session token is not a decodable JWT", "error", err)
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
