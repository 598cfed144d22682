package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/briefly/internal/client/client"
	"github.com/dmitrijs2005/briefly/internal/client/models"
	"github.com/dmitrijs2005/briefly/internal/client/repositories/session"
	"github.com/dmitrijs2005/briefly/internal/common"
	"github.com/dmitrijs2005/briefly/internal/logging"
)

// State is the authentication state of the session store.
type State int

const (
	StateUnknown State = iota
	StateVerifying
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateVerifying:
		return "verifying"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Authenticator is the part of the API the session store calls.
type Authenticator interface {
	Register(ctx context.Context, reg models.Registration) error
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResult, error)
}

// Session is the in-memory authenticated session. Expiry is zero when the
// token carries no decodable exp claim.
type Session struct {
	Token  string
	Expiry time.Time
	User   models.User
}

// SessionStore owns the bearer token and cached user profile and is the only
// writer of the persisted session. Its fields are safe for concurrent use,
// but callers must not run Login, Register and Verify concurrently.
type SessionStore struct {
	auth    Authenticator
	storage session.Storage
	log     logging.Logger
	now     func() time.Time

	mu      sync.RWMutex
	state   State
	session *Session

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int
}

type SessionOption func(*SessionStore)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) { s.now = now }
}

func NewSessionStore(auth Authenticator, storage session.Storage, log logging.Logger, opts ...SessionOption) *SessionStore {
	if log == nil {
		log = logging.Nop()
	}
	s := &SessionStore{
		auth:    auth,
		storage: storage,
		log:     log.With("component", "session"),
		now:     time.Now,
		state:   StateUnknown,
		subs:    make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ client.TokenSource = (*SessionStore)(nil)

// Verify rehydrates the session from storage without touching the network.
// A missing, corrupt, undecodable or expired session is cleared.
func (s *SessionStore) Verify(ctx context.Context) State {
	s.transition(StateVerifying, nil)

	rec, err := s.storage.Load(ctx)
	if err != nil {
		if !errors.Is(err, session.ErrNoSession) {
			s.log.Warn(ctx, "discarding persisted session", "error", err)
		}
		s.discard(ctx)
		return StateUnauthenticated
	}

	exp, err := DecodeTokenExpiry(rec.Token)
	if err != nil {
		s.log.Info(ctx, "persisted token is not decodable", "error", err)
		s.discard(ctx)
		return StateUnauthenticated
	}
	if expired(exp, s.now()) {
		s.log.Info(ctx, "persisted token expired", "expired_at", exp)
		s.discard(ctx)
		return StateUnauthenticated
	}

	s.transition(StateAuthenticated, &Session{Token: rec.Token, Expiry: exp, User: rec.User})
	s.log.Debug(ctx, "session restored", "user_id", rec.User.ID)
	return StateAuthenticated
}

// Login authenticates against the backend and persists the session. On
// failure the store is left as it was.
func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if err := validateEmail("email", email); err != nil {
		return err
	}
	if password == "" {
		return invalid("password", "is required")
	}

	res, err := s.auth.Login(ctx, models.Credentials{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	// opaque tokens are accepted; their expiry is simply unknown
	exp, err := DecodeTokenExpiry(res.AuthToken)
	if err != nil {
		exp = time.Time{}
	} else if expired(exp, s.now()) {
		return fmt.Errorf("login: %w", common.ErrTokenExpired)
	}

	if res.User.Email == "" {
		res.User.Email = email
	}
	if err := s.storage.Save(ctx, session.Record{Token: res.AuthToken, User: res.User}); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	s.transition(StateAuthenticated, &Session{Token: res.AuthToken, Expiry: exp, User: res.User})
	s.log.Info(ctx, "logged in", "user_id", res.User.ID)
	return nil
}

// Register creates an account. It never establishes a session.
func (s *SessionStore) Register(ctx context.Context, reg models.Registration) error {
	reg.Email = strings.TrimSpace(reg.Email)
	if err := ValidateRegistration(reg); err != nil {
		return err
	}
	if err := s.auth.Register(ctx, reg); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	s.log.Info(ctx, "registered", "email", reg.Email)
	return nil
}

// Logout clears the persisted and in-memory session. Calling it again is a
// no-op apart from re-clearing storage.
func (s *SessionStore) Logout(ctx context.Context) error {
	err := s.storage.Clear(ctx)
	s.transition(StateUnauthenticated, nil)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Expire ends the session after the backend rejected the token or it was
// found expired at call time.
func (s *SessionStore) Expire(ctx context.Context, reason string) {
	if s.State() == StateAuthenticated {
		s.log.Info(ctx, "session expired", "reason", reason)
	}
	s.discard(ctx)
}

// Token returns the bearer token for an authenticated call.
func (s *SessionStore) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	sess := s.session
	s.mu.RUnlock()

	if sess == nil {
		return "", client.ErrUnauthenticated
	}
	if !sess.Expiry.IsZero() && expired(sess.Expiry, s.now()) {
		s.Expire(ctx, "token expired")
		return "", client.ErrUnauthenticated
	}
	return sess.Token, nil
}

func (s *SessionStore) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns the cached profile of the authenticated user.
func (s *SessionStore) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return models.User{}, false
	}
	return s.session.User, true
}

func (s *SessionStore) Session() (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

// Subscribe registers fn to be called after every state transition and
// returns a func that removes it.
func (s *SessionStore) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *SessionStore) discard(ctx context.Context) {
	if err := s.storage.Clear(ctx); err != nil {
		s.log.Error(ctx, "failed to clear persisted session", "error", err)
	}
	s.transition(StateUnauthenticated, nil)
}

func (s *SessionStore) transition(next State, sess *Session) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.session = sess
	s.mu.Unlock()

	if prev == next {
		return
	}

	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}
