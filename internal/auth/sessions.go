package auth

import (
	"context"
	"crypto/subtle"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL matches the 7-day cookie lifetime of the login flow.
const DefaultSessionTTL = 7 * 24 * time.Hour

type session struct {
	principal Principal
	expires   time.Time
}

// Sessions validates the configured credential pair and tracks issued
// session tokens in memory. Tokens are opaque; restarting the process logs
// everyone out.
type Sessions struct {
	mu       sync.RWMutex
	username string
	password string
	tokens   map[string]session
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// Option represents a configuration option for Sessions.
type Option func(*Sessions)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sessions) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTTL sets the session lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Sessions) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Sessions) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a session manager for the given credential pair.
func New(username, password string, opts ...Option) *Sessions {
	s := &Sessions{
		username: username,
		password: password,
		tokens:   make(map[string]session),
		ttl:      DefaultSessionTTL,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login checks the credentials and, on success, issues a fresh session
// token.
func (s *Sessions) Login(_ context.Context, creds Credentials) (string, error) {
	// Constant-time comparison to prevent timing attacks. Both fields are
	// compared before deciding so the failure mode is uniform.
	userOK := subtle.ConstantTimeCompare([]byte(s.username), []byte(creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(s.password), []byte(creds.Password)) == 1
	if !userOK || !passOK {
		s.logger.Info("authentication failed", "username", creds.Username)
		return "", &Error{
			Type:    ErrInvalidCredentials,
			Message: "invalid username or password",
		}
	}

	token := uuid.NewString()

	s.mu.Lock()
	s.tokens[token] = session{
		principal: Principal{ID: creds.Username},
		expires:   s.now().Add(s.ttl),
	}
	s.mu.Unlock()

	s.logger.Debug("session issued", "username", creds.Username)
	return token, nil
}

// Validate resolves a session token to its principal, dropping the token if
// it has expired.
func (s *Sessions) Validate(_ context.Context, token string) (*Principal, error) {
	s.mu.RLock()
	sess, ok := s.tokens[token]
	s.mu.RUnlock()

	if !ok {
		return nil, &Error{Type: ErrUnauthorized, Message: "unknown session token"}
	}
	if s.now().After(sess.expires) {
		s.mu.Lock()
		delete(s.tokens, token)
		s.mu.Unlock()
		return nil, &Error{Type: ErrUnauthorized, Message: "session expired"}
	}

	principal := sess.principal
	return &principal, nil
}

// Logout discards a session token. Unknown tokens are ignored.
func (s *Sessions) Logout(_ context.Context, token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}
