package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/target/eventdesk/internal/domain/auth"
	"github.com/target/eventdesk/internal/ports"
)

// CheckInterval is how often an open admin page revalidates its session.
const CheckInterval = 60 * time.Second

const tokenBytes = 32

// SessionManagerOptions groups dependencies for SessionManager.
type SessionManagerOptions struct {
	Store  ports.SessionStore // Required
	Clock  ports.TimeProvider // Optional: defaults to the system clock
	Logger *slog.Logger       // Optional
}

// SessionManager owns the lifecycle of the tab-scoped admin session.
type SessionManager struct {
	store  ports.SessionStore
	clock  ports.TimeProvider
	logger *slog.Logger
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(opts SessionManagerOptions) *SessionManager {
	if opts.Store == nil {
		panic("SessionStore is required")
	}
	clock := opts.Clock
	if clock == nil {
		clock = ports.RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{store: opts.Store, clock: clock, logger: logger.With("component", "session")}
}

// SessionResult is the outcome of Validate.
type SessionResult struct {
	State   domainauth.State
	Session domainauth.Session
}

// OK reports whether the session may be used.
func (r SessionResult) OK() bool { return r.State == domainauth.StateValid }

// Validate reads the session for scope. An expired session is cleared
// before returning. Store errors are logged and reported as no session.
func (m *SessionManager) Validate(ctx context.Context, scope string) SessionResult {
	fields, err := m.store.Get(ctx, scope, domainauth.SessionKeys()...)
	if err != nil {
		m.logger.WarnContext(ctx, "session read failed", "error", err)
		return SessionResult{State: domainauth.StateNoSession}
	}
	sess, ok := domainauth.ParseSession(fields)
	if !ok {
		return SessionResult{State: domainauth.StateNoSession}
	}
	if sess.ExpiredAt(m.clock.Now()) {
		if err := m.Destroy(ctx, scope); err != nil {
			m.logger.WarnContext(ctx, "clear expired session failed", "error", err)
		}
		m.logger.InfoContext(ctx, "session expired", "admin_id", sess.AdminID)
		return SessionResult{State: domainauth.StateExpired}
	}
	return SessionResult{State: domainauth.StateValid, Session: sess}
}

// Create starts a new session for the admin, replacing any prior one.
func (m *SessionManager) Create(ctx context.Context, scope, adminID, adminEmail string) (domainauth.Session, error) {
	if adminID == "" || adminEmail == "" {
		return domainauth.Session{}, errors.New("admin id and email are required")
	}
	token, err := newToken()
	if err != nil {
		return domainauth.Session{}, fmt.Errorf("generate session token: %w", err)
	}
	sess := domainauth.Session{
		AdminID:    adminID,
		AdminEmail: adminEmail,
		Token:      token,
		ExpiryMS:   m.clock.Now().Add(domainauth.Lifetime).UnixMilli(),
	}
	if err := m.store.Set(ctx, scope, sess.Fields()); err != nil {
		return domainauth.Session{}, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// Destroy removes every session key for scope.
func (m *SessionManager) Destroy(ctx context.Context, scope string) error {
	if err := m.store.Remove(ctx, scope, domainauth.SessionKeys()...); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
