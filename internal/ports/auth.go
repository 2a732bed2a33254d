package ports

// Package ports defines the interfaces (hexagonal ports) the services depend on.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/target/eventdesk/internal/domain/auth"
)

// BeginInput carries inputs for initiating an SSO flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider initiates and completes a single sign-on flow against an IdP.
type AuthProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an opaque state, and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and returns the authenticated identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SessionStore is a flat string key/value store partitioned by scope, one
// scope per browser tab session. Missing keys are simply absent from Get's
// result; Get never fails because a key is missing.
type SessionStore interface {
	Get(ctx context.Context, scope string, keys ...string) (map[string]string, error)
	// Set writes all fields together; readers never observe a partial write.
	Set(ctx context.Context, scope string, fields map[string]string) error
	Remove(ctx context.Context, scope string, keys ...string) error
}
