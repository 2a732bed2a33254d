// Package devauth is a local-development sign-in provider. It skips the
// identity provider round trip and always returns the configured admin.
package devauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/target/eventdesk/internal/domain/auth"
	"github.com/target/eventdesk/internal/ports"
)

// Config controls the dev provider. Email must match an existing admin.
type Config struct {
	Email string
	Name  string
	// CallbackPath defaults to /auth/callback.
	CallbackPath string
}

// Provider implements ports.AuthProvider without contacting an IdP.
type Provider struct {
	email    string
	name     string
	callback string
	now      func() time.Time
}

var _ ports.AuthProvider = (*Provider)(nil)

// NewProvider builds a Provider from cfg.
func NewProvider(cfg Config) (*Provider, error) {
	email := strings.ToLower(strings.TrimSpace(cfg.Email))
	if email == "" {
		return nil, errors.New("dev auth: email is required")
	}
	cb := cfg.CallbackPath
	if cb == "" {
		cb = "/auth/callback"
	}
	return &Provider{email: email, name: cfg.Name, callback: cb, now: time.Now}, nil
}

// Begin points the browser straight back at the local callback.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(24)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	q := url.Values{"code": {"dev"}, "state": {state}}
	return p.callback + "?" + q.Encode(), state, nonce, nil
}

// Exchange returns the configured identity. State checks happen in the caller.
func (p *Provider) Exchange(_ context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	if in.Code == "" {
		return domainauth.Identity{}, errors.New("authorization code is required")
	}
	return domainauth.Identity{
		Subject:   "dev:" + p.email,
		Email:     p.email,
		Name:      p.name,
		ExpiresAt: p.now().Add(domainauth.Lifetime),
	}, nil
}

func randomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
