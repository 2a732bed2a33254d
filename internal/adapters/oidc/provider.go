// Package oidc signs administrators in through an OpenID Connect provider.
package oidc

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	domainauth "github.com/target/eventdesk/internal/domain/auth"
	"github.com/target/eventdesk/internal/ports"
)

const stateLength = 32

// Provider implements ports.AuthProvider with the authorization code flow.
type Provider struct {
	config   *oauth2.Config
	provider *gooidc.Provider
	verifier *gooidc.IDTokenVerifier
	client   *http.Client
}

var _ ports.AuthProvider = (*Provider)(nil)

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// Scope is a space separated list; "openid" is always added.
	Scope string
	// Issuer may be the issuer URL or its discovery document URL.
	Issuer     string
	HTTPClient *http.Client
}

// NewProvider discovers the issuer's endpoints and builds a Provider.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Provider, error) {
	switch {
	case cfg.ClientID == "":
		return nil, errors.New("client ID is required")
	case cfg.ClientSecret == "":
		return nil, errors.New("client secret is required")
	case cfg.RedirectURL == "":
		return nil, errors.New("redirect URL is required")
	case cfg.Issuer == "":
		return nil, errors.New("issuer URL is required")
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	ctx = gooidc.ClientContext(ctx, client)

	issuer := strings.TrimSuffix(cfg.Issuer, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	op, err := gooidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	scopes := strings.Fields(cfg.Scope)
	if !slices.Contains(scopes, gooidc.ScopeOpenID) {
		scopes = append([]string{gooidc.ScopeOpenID}, scopes...)
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     op.Endpoint(),
		},
		provider: op,
		verifier: op.Verifier(&gooidc.Config{ClientID: cfg.ClientID}),
		client:   client,
	}, nil
}

// Begin returns the provider URL to redirect to along with fresh state and
// nonce values the caller must keep until the callback.
func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	state, err := randomString(stateLength)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := randomString(stateLength)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}
	opts := []oauth2.AuthCodeOption{gooidc.Nonce(nonce)}
	if in.RedirectURL != "" {
		opts = append(opts, oauth2.SetAuthURLParam("redirect_uri", in.RedirectURL))
	}
	return p.config.AuthCodeURL(state, opts...), state, nonce, nil
}

// Exchange trades the authorization code for tokens, verifies the ID token
// and its nonce, and maps the claims into an Identity.
func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (domainauth.Identity, error) {
	switch {
	case in.Code == "":
		return domainauth.Identity{}, errors.New("authorization code is required")
	case in.State == "":
		return domainauth.Identity{}, errors.New("state is required")
	case in.Nonce == "":
		return domainauth.Identity{}, errors.New("nonce is required")
	}
	ctx = gooidc.ClientContext(ctx, p.client)

	tok, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("exchange code for token: %w", err)
	}
	raw, err := rawIDToken(tok)
	if err != nil {
		return domainauth.Identity{}, err
	}
	idTok, err := p.verifier.Verify(ctx, raw)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("verify id_token: %w", err)
	}
	if idTok.Nonce != in.Nonce {
		return domainauth.Identity{}, errors.New("invalid nonce")
	}

	var c claims
	if err := idTok.Claims(&c); err != nil {
		return domainauth.Identity{}, fmt.Errorf("parse id_token claims: %w", err)
	}
	if c.Email == "" {
		if err := p.fillFromUserInfo(ctx, tok, &c); err != nil {
			return domainauth.Identity{}, err
		}
	}
	return c.identity(idTok.Expiry), nil
}

func (p *Provider) fillFromUserInfo(ctx context.Context, tok *oauth2.Token, c *claims) error {
	ui, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(tok))
	if err != nil {
		return fmt.Errorf("fetch user info: %w", err)
	}
	var extra claims
	if err := ui.Claims(&extra); err != nil {
		return fmt.Errorf("decode user info: %w", err)
	}
	c.merge(extra)
	return nil
}

// claims is the subset of standard OIDC claims the application reads.
type claims struct {
	Subject           string `json:"sub"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
	PreferredUsername string `json:"preferred_username"`
}

// merge fills empty fields from o.
func (c *claims) merge(o claims) {
	for _, f := range []struct{ dst, src *string }{
		{&c.Subject, &o.Subject},
		{&c.Email, &o.Email},
		{&c.Name, &o.Name},
		{&c.GivenName, &o.GivenName},
		{&c.FamilyName, &o.FamilyName},
		{&c.PreferredUsername, &o.PreferredUsername},
	} {
		if *f.dst == "" {
			*f.dst = *f.src
		}
	}
}

func (c claims) identity(expiry time.Time) domainauth.Identity {
	name := c.Name
	if name == "" {
		name = strings.TrimSpace(c.GivenName + " " + c.FamilyName)
	}
	if name == "" {
		name = c.PreferredUsername
	}
	return domainauth.Identity{
		Subject:   c.Subject,
		Email:     strings.ToLower(strings.TrimSpace(c.Email)),
		Name:      name,
		ExpiresAt: expiry,
	}
}

func rawIDToken(tok *oauth2.Token) (string, error) {
	if tok == nil {
		return "", errors.New("nil token")
	}
	s, ok := tok.Extra("id_token").(string)
	if !ok || s == "" {
		return "", errors.New("missing id_token in token response")
	}
	return s, nil
}

// randomString returns a URL-safe random string of exactly n characters.
func randomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:n], nil
}
