package config

import (
	"errors"
	"fmt"
	"strings"
)

// AuthMode selects the optional single sign-on provider. Password login is
// always available.
type AuthMode string

const (
	// AuthModeNone disables single sign-on.
	AuthModeNone AuthMode = "none"
	// AuthModeOIDC enables sign-on through an OpenID Connect provider.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeDev signs in as a fixed admin without an identity provider (development only).
	AuthModeDev AuthMode = "dev"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := AuthMode(strings.ToLower(strings.TrimSpace(string(text))))
	switch v {
	case AuthModeNone, AuthModeOIDC, AuthModeDev:
		*a = v
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: none, oidc, dev)", v)
	}
}

// OIDCConfig contains OAuth/OIDC configuration.
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// DevAuthConfig controls the dev sign-on identity. The email must belong to
// an existing admin.
type DevAuthConfig struct {
	Email string `env:"EMAIL" envDefault:"admin@example.com"`
	Name  string `env:"NAME"  envDefault:"Dev Admin"`
}

// AuthConfig groups admin sign-in configuration.
type AuthConfig struct {
	Mode AuthMode      `env:"MODE" envDefault:"none"`
	OIDC OIDCConfig    `           envPrefix:"OIDC_"`
	Dev  DevAuthConfig `           envPrefix:"DEV_"`
}

// Sanitize trims provider settings.
func (a *AuthConfig) Sanitize() {
	a.OIDC.ClientID = strings.TrimSpace(a.OIDC.ClientID)
	a.OIDC.DiscoveryURL = strings.TrimSpace(a.OIDC.DiscoveryURL)
	a.Dev.Email = strings.ToLower(strings.TrimSpace(a.Dev.Email))
}

// Validate checks the settings of the selected mode.
func (a *AuthConfig) Validate() error {
	switch a.Mode {
	case AuthModeOIDC:
		if a.OIDC.ClientID == "" || a.OIDC.DiscoveryURL == "" {
			return errors.New("AUTH_OIDC_CLIENT_ID and AUTH_OIDC_DISCOVERY_URL are required for oidc mode")
		}
	case AuthModeDev:
		if a.Dev.Email == "" {
			return errors.New("AUTH_DEV_EMAIL is required for dev mode")
		}
	}
	return nil
}
