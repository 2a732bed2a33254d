package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/target/eventdesk/config"
	"github.com/target/eventdesk/internal/adapters/devauth"
	"github.com/target/eventdesk/internal/adapters/oidc"
	"github.com/target/eventdesk/internal/ports"
)

// BuildAuthProvider returns the single sign-on provider for cfg.Mode, or nil
// when SSO is disabled. Password login does not depend on it.
//
//nolint:ireturn // the provider is chosen at runtime.
func BuildAuthProvider(ctx context.Context, cfg config.AuthConfig, logger *slog.Logger) (ports.AuthProvider, error) {
	switch cfg.Mode {
	case config.AuthModeDev:
		logger.WarnContext(ctx, "dev sign-on enabled; do not use in production", "email", cfg.Dev.Email)
		prov, err := devauth.NewProvider(devauth.Config{Email: cfg.Dev.Email, Name: cfg.Dev.Name})
		if err != nil {
			return nil, fmt.Errorf("dev auth provider: %w", err)
		}
		return prov, nil

	case config.AuthModeOIDC:
		prov, err := oidc.NewProvider(ctx, oidc.ProviderConfig{
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			RedirectURL:  cfg.OIDC.RedirectURL,
			Scope:        cfg.OIDC.Scope,
			Issuer:       cfg.OIDC.DiscoveryURL,
		})
		if err != nil {
			return nil, fmt.Errorf("oidc provider: %w", err)
		}
		logger.InfoContext(ctx, "oidc sign-on enabled", "client_id", cfg.OIDC.ClientID)
		return prov, nil

	default:
		return nil, nil
	}
}
