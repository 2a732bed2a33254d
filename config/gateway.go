package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// GatewayDriver selects the tabular data gateway implementation.
type GatewayDriver string

const (
	// GatewayPostgres talks to PostgreSQL directly through pgx.
	GatewayPostgres GatewayDriver = "postgres"
	// GatewayPostgREST talks to a hosted PostgREST endpoint over HTTPS.
	GatewayPostgREST GatewayDriver = "postgrest"
	// GatewayMemory keeps everything in process (development only).
	GatewayMemory GatewayDriver = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for GatewayDriver.
func (d *GatewayDriver) UnmarshalText(text []byte) error {
	v := GatewayDriver(strings.ToLower(strings.TrimSpace(string(text))))
	switch v {
	case GatewayPostgres, GatewayPostgREST, GatewayMemory:
		*d = v
		return nil
	default:
		return fmt.Errorf("invalid GatewayDriver: %q (valid options: postgres, postgrest, memory)", v)
	}
}

// GatewayConfig selects and configures the data gateway.
type GatewayConfig struct {
	Driver GatewayDriver `env:"DRIVER" envDefault:"postgres"`
	// URL is the PostgREST root, e.g. https://project.supabase.co/rest/v1.
	URL     string        `env:"URL"`
	APIKey  string        `env:"API_KEY"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Sanitize trims the endpoint and defaults the timeout.
func (g *GatewayConfig) Sanitize() {
	g.URL = strings.TrimRight(strings.TrimSpace(g.URL), "/")
	g.APIKey = strings.TrimSpace(g.APIKey)
	if g.Timeout <= 0 {
		g.Timeout = 10 * time.Second
	}
}

// Validate checks the PostgREST settings when that driver is selected.
func (g *GatewayConfig) Validate() error {
	if g.Driver != GatewayPostgREST {
		return nil
	}
	if g.URL == "" {
		return errors.New("GATEWAY_URL is required for the postgrest driver")
	}
	if g.APIKey == "" {
		return errors.New("GATEWAY_API_KEY is required for the postgrest driver")
	}
	return nil
}
