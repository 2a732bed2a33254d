package config

import (
	"reflect"
	"strings"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Gateway.Driver != GatewayPostgres {
		t.Errorf("Gateway.Driver = %q, want postgres", cfg.Gateway.Driver)
	}
	if cfg.Session.Store != SessionStoreRedis {
		t.Errorf("Session.Store = %q, want redis", cfg.Session.Store)
	}
	if cfg.Session.TTL != 2*time.Hour+15*time.Minute {
		t.Errorf("Session.TTL = %v", cfg.Session.TTL)
	}
	if cfg.Auth.Mode != AuthModeNone {
		t.Errorf("Auth.Mode = %q, want none", cfg.Auth.Mode)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "OIDC")
	t.Setenv("AUTH_OIDC_CLIENT_ID", "eventdesk")
	t.Setenv("AUTH_OIDC_CLIENT_SECRET", "super-secret")
	t.Setenv("AUTH_OIDC_REDIRECT_URL", "https://desk.example.com/auth/callback")
	t.Setenv("AUTH_OIDC_DISCOVERY_URL", "https://login.example.com/.well-known/openid-configuration")
	t.Setenv("AUTH_DEV_EMAIL", "dev@example.com")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}

	expected := AuthConfig{
		Mode: AuthModeOIDC,
		OIDC: OIDCConfig{
			ClientID:     "eventdesk",
			ClientSecret: "super-secret",
			RedirectURL:  "https://desk.example.com/auth/callback",
			Scope:        "openid profile email",
			DiscoveryURL: "https://login.example.com/.well-known/openid-configuration",
		},
		Dev: DevAuthConfig{Email: "dev@example.com", Name: "Dev Admin"},
	}
	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
	if err := cfg.Auth.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestAppConfig_InvalidEnums(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"AUTH_MODE", "ldap"},
		{"GATEWAY_DRIVER", "mysql"},
		{"SESSION_STORE", "cookie"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			var cfg AppConfig
			err := env.Parse(&cfg)
			if err == nil || !strings.Contains(err.Error(), tt.value) {
				t.Fatalf("expected error naming %q, got %v", tt.value, err)
			}
		})
	}
}

func TestGatewayConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     GatewayConfig
		wantErr bool
	}{
		{name: "postgres needs nothing", cfg: GatewayConfig{Driver: GatewayPostgres}},
		{name: "memory needs nothing", cfg: GatewayConfig{Driver: GatewayMemory}},
		{name: "postgrest without url", cfg: GatewayConfig{Driver: GatewayPostgREST, APIKey: "k"}, wantErr: true},
		{name: "postgrest without key", cfg: GatewayConfig{Driver: GatewayPostgREST, URL: "https://x.supabase.co/rest/v1"}, wantErr: true},
		{name: "postgrest complete", cfg: GatewayConfig{Driver: GatewayPostgREST, URL: "https://x.supabase.co/rest/v1", APIKey: "k"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGatewayConfig_Sanitize(t *testing.T) {
	g := GatewayConfig{URL: " https://x.supabase.co/rest/v1/ ", Timeout: -1}
	g.Sanitize()
	if g.URL != "https://x.supabase.co/rest/v1" {
		t.Errorf("URL = %q", g.URL)
	}
	if g.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v", g.Timeout)
	}
}

func TestHTTPConfig_CookieDomain(t *testing.T) {
	tests := []struct {
		domain  string
		want    string
		wantErr bool
	}{
		{domain: "", want: ""},
		{domain: "localhost", want: "localhost"},
		{domain: ".Desk.Example.com", want: "desk.example.com"},
		{domain: "com", want: "com", wantErr: true},
		{domain: "co.uk", want: "co.uk", wantErr: true},
		{domain: "github.io", want: "github.io", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			h := HTTPConfig{CookieDomain: tt.domain}
			h.Sanitize()
			if h.CookieDomain != tt.want {
				t.Errorf("CookieDomain = %q, want %q", h.CookieDomain, tt.want)
			}
			if err := h.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	h := HTTPConfig{CompressionLevel: 42}
	h.Sanitize()
	if h.CompressionLevel != 9 {
		t.Errorf("CompressionLevel = %d, want 9", h.CompressionLevel)
	}
	if h.ShutdownTimeout != 15*time.Second || h.ReadHeaderTimeout != 10*time.Second {
		t.Errorf("timeouts not defaulted: %+v", h)
	}
}

func TestSessionConfig_Sanitize(t *testing.T) {
	s := SessionConfig{TTL: time.Minute}
	s.Sanitize()
	if s.TTL != 2*time.Hour+15*time.Minute {
		t.Errorf("TTL = %v", s.TTL)
	}
}

func TestAuthConfig_Validate(t *testing.T) {
	if err := (&AuthConfig{Mode: AuthModeOIDC}).Validate(); err == nil {
		t.Error("oidc without client id should fail")
	}
	if err := (&AuthConfig{Mode: AuthModeDev}).Validate(); err == nil {
		t.Error("dev without email should fail")
	}
	if err := (&AuthConfig{Mode: AuthModeNone}).Validate(); err != nil {
		t.Errorf("none: %v", err)
	}
}

func TestAppConfig_Location(t *testing.T) {
	cfg := AppConfig{Timezone: "Asia/Kolkata"}
	loc, err := cfg.Location()
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	if loc.String() != "Asia/Kolkata" {
		t.Errorf("Location = %v", loc)
	}

	cfg.Timezone = "Mars/Olympus"
	if _, err := cfg.Location(); err == nil {
		t.Error("unknown zone should fail")
	}
	cfg.Timezone = ""
	if loc, _ := cfg.Location(); loc != time.UTC {
		t.Errorf("empty timezone = %v, want UTC", loc)
	}
}

func TestLoggingConfig(t *testing.T) {
	c := LoggingConfig{Level: " DEBUG ", Format: "yaml"}
	c.Sanitize()
	if c.Format != "json" {
		t.Errorf("Format = %q", c.Format)
	}
	if c.SlogLevel().String() != "DEBUG" {
		t.Errorf("SlogLevel = %v", c.SlogLevel())
	}
}

func TestDetectDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	var cfg AppConfig
	cfg.Sanitize()
	if !cfg.IsDev {
		t.Error("NODE_ENV=development should enable dev mode")
	}
}

func TestMetricsConfig(t *testing.T) {
	c := MetricsConfig{StatsdAddress: " 127.0.0.1:8125 ", Prefix: ".eventdesk."}
	c.Sanitize()
	if !c.Enabled() || c.StatsdAddress != "127.0.0.1:8125" || c.Prefix != "eventdesk" {
		t.Errorf("sanitized = %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	c.StatsdAddress = "statsd"
	if err := c.Validate(); err == nil {
		t.Error("address without port should fail")
	}
	var off MetricsConfig
	if off.Enabled() {
		t.Error("empty address should disable metrics")
	}
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "desk", Password: "p@ss/word", Name: "eventdesk", SSLMode: "require"}
	want := "postgres://desk:p%40ss%2Fword@db:5432/eventdesk?sslmode=require"
	if got := c.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
	if (RedisConfig{UseSentinel: true}).Mode() != "sentinel" {
		t.Error("sentinel mode")
	}
}
