package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: Admin sign-in configuration
//   - database.go: Postgres and Redis connections
//   - gateway.go: Data gateway selection
//   - http.go: HTTP server configuration
//   - logging.go: Log level and format
//   - metrics.go: StatsD sink
//   - session.go: Tab-scoped session store
type AppConfig struct {
	// IsDev controls development mode behavior (templates from disk, no caching).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// Timezone renders event dates and interprets the event form's local times.
	Timezone string `env:"APP_TIMEZONE" envDefault:"UTC"`

	HTTP     HTTPConfig
	Gateway  GatewayConfig `envPrefix:"GATEWAY_"`
	Postgres DBConfig      `envPrefix:"DB_"`
	Redis    RedisConfig   `envPrefix:"REDIS_"`
	Session  SessionConfig `envPrefix:"SESSION_"`
	Auth     AuthConfig    `envPrefix:"AUTH_"`
	Logging  LoggingConfig `envPrefix:"LOG_"`
	Metrics  MetricsConfig `envPrefix:"METRICS_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Gateway.Sanitize()
	c.Session.Sanitize()
	c.Auth.Sanitize()
	c.Logging.Sanitize()
	c.Metrics.Sanitize()
	c.Timezone = strings.TrimSpace(c.Timezone)
	c.detectDevMode()
}

// Validate reports configuration that cannot work at runtime.
func (c *AppConfig) Validate() error {
	var errs []error
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if err := c.HTTP.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Gateway.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Metrics.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Location loads the configured timezone. Empty means UTC.
func (c *AppConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}
