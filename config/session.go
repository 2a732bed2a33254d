package config

import (
	"fmt"
	"strings"
	"time"
)

// SessionStoreDriver selects where tab-scoped admin sessions live.
type SessionStoreDriver string

const (
	// SessionStoreRedis keeps one Redis hash per tab scope.
	SessionStoreRedis SessionStoreDriver = "redis"
	// SessionStoreMemory keeps sessions in process; single instance only.
	SessionStoreMemory SessionStoreDriver = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionStoreDriver.
func (d *SessionStoreDriver) UnmarshalText(text []byte) error {
	v := SessionStoreDriver(strings.ToLower(strings.TrimSpace(string(text))))
	switch v {
	case SessionStoreRedis, SessionStoreMemory:
		*d = v
		return nil
	default:
		return fmt.Errorf("invalid SessionStoreDriver: %q (valid options: redis, memory)", v)
	}
}

// SessionConfig configures the session store. TTL only bounds how long an
// idle scope is kept; session validity comes from the stored expiry.
type SessionConfig struct {
	Store     SessionStoreDriver `env:"STORE"      envDefault:"redis"`
	KeyPrefix string             `env:"KEY_PREFIX" envDefault:"eventdesk:tab:"`
	TTL       time.Duration      `env:"TTL"        envDefault:"2h15m"`
}

// Sanitize keeps the TTL above the session lifetime.
func (s *SessionConfig) Sanitize() {
	if s.TTL < 2*time.Hour {
		s.TTL = 2*time.Hour + 15*time.Minute
	}
	s.KeyPrefix = strings.TrimSpace(s.KeyPrefix)
}
