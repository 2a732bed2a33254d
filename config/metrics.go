package config

import (
	"errors"
	"strings"
)

// MetricsConfig points the process at a StatsD agent. Empty address
// disables metrics.
type MetricsConfig struct {
	StatsdAddress string `env:"STATSD_ADDRESS"`
	Prefix        string `env:"PREFIX"         envDefault:"eventdesk"`
	Env           string `env:"ENV"`
}

// Enabled reports whether an agent address is configured.
func (c *MetricsConfig) Enabled() bool { return c.StatsdAddress != "" }

// Sanitize trims whitespace and stray dots from the prefix.
func (c *MetricsConfig) Sanitize() {
	c.StatsdAddress = strings.TrimSpace(c.StatsdAddress)
	c.Prefix = strings.Trim(strings.TrimSpace(c.Prefix), ".")
	c.Env = strings.TrimSpace(c.Env)
}

// Validate requires host:port when an address is set.
func (c *MetricsConfig) Validate() error {
	if c.StatsdAddress != "" && !strings.Contains(c.StatsdAddress, ":") {
		return errors.New("METRICS_STATSD_ADDRESS must be host:port")
	}
	return nil
}
