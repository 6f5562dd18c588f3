package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required when database.driver is postgres")
		}
	case "memory":
		// no DSN needed
	default:
		return fmt.Errorf("database.driver must be postgres or memory (got %q)", c.Database.Driver)
	}

	if err := c.Intake.validate(); err != nil {
		return fmt.Errorf("intake: %w", err)
	}

	return nil
}

func (c *IntakeConfig) validate() error {
	if c.ExistingLinkTTL <= 0 {
		return fmt.Errorf("existing_link_ttl must be > 0 (got %v)", c.ExistingLinkTTL)
	}
	if c.LinkRateLimitPerMinute <= 0 {
		return fmt.Errorf("link_rate_limit_per_minute must be > 0 (got %d)", c.LinkRateLimitPerMinute)
	}

	opts, err := ParseTTLOptions(c.NewClientTTLOptionsRaw)
	if err != nil {
		return fmt.Errorf("new_client_ttl_options: %w", err)
	}
	if len(opts) == 0 {
		return fmt.Errorf("new_client_ttl_options must list at least one TTL")
	}
	c.NewClientTTLOptions = opts

	return nil
}

// ParseTTLOptions parses a comma-separated string of durations (e.g. "24h,72h")
// into a slice of time.Duration. An empty string returns a nil slice.
func ParseTTLOptions(raw string) ([]time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	opts := make([]time.Duration, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d, err := time.ParseDuration(p)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", p, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("duration %q must be > 0", p)
		}
		opts = append(opts, d)
	}

	return opts, nil
}
