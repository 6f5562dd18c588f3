package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Intake   IntakeConfig   `yaml:"intake"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds persistence settings. Driver selects the store
// implementation at startup: "postgres" for the real database, "memory"
// for the in-process store used in tests and local demos.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"             env:"DATABASE_DRIVER"             env-default:"postgres"`
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// AuthConfig holds staff authentication settings.
type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret"        env:"AUTH_JWT_SECRET"        env-required:"true"`
	JWTIssuer       string        `yaml:"jwt_issuer"        env:"AUTH_JWT_ISSUER"        env-default:"taxdesk"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"  env:"AUTH_ACCESS_TOKEN_TTL"  env-default:"15m"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"AUTH_REFRESH_TOKEN_TTL" env-default:"720h"`
}

// IntakeConfig holds intake-link settings.
type IntakeConfig struct {
	// ExistingLinkTTL is the fixed TTL for links bound to an existing
	// workspace. Operators cannot change it per link.
	ExistingLinkTTL time.Duration `yaml:"existing_link_ttl" env:"INTAKE_EXISTING_LINK_TTL" env-default:"72h"`

	// NewClientTTLOptionsRaw is the comma-separated set of TTLs an operator
	// may pick for new-client links.
	NewClientTTLOptionsRaw string `yaml:"new_client_ttl_options" env:"INTAKE_NEW_CLIENT_TTL_OPTIONS" env-default:"24h,72h,168h"`

	// LinkRateLimitPerMinute caps public intake endpoint requests per IP.
	LinkRateLimitPerMinute int `yaml:"link_rate_limit_per_minute" env:"INTAKE_LINK_RATE_LIMIT" env-default:"30"`

	// CleanupRetention is how long used/expired links are kept before the
	// cleanup command deletes them.
	CleanupRetention time.Duration `yaml:"cleanup_retention" env:"INTAKE_CLEANUP_RETENTION" env-default:"2160h"`

	// NewClientTTLOptions is parsed from NewClientTTLOptionsRaw during validation.
	NewClientTTLOptions []time.Duration `yaml:"-" env:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PATCH,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// IsNewClientTTLAllowed checks a requested TTL against the configured options.
func (c IntakeConfig) IsNewClientTTLAllowed(ttl time.Duration) bool {
	for _, opt := range c.NewClientTTLOptions {
		if opt == ttl {
			return true
		}
	}
	return false
}
