// Package config defines the configuration structure for the SaasterKit
// backend. Configuration is loaded once at process start and is immutable
// thereafter. It follows 12-Factor App principles by strictly separating
// code from configuration: every value comes from the environment (with a
// .env file as a development convenience), and any missing required value
// or invalid format fails the process immediately on startup.
package config

import (
	"time"

	"saasterkit/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct. It is populated once during
// process initialization and never modified. Sub-components receive only the
// specific config subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"required,oneof=local dev staging prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Server       ServerConfig
	Database     DatabaseConfig
	Clerk        ClerkConfig
	LemonSqueezy LemonSqueezyConfig
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	MaxConns        int           `envconfig:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `envconfig:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
}

// ClerkConfig holds the identity-provider integration settings: the shared
// secret for inbound webhook verification and the instance public key for
// networkless session-token verification.
type ClerkConfig struct {
	WebhookSecret SecretString `envconfig:"CLERK_WEBHOOK_SECRET" validate:"required"`
	JWTPublicKey  string       `envconfig:"CLERK_JWT_PUBLIC_KEY" validate:"required"`
}

// LemonSqueezyConfig holds the billing-provider integration settings.
// All three credentials are required up front (fail fast) rather than being
// checked per webhook delivery.
type LemonSqueezyConfig struct {
	APIKey        SecretString `envconfig:"LEMONSQUEEZY_API_KEY" validate:"required"`
	StoreID       string       `envconfig:"LEMONSQUEEZY_STORE_ID" validate:"required"`
	WebhookSecret SecretString `envconfig:"LEMONSQUEEZY_WEBHOOK_SECRET" validate:"required"`
	APIBaseURL    string       `envconfig:"LEMONSQUEEZY_API_URL" default:"https://api.lemonsqueezy.com"`
}
