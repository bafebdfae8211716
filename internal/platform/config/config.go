// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. In development a
local .env file is loaded first with 'joho/godotenv'.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Mailer) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// # Mailer Backends

const (
	// MailerLog writes confirmation emails to the structured log.
	MailerLog = "log"

	// MailerAMQP publishes confirmation emails to a RabbitMQ queue.
	MailerAMQP = "amqp"
)

// # Configuration Schema

// Config holds all runtime configuration for the yamdb API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// CodeSecret keys the digests of confirmation codes at rest.
	CodeSecret string `env:"CODE_SECRET,required"`

	// Bearer token signing (RS256)
	JWTPrivKeyPath string        `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string        `env:"JWT_PUBLIC_KEY_PATH,required"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"24h"`

	// Confirmation mail hand-off
	MailerBackend string `env:"MAILER_BACKEND"  envDefault:"log"`
	MailerFrom    string `env:"MAILER_FROM"     envDefault:"noreply@yamdb.local"`
	AMQPURL       string `env:"AMQP_URL"`
	AMQPMailQueue string `env:"AMQP_MAIL_QUEUE" envDefault:"mail.confirmation"`

	// Brute-force protection for the code exchange
	ExchangeMaxAttempts   int           `env:"EXCHANGE_MAX_ATTEMPTS"   envDefault:"5"`
	ExchangeAttemptWindow time.Duration `env:"EXCHANGE_ATTEMPT_WINDOW" envDefault:"15m"`

	// Cross-Origin Resource Sharing (comma separated)
	AllowedOrigins string `env:"ALLOWED_ORIGINS"`

	// Optional superuser created at startup
	BootstrapAdminUsername string `env:"BOOTSTRAP_ADMIN_USERNAME"`
	BootstrapAdminEmail    string `env:"BOOTSTRAP_ADMIN_EMAIL"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
//
// Outside production a .env file in the working directory is applied first;
// variables already present in the environment take precedence.
func Load() (*Config, error) {
	if os.Getenv("ENVIRONMENT") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: failed to read .env file: %w", err)
		}
	}

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	switch c.MailerBackend {
	case MailerLog:
	case MailerAMQP:
		if c.AMQPURL == "" {
			return errors.New("config: AMQP_URL is required when MAILER_BACKEND=amqp")
		}
	default:
		return fmt.Errorf("config: unknown MAILER_BACKEND %q", c.MailerBackend)
	}

	if c.ExchangeMaxAttempts < 1 {
		return errors.New("config: EXCHANGE_MAX_ATTEMPTS must be at least 1")
	}

	if (c.BootstrapAdminUsername == "") != (c.BootstrapAdminEmail == "") {
		return errors.New("config: BOOTSTRAP_ADMIN_USERNAME and BOOTSTRAP_ADMIN_EMAIL must be set together")
	}

	return nil
}

// Origins returns the configured CORS origins with blanks removed.
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
