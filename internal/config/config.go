// Package config sources runtime configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envDevelopment = "development"
	envProduction  = "production"
)

// Config holds runtime configuration for the access service.
type Config struct {
	Environment string
	Port        string
	GRPCPort    string
	DatabaseURL string

	SessionSecret   string
	SessionIssuer   string
	SessionLifetime time.Duration

	BootstrapAdminUsername string
	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

// Load reads configuration from the environment and performs minimal
// validation. The session secret is mandatory; the bootstrap admin password
// is mandatory unless some other provisioning path exists.
func Load() (Config, error) {
	cfg := Config{
		Environment: fallback(os.Getenv("SENTRA_ENV"), envProduction),
		Port:        fallback(os.Getenv("SENTRA_PORT"), "8080"),
		GRPCPort:    strings.TrimSpace(os.Getenv("SENTRA_GRPC_PORT")),
		DatabaseURL: strings.TrimSpace(os.Getenv("SENTRA_PG_DSN")),

		SessionSecret: strings.TrimSpace(os.Getenv("SENTRA_SESSION_SECRET")),
		SessionIssuer: fallback(os.Getenv("SENTRA_SESSION_ISSUER"), "sentra-access"),

		BootstrapAdminUsername: fallback(os.Getenv("SENTRA_BOOTSTRAP_USERNAME"), "admin"),
		BootstrapAdminEmail:    fallback(os.Getenv("SENTRA_BOOTSTRAP_EMAIL"), "admin@sentra.local"),
		BootstrapAdminPassword: strings.TrimSpace(os.Getenv("SENTRA_BOOTSTRAP_PASSWORD")),
	}

	hours := fallback(os.Getenv("SENTRA_SESSION_HOURS"), "8")
	if parsed, err := strconv.Atoi(hours); err == nil && parsed > 0 {
		cfg.SessionLifetime = time.Duration(parsed) * time.Hour
	} else {
		return Config{}, fmt.Errorf("SENTRA_SESSION_HOURS must be a positive integer, got %q", hours)
	}

	if cfg.Environment != envDevelopment && cfg.Environment != envProduction {
		return Config{}, fmt.Errorf("SENTRA_ENV must be %q or %q, got %q", envDevelopment, envProduction, cfg.Environment)
	}
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SENTRA_SESSION_SECRET is required")
	}

	return cfg, nil
}

// IsDevelopment reports whether the insecure development mode is active.
func (c Config) IsDevelopment() bool {
	return c.Environment == envDevelopment
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// GRPCAddress returns the bind address for the gRPC listener, empty when
// gRPC is disabled.
func (c Config) GRPCAddress() string {
	if c.GRPCPort == "" {
		return ""
	}
	return fmt.Sprintf(":%s", c.GRPCPort)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}
