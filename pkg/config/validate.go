package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// generator.provider must be a known value.
	switch c.Generator.Provider {
	case "groq", "openai_compat":
		// valid
	default:
		errs = append(errs, fmt.Errorf("generator.provider must be \"groq\" or \"openai_compat\", got %q", c.Generator.Provider))
	}

	// openai_compat needs an explicit backend URL; groq has a built-in one.
	if c.Generator.Provider == "openai_compat" && c.Generator.BaseURL == "" {
		errs = append(errs, fmt.Errorf("generator.base_url is required when generator.provider is \"openai_compat\""))
	}

	// sandbox.mode must be a known value.
	switch c.Sandbox.Mode {
	case "local", "remote":
		// valid
	default:
		errs = append(errs, fmt.Errorf("sandbox.mode must be \"local\" or \"remote\", got %q", c.Sandbox.Mode))
	}

	// Remote mode needs either a static URL or a claim template, not both.
	if c.Sandbox.Mode == "remote" {
		if c.Sandbox.Remote.URL == "" && c.Sandbox.Remote.Template == "" {
			errs = append(errs, fmt.Errorf("sandbox.remote.url or sandbox.remote.template is required when sandbox.mode is \"remote\""))
		}
		if c.Sandbox.Remote.URL != "" && c.Sandbox.Remote.Template != "" {
			errs = append(errs, fmt.Errorf("sandbox.remote.url and sandbox.remote.template are mutually exclusive"))
		}
	}

	// session.type must be a known value.
	switch c.Session.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("session.type must be \"memory\" or \"postgres\", got %q", c.Session.Type))
	}

	// If session.type is "postgres", DSN or DSNFile must be set.
	if c.Session.Type == "postgres" {
		if c.Session.Postgres.DSN == "" && c.Session.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("session.postgres.dsn or session.postgres.dsn_file is required when session.type is \"postgres\""))
		}
	}

	// auth.type must be a known value.
	switch c.Auth.Type {
	case "none", "apikey", "jwt":
		// valid
	default:
		errs = append(errs, fmt.Errorf("auth.type must be \"none\", \"apikey\", or \"jwt\", got %q", c.Auth.Type))
	}

	// JWT auth needs a key discovery endpoint.
	if c.Auth.Type == "jwt" && c.Auth.JWT.JWKSURL == "" {
		errs = append(errs, fmt.Errorf("auth.jwt.jwks_url is required when auth.type is \"jwt\""))
	}

	return errors.Join(errs...)
}
