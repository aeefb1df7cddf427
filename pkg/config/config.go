// Package config provides unified configuration for the figaro service.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (FIGARO_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the figaro service.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Generator     GeneratorConfig     `yaml:"generator"`
	Sandbox       SandboxConfig       `yaml:"sandbox"`
	Session       SessionConfig       `yaml:"session"`
	Auth          AuthConfig          `yaml:"auth"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8080
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 120s
	MaxBodySize  int64         `yaml:"max_body_size"` // default: 10 MB
}

// GeneratorConfig holds model backend settings.
type GeneratorConfig struct {
	Provider   string        `yaml:"provider"`     // "groq" or "openai_compat", default: "groq"
	BaseURL    string        `yaml:"base_url"`     // required for openai_compat
	APIKey     string        `yaml:"api_key"`
	APIKeyFile string        `yaml:"api_key_file"` // _file variant for api_key
	Model      string        `yaml:"model"`        // default: provider-specific
	Timeout    time.Duration `yaml:"timeout"`      // default: 120s
}

// SandboxConfig holds fragment execution settings.
type SandboxConfig struct {
	// Mode selects in-process execution ("local") or a remote sandbox
	// server ("remote"). Default: "local".
	Mode string `yaml:"mode"`

	// Timeout bounds a single local execution. Zero disables the
	// interrupt and a runaway fragment blocks forever. Default: 30s.
	Timeout time.Duration `yaml:"timeout"`

	// MaxCallStack limits VM call stack depth. Default: 500.
	MaxCallStack int `yaml:"max_call_stack"`

	Remote RemoteSandboxConfig `yaml:"remote"`
}

// RemoteSandboxConfig holds settings for remote execution mode.
type RemoteSandboxConfig struct {
	// URL is a static sandbox server address (development mode).
	// Mutually exclusive with Template.
	URL string `yaml:"url"`

	// Template is the SandboxTemplate name for SandboxClaim mode.
	Template string `yaml:"template"`

	// Namespace is the Kubernetes namespace for SandboxClaims.
	Namespace string `yaml:"namespace"`

	// ExecutionTimeout is the per-execution timeout in seconds (default: 60).
	ExecutionTimeout int `yaml:"execution_timeout"`

	// ClaimTimeout is how long to wait for a SandboxClaim to be bound,
	// in seconds (default: 30).
	ClaimTimeout int `yaml:"claim_timeout"`
}

// SessionConfig holds session state persistence settings.
type SessionConfig struct {
	Type     string         `yaml:"type"`     // "memory" or "postgres", default: "memory"
	MaxSize  int            `yaml:"max_size"` // for memory store, default: 10000
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	Type    string         `yaml:"type"`     // "none", "apikey", "jwt", default: "none"
	APIKeys []APIKeyConfig `yaml:"api_keys"` // API key entries for type=apikey
	JWT     JWTConfig      `yaml:"jwt"`      // settings for type=jwt
}

// APIKeyConfig describes a single API key entry.
type APIKeyConfig struct {
	Key     string `yaml:"key"`
	KeyFile string `yaml:"key_file"` // _file variant for key
	Subject string `yaml:"subject"`
}

// JWTConfig holds JWT validation settings.
type JWTConfig struct {
	JWKSURL  string `yaml:"jwks_url"` // endpoint serving the signing keys
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			MaxBodySize:  10 << 20,
		},
		Generator: GeneratorConfig{
			Provider: "groq",
			Timeout:  120 * time.Second,
		},
		Sandbox: SandboxConfig{
			Mode:         "local",
			Timeout:      30 * time.Second,
			MaxCallStack: 500,
			Remote: RemoteSandboxConfig{
				ExecutionTimeout: 60,
				ClaimTimeout:     30,
			},
		},
		Session: SessionConfig{
			Type:    "memory",
			MaxSize: 10000,
			Postgres: PostgresConfig{
				MaxConns: 25,
			},
		},
		Auth: AuthConfig{
			Type: "none",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
