package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load assembles the configuration in layers: built-in defaults, then a
// YAML file if one is found, then FIGARO_* environment overrides, then
// *_file secret resolution, then validation. Later layers win.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	if path := findConfigFile(configPath); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
		// Fields absent from the YAML keep their default values.
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return &cfg, nil
}

// findConfigFile resolves the config file location. An explicit path wins,
// then FIGARO_CONFIG, then ./config.yaml, then /etc/figaro/config.yaml.
// Returns "" when nothing is found, which is not an error.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if path := os.Getenv("FIGARO_CONFIG"); path != "" {
		return path
	}
	for _, path := range []string{"config.yaml", "/etc/figaro/config.yaml"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envString stores the named variable's value when it is set and non-empty.
func envString(name string, dst *string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

// envInt stores the named variable's value when it parses as an integer.
func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// envDuration stores the named variable's value when it parses as a
// time.Duration ("30s", "2m").
func envDuration(name string, dst *time.Duration) {
	if v := os.Getenv(name); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func applyEnvOverrides(cfg *Config) {
	envInt("FIGARO_PORT", &cfg.Server.Port)
	envString("FIGARO_PROVIDER", &cfg.Generator.Provider)
	envString("FIGARO_BASE_URL", &cfg.Generator.BaseURL)
	envString("FIGARO_MODEL", &cfg.Generator.Model)
	envString("FIGARO_SANDBOX_MODE", &cfg.Sandbox.Mode)
	envString("FIGARO_SANDBOX_URL", &cfg.Sandbox.Remote.URL)
	envDuration("FIGARO_SANDBOX_TIMEOUT", &cfg.Sandbox.Timeout)
	envString("FIGARO_SESSION_STORE", &cfg.Session.Type)
	envInt("FIGARO_SESSION_SIZE", &cfg.Session.MaxSize)
	envString("FIGARO_POSTGRES_DSN", &cfg.Session.Postgres.DSN)
	envString("FIGARO_AUTH_TYPE", &cfg.Auth.Type)

	// GROQ_API_KEY is honored as a fallback so a plain
	// `GROQ_API_KEY=... figaro` invocation works.
	envString("FIGARO_API_KEY", &cfg.Generator.APIKey)
	if cfg.Generator.APIKey == "" {
		envString("GROQ_API_KEY", &cfg.Generator.APIKey)
	}

	// FIGARO_API_KEYS carries a JSON array of inbound API key configs.
	if v := os.Getenv("FIGARO_API_KEYS"); v != "" {
		var keys []APIKeyConfig
		if err := json.Unmarshal([]byte(v), &keys); err == nil && len(keys) > 0 {
			cfg.Auth.APIKeys = keys
		}
	}
}

// resolveFileReferences fills value fields from their *_file companions.
// A file reference is only consulted when the value itself is unset, so
// direct values always win over mounted secrets.
func resolveFileReferences(cfg *Config) error {
	if cfg.Generator.APIKeyFile != "" && cfg.Generator.APIKey == "" {
		val, err := readSecretFile(cfg.Generator.APIKeyFile)
		if err != nil {
			return fmt.Errorf("generator.api_key_file: %w", err)
		}
		cfg.Generator.APIKey = val
	}

	if cfg.Session.Postgres.DSNFile != "" && cfg.Session.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Session.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("session.postgres.dsn_file: %w", err)
		}
		cfg.Session.Postgres.DSN = val
	}

	for i := range cfg.Auth.APIKeys {
		if cfg.Auth.APIKeys[i].KeyFile != "" && cfg.Auth.APIKeys[i].Key == "" {
			val, err := readSecretFile(cfg.Auth.APIKeys[i].KeyFile)
			if err != nil {
				return fmt.Errorf("auth.api_keys[%d].key_file: %w", i, err)
			}
			cfg.Auth.APIKeys[i].Key = val
		}
	}
	return nil
}

// readSecretFile reads a mounted secret, trimming the trailing newline
// that most secret mounts append.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
