// Package config loads and validates application configuration from
// environment variables, and loads pre-trained trust-propagation
// parameters and categorizer weights from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration for cathexisd.
type Config struct {
	// Server settings.
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// JWT settings.
	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiration     time.Duration

	// Label store settings.
	LabelStoreDriver string // "pgx" or "sqlite"
	LabelStoreDSN    string

	// MCP label provider endpoint (optional). cmd/cathexisd does not read
	// it: the server always uses the heuristic label provider.
	MCPEndpoint string

	// Trust vector index DSN (optional pgvector persistence of
	// per-agent trust embeddings; empty disables it). Must be a
	// Postgres DSN usable by pgxpool — not the sqlite label store DSN.
	TrustIndexDSN string

	// OTEL settings.
	OTELEndpoint string
	OTELInsecure bool
	ServiceName  string

	// Engine parameter/weights files.
	ParamsPath      string // YAML file with trust-propagation Params.
	CategorizerPath string // YAML file with MLP weights.

	LogLevel string
}

// Load reads configuration from environment variables with sensible
// defaults. Only malformed values are rejected; missing variables use
// defaults.
func Load() (Config, error) {
	var errs []error
	cfg := Config{
		JWTPrivateKeyPath: envStr("CATHEXIS_JWT_PRIVATE_KEY", ""),
		JWTPublicKeyPath:  envStr("CATHEXIS_JWT_PUBLIC_KEY", ""),
		LabelStoreDriver:  envStr("CATHEXIS_LABEL_STORE_DRIVER", "sqlite"),
		LabelStoreDSN:     envStr("CATHEXIS_LABEL_STORE_DSN", "file:cathexis_labels.db"),
		MCPEndpoint:       envStr("CATHEXIS_MCP_ENDPOINT", ""),
		TrustIndexDSN:     envStr("CATHEXIS_TRUST_INDEX_DSN", ""),
		OTELEndpoint:      envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:       envStr("OTEL_SERVICE_NAME", "cathexisd"),
		ParamsPath:        envStr("CATHEXIS_PARAMS_PATH", ""),
		CategorizerPath:   envStr("CATHEXIS_CATEGORIZER_PATH", ""),
		LogLevel:          envStr("CATHEXIS_LOG_LEVEL", "info"),
	}

	cfg.Port, errs = collectInt(errs, "CATHEXIS_PORT", 8080)
	cfg.OTELInsecure, errs = collectBool(errs, "OTEL_EXPORTER_OTLP_INSECURE", false)
	cfg.ReadTimeout, errs = collectDuration(errs, "CATHEXIS_READ_TIMEOUT", 30*time.Second)
	cfg.WriteTimeout, errs = collectDuration(errs, "CATHEXIS_WRITE_TIMEOUT", 30*time.Second)
	cfg.JWTExpiration, errs = collectDuration(errs, "CATHEXIS_JWT_EXPIRATION", 24*time.Hour)

	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return Config{}, fmt.Errorf("config: invalid environment variables:\n  %s", strings.Join(msgs, "\n  "))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present and sane.
func (c Config) Validate() error {
	var errs []error

	if c.LabelStoreDriver != "pgx" && c.LabelStoreDriver != "sqlite" {
		errs = append(errs, fmt.Errorf("config: CATHEXIS_LABEL_STORE_DRIVER must be %q or %q, got %q", "pgx", "sqlite", c.LabelStoreDriver))
	}
	if c.LabelStoreDSN == "" {
		errs = append(errs, errors.New("config: CATHEXIS_LABEL_STORE_DSN is required"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, errors.New("config: CATHEXIS_PORT must be between 1 and 65535"))
	}
	if c.ReadTimeout <= 0 {
		errs = append(errs, errors.New("config: CATHEXIS_READ_TIMEOUT must be positive"))
	}
	if c.WriteTimeout <= 0 {
		errs = append(errs, errors.New("config: CATHEXIS_WRITE_TIMEOUT must be positive"))
	}
	if c.JWTPrivateKeyPath != "" {
		if err := validateKeyFile(c.JWTPrivateKeyPath, "CATHEXIS_JWT_PRIVATE_KEY"); err != nil {
			errs = append(errs, err)
		}
	}
	if c.JWTPublicKeyPath != "" {
		if err := validateKeyFile(c.JWTPublicKeyPath, "CATHEXIS_JWT_PUBLIC_KEY"); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func validateKeyFile(path, envVar string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("config: %s %q: %w", envVar, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config: %s %q is a directory, expected a file", envVar, path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("config: %s %q is empty", envVar, path)
	}
	return nil
}

func collectInt(errs []error, key string, fallback int) (int, []error) {
	v, err := envInt(key, fallback)
	if err != nil {
		errs = append(errs, err)
	}
	return v, errs
}

func collectBool(errs []error, key string, fallback bool) (bool, []error) {
	v, err := envBool(key, fallback)
	if err != nil {
		errs = append(errs, err)
	}
	return v, errs
}

func collectDuration(errs []error, key string, fallback time.Duration) (time.Duration, []error) {
	v, err := envDuration(key, fallback)
	if err != nil {
		errs = append(errs, err)
	}
	return v, errs
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s=%q is not a valid boolean", key, v)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid duration", key, v)
	}
	return d, nil
}
