// Package config loads service settings from defaults, an optional YAML file
// and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PathEnv names the environment variable pointing at a YAML config file.
const PathEnv = "CALC_CONFIG"

type Config struct {
	Addr        string    `yaml:"addr"`
	ServiceName string    `yaml:"service_name"`
	LogLevel    string    `yaml:"log_level"`
	AI          AI        `yaml:"ai"`
	Session     Session   `yaml:"session"`
	Telemetry   Telemetry `yaml:"telemetry"`
}

// AI configures the natural-language solver. An empty APIKey disables it.
type AI struct {
	APIKey        string        `yaml:"api_key"`
	BaseURL       string        `yaml:"base_url"`
	Model         string        `yaml:"model"`
	Timeout       time.Duration `yaml:"timeout"`
	RatePerMinute int           `yaml:"rate_per_minute"`
}

// Enabled reports whether a solver can be built.
func (a AI) Enabled() bool {
	return a.APIKey != ""
}

type Session struct {
	IdleTTL time.Duration `yaml:"idle_ttl"`
}

type Telemetry struct {
	// OTLPEnabled pushes traces and metrics to the OTLP/HTTP endpoint named by
	// the standard OTEL_EXPORTER_OTLP_* variables.
	OTLPEnabled bool `yaml:"otlp_enabled"`
	// LogsEnabled additionally exports logs over OTLP.
	LogsEnabled bool `yaml:"logs_enabled"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:        ":8080",
		ServiceName: "calculator-api",
		LogLevel:    "info",
		AI: AI{
			Timeout:       30 * time.Second,
			RatePerMinute: 30,
		},
		Session: Session{
			IdleTTL: 30 * time.Minute,
		},
	}
}

// Load builds the configuration. path overrides CALC_CONFIG; a missing file
// named by CALC_CONFIG is an error, no file at all means defaults plus
// environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config file %s does not exist", path)
		}
		return fmt.Errorf("read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("ADDR", &cfg.Addr)
	str("OTEL_SERVICE_NAME", &cfg.ServiceName)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("AI_API_KEY", &cfg.AI.APIKey)
	str("AI_BASE_URL", &cfg.AI.BaseURL)
	str("AI_MODEL", &cfg.AI.Model)

	if err := envDuration(lookup, "AI_TIMEOUT", &cfg.AI.Timeout); err != nil {
		return err
	}
	if err := envDuration(lookup, "SESSION_IDLE_TTL", &cfg.Session.IdleTTL); err != nil {
		return err
	}
	if err := envInt(lookup, "AI_RATE_PER_MINUTE", &cfg.AI.RatePerMinute); err != nil {
		return err
	}
	if err := envBool(lookup, "OTEL_EXPORTER_ENABLED", &cfg.Telemetry.OTLPEnabled); err != nil {
		return err
	}
	if err := envBool(lookup, "OTEL_LOGS_ENABLED", &cfg.Telemetry.LogsEnabled); err != nil {
		return err
	}
	return nil
}

func envDuration(lookup lookupFunc, key string, dst *time.Duration) error {
	v, ok := lookup(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func envInt(lookup lookupFunc, key string, dst *int) error {
	v, ok := lookup(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envBool(lookup lookupFunc, key string, dst *bool) error {
	v, ok := lookup(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.AI.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("ai.timeout must be positive, got %s", c.AI.Timeout))
	}
	if c.AI.RatePerMinute < 0 {
		errs = append(errs, fmt.Errorf("ai.rate_per_minute must not be negative, got %d", c.AI.RatePerMinute))
	}
	if c.Session.IdleTTL <= 0 {
		errs = append(errs, fmt.Errorf("session.idle_ttl must be positive, got %s", c.Session.IdleTTL))
	}
	return errors.Join(errs...)
}
