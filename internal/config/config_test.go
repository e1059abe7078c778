package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		PathEnv, "ADDR", "OTEL_SERVICE_NAME", "LOG_LEVEL", "AI_API_KEY", "AI_BASE_URL", "AI_MODEL",
		"AI_TIMEOUT", "AI_RATE_PER_MINUTE", "SESSION_IDLE_TTL", "OTEL_EXPORTER_ENABLED", "OTEL_LOGS_ENABLED",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.False(t, cfg.AI.Enabled())
}

func TestLoadFileThenEnvPrecedence(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
addr: ":9090"
service_name: calc-from-file
ai:
  api_key: file-key
  model: file-model
  timeout: 10s
  rate_per_minute: 5
session:
  idle_ttl: 5m
telemetry:
  otlp_enabled: true
`)

	t.Setenv("AI_MODEL", "env-model")
	t.Setenv("SESSION_IDLE_TTL", "90s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "calc-from-file", cfg.ServiceName)
	assert.Equal(t, "file-key", cfg.AI.APIKey)
	assert.Equal(t, "env-model", cfg.AI.Model)
	assert.Equal(t, 10*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 5, cfg.AI.RatePerMinute)
	assert.Equal(t, 90*time.Second, cfg.Session.IdleTTL)
	assert.True(t, cfg.Telemetry.OTLPEnabled)
	assert.False(t, cfg.Telemetry.LogsEnabled)
	assert.True(t, cfg.AI.Enabled())
}

func TestLoadUsesPathFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(PathEnv, writeFile(t, "addr: \":7070\"\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "bad duration", env: map[string]string{"AI_TIMEOUT": "soon"}},
		{name: "bad int", env: map[string]string{"AI_RATE_PER_MINUTE": "many"}},
		{name: "bad bool", env: map[string]string{"OTEL_LOGS_ENABLED": "perhaps"}},
		{name: "negative rate", env: map[string]string{"AI_RATE_PER_MINUTE": "-1"}},
		{name: "zero ttl", env: map[string]string{"SESSION_IDLE_TTL": "0s"}},
		{name: "malformed yaml", file: "ai: [unclosed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			path := ""
			if tc.file != "" {
				path = writeFile(t, tc.file)
			}

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}
