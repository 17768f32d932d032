package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "10s", cfg.Selection.FetchTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadConfig_FileThenEnvOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9000"
jwt:
  secret: from-file
selection:
  fetch_timeout: 3s
`)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("SERVER_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, "3s", cfg.Selection.FetchTimeout)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := LoadConfig(writeConfig(t, "server:\n  port: \"1\"\n"))
	assert.ErrorContains(t, err, "JWT secret is required")
}

func TestLoadConfig_RejectsBadFetchTimeout(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SELECTION_FETCH_TIMEOUT", "soon")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "selection fetch timeout")
}

func TestLoadConfig_BadEnvInteger(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("REDIS_DB", "zero")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "REDIS_DB")
}

func TestPublicBaseURL(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL())

	cfg.Server.BaseURL = "https://portal.example/"
	assert.Equal(t, "https://portal.example", cfg.PublicBaseURL())
}
