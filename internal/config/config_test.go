package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Loader{File: filepath.Join(t.TempDir(), "missing.yaml")}.Load()
	require.NoError(t, err)

	assert.Equal(t, 8082, cfg.Server.Port)
	assert.Equal(t, ":8082", cfg.Addr())
	assert.Equal(t, 5*time.Second, cfg.Server.Timeout.ReadHeader)
	assert.Equal(t, 10*time.Second, cfg.Server.Timeout.Shutdown)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 0, cfg.RateLimit.Create.Limit)
	assert.Equal(t, time.Minute, cfg.RateLimit.Create.Window)
}

func TestLoad_Precedence(t *testing.T) {
	yamlFile := writeFile(t, "config.yaml", `
server:
  port: 9000
  timeout:
    shutdown: 3s
log:
  level: debug
ratelimit:
  create:
    limit: 5
`)
	envFile := writeFile(t, ".env", "CATALOG_SERVER_PORT=9100\nCATALOG_METRICS_TOKEN=from-dotenv\nOTHER_THING=ignored\n")

	t.Setenv("CATALOG_SERVER_PORT", "9200")
	t.Setenv("CATALOG_METRICS_ENABLED", "false")
	t.Setenv("CATALOG_RATELIMIT_CREATE_WINDOW", "30s")

	cfg, err := Loader{File: yamlFile, EnvFile: envFile}.Load()
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Server.Port, "process env wins")
	assert.Equal(t, 3*time.Second, cfg.Server.Timeout.Shutdown, "yaml overrides default")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "from-dotenv", cfg.Metrics.Token)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 5, cfg.RateLimit.Create.Limit)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Create.Window)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CATALOG_SERVER_PORT", "70000")

	_, err := Loader{}.Load()
	assert.ErrorContains(t, err, "invalid server port")
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "server: [")

	_, err := Loader{File: path}.Load()
	assert.Error(t, err)
}

func TestConfig_StringMasksToken(t *testing.T) {
	var cfg Config
	cfg.Metrics.Token = "secret"

	assert.NotContains(t, cfg.String(), "secret")
	assert.Contains(t, cfg.String(), "metrics.token=****")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.timeout.readheader", envKey("CATALOG_SERVER_TIMEOUT_READHEADER"))
	assert.Equal(t, "", envKey("PATH"))
	assert.Equal(t, "", envKey(ConfigFileEnv))
}
