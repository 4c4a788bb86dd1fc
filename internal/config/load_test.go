// internal/config/load_test.go
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))
	return cfgPath
}

func TestLoad_Valid(t *testing.T) {
	cfgPath := writeConfig(t, `
[server]
port = 8080

[sources]
flibusta_url = "http://flibusta.example/"
cache_ttl = "5m"
`)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://flibusta.example", cfg.Sources.FlibustaURL, "trailing slash trimmed")
	assert.Equal(t, 5*time.Minute, cfg.Sources.CacheTTL)
}

func TestLoad_MissingEnvVar(t *testing.T) {
	os.Unsetenv("PORTAL_MISSING_KEY")
	cfgPath := writeConfig(t, `
[torrent.qbittorrent]
url = "http://localhost:8080"
password = "${PORTAL_MISSING_KEY}"
`)

	_, err := Load(cfgPath)
	require.Error(t, err, "expected error for missing env var")
	assert.Contains(t, err.Error(), "PORTAL_MISSING_KEY")

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, cfgPath, cfgErr.Path)
	assert.Equal(t, []string{"torrent"}, cfgErr.Sections())
	assert.Equal(t, []string{"qbittorrent.password: $PORTAL_MISSING_KEY is not set"}, cfgErr.Section("torrent"))
}

func TestLoad_ValidationError(t *testing.T) {
	cfgPath := writeConfig(t, `
[server]
port = 99999
`)

	_, err := Load(cfgPath)
	require.Error(t, err, "expected error for invalid port")
	assert.True(t, strings.Contains(err.Error(), "server.port"), "expected server.port in error, got %v", err)
}

func TestLoad_ParseError(t *testing.T) {
	cfgPath := writeConfig(t, "[server\nport = ")

	_, err := Load(cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfgPath := writeConfig(t, "")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8585, cfg.Server.Port)
	assert.Equal(t, "http://flibusta.is", cfg.Sources.FlibustaURL)
	assert.Equal(t, 10*time.Minute, cfg.Sources.CacheTTL)
	assert.Equal(t, BackendQBittorrent, cfg.Torrent.Backend)
	require.NotNil(t, cfg.Torrent.QBittorrent)
	assert.Equal(t, 2*time.Hour, cfg.Torrent.Timeout)
	assert.Equal(t, 3*time.Minute, cfg.Torrent.StallTimeout)
	assert.Equal(t, 10*time.Second, cfg.Discovery.Tick)
	assert.Equal(t, 10*time.Minute, cfg.Discovery.DisabledSleep)
	assert.Equal(t, 3, cfg.Discovery.MaxAttempts)
	assert.Equal(t, []string{"books", "audiobooks", "movies"}, cfg.Discovery.Categories)
	assert.Equal(t, 6*time.Hour, cfg.Maintenance.TempMaxAge)
}

func TestLoadWithoutValidation(t *testing.T) {
	cfgPath := writeConfig(t, `
[server]
port = 99999
`)

	cfg, err := LoadWithoutValidation(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 99999, cfg.Server.Port)
}

func TestLoad_EnvVarDefault(t *testing.T) {
	os.Unsetenv("PORTAL_OPTIONAL_VAR")
	cfgPath := writeConfig(t, `
[server]
host = "${PORTAL_OPTIONAL_VAR:-localhost}"
`)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.Server.Host)
}

func TestLoad_DefaultConfigIsValid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, WriteDefault(cfgPath))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 8585, cfg.Server.Port)
	assert.Equal(t, 720*time.Hour, cfg.Maintenance.EventRetention)
}
