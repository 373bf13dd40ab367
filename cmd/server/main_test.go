package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/watchdeck/watchdeck/internal/server"
)

// resetViper isolates tests from each other; viper state is process-global.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadConfigDefaults(t *testing.T) {
	resetViper(t)
	t.Setenv("WATCHDECK_DATA_DIR", t.TempDir())

	require.NoError(t, loadConfig(rootCmd))
	cfg, err := buildConfig()
	require.NoError(t, err)

	assert.Equal(t, server.DefaultAddr, cfg.HTTP.Addr)
	assert.Empty(t, cfg.HTTP.Domain)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, filepath.Join(cfg.DataDir, ".watchdeck", "journal.db"), cfg.Journal.Path)
	assert.Equal(t, server.DefaultRateLimit, cfg.RateLimit)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigEnv(t *testing.T) {
	resetViper(t)

	dataDir := t.TempDir()
	t.Setenv("WATCHDECK_HTTP_ADDR", ":8080")
	t.Setenv("WATCHDECK_HTTP_DOMAIN", "deck.example.org")
	t.Setenv("WATCHDECK_DATA_DIR", dataDir)
	t.Setenv("WATCHDECK_JOURNAL_ENABLED", "false")
	t.Setenv("WATCHDECK_RATE_LIMIT", "10-M")
	t.Setenv("WATCHDECK_LOG_LEVEL", "debug")

	require.NoError(t, loadConfig(rootCmd))
	cfg, err := buildConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "deck.example.org", cfg.HTTP.Domain)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.False(t, cfg.Journal.Enabled)
	assert.Empty(t, cfg.Journal.Path)
	assert.Equal(t, "10-M", cfg.RateLimit)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigHonorsPlatformPort(t *testing.T) {
	resetViper(t)
	t.Setenv("WATCHDECK_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "9999")

	require.NoError(t, loadConfig(rootCmd))
	cfg, err := buildConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.HTTP.Addr)
}

func TestLoadConfigAddrWinsOverPort(t *testing.T) {
	resetViper(t)
	t.Setenv("WATCHDECK_DATA_DIR", t.TempDir())
	t.Setenv("WATCHDECK_HTTP_ADDR", ":8080")
	t.Setenv("PORT", "9999")

	require.NoError(t, loadConfig(rootCmd))
	cfg, err := buildConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoadConfigFile(t *testing.T) {
	resetViper(t)

	dataDir := t.TempDir()
	configYAML := `
http:
  addr: localhost:8443
  domain: deck.example.org
  cert_file: test-cert.pem
  key_file: test-key.pem

data_dir: ` + dataDir + `

journal:
  enabled: true
  path: ` + filepath.Join(dataDir, "custom.db") + `

rate_limit: 50-S
`
	configFile := filepath.Join(t.TempDir(), "watchdeckd.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(configYAML), 0o644))

	flag := rootCmd.Flags().Lookup("config")
	require.NoError(t, flag.Value.Set(configFile))
	flag.Changed = true
	t.Cleanup(func() {
		_ = flag.Value.Set("")
		flag.Changed = false
	})

	require.NoError(t, loadConfig(rootCmd))
	cfg, err := buildConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8443", cfg.HTTP.Addr)
	assert.Equal(t, "deck.example.org", cfg.HTTP.Domain)
	assert.Equal(t, "test-cert.pem", cfg.HTTP.CertFile)
	assert.Equal(t, "test-key.pem", cfg.HTTP.KeyFile)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.True(t, cfg.Journal.Enabled)
	assert.Equal(t, filepath.Join(dataDir, "custom.db"), cfg.Journal.Path)
	assert.Equal(t, "50-S", cfg.RateLimit)
}
