// File: internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Defaults Tests --

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "nova-bridge", cfg.Logger.ServiceName)
	assert.Equal(t, 10, cfg.Logger.MaxSize)

	assert.Equal(t, 60*time.Second, cfg.Browser.NavigationTimeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Browser.QuietPeriod)
	assert.Equal(t, 1366, cfg.Browser.ViewportWidth)
	assert.Equal(t, 900, cfg.Browser.ViewportHeight)

	assert.Equal(t, "https://api.nova-act.dev/v1", cfg.Nova.Endpoint)
	assert.Equal(t, 120*time.Second, cfg.Nova.RequestTimeout)

	assert.Zero(t, cfg.Runner.CommandsPerSecond, "command pacing is off by default")
}

// -- Load Tests --

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
logger:
  level: debug
  format: json
browser:
  navigation_timeout: 90s
  viewport_width: 1920
nova:
  endpoint: http://localhost:9901
runner:
  commands_per_second: 2.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, 90*time.Second, cfg.Browser.NavigationTimeout)
	assert.Equal(t, 1920, cfg.Browser.ViewportWidth)
	assert.Equal(t, "http://localhost:9901", cfg.Nova.Endpoint)
	assert.Equal(t, 2.5, cfg.Runner.CommandsPerSecond)

	// Keys the file does not mention keep their defaults.
	assert.Equal(t, "nova-bridge", cfg.Logger.ServiceName)
	assert.Equal(t, 900, cfg.Browser.ViewportHeight)
}

func TestLoadMissingDefaultFileIsFine(t *testing.T) {
	// No config.yaml in the package directory; defaults apply.
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logger: [unclosed"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("NOVA_NOVA_ENDPOINT", "http://localhost:9902")
	t.Setenv("NOVA_LOGGER_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9902", cfg.Nova.Endpoint)
	assert.Equal(t, "warn", cfg.Logger.Level)
}
