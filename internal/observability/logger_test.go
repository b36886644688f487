// File: internal/observability/logger_test.go
package observability

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/nova-bridge/internal/config"
)

func TestInitialize(t *testing.T) {
	t.Run("console logger writes to the given sink", func(t *testing.T) {
		ResetForTest()
		buf := &zaptest.Buffer{}

		Initialize(config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "TestService",
		}, buf)

		GetLogger().Info("This is a test message.")

		output := buf.String()
		assert.Contains(t, output, "INFO", "output should contain the log level")
		assert.Contains(t, output, "This is a test message.")
		assert.Contains(t, output, "TestService", "output should carry the service name")
	})

	t.Run("json logger emits structured entries", func(t *testing.T) {
		ResetForTest()
		buf := &zaptest.Buffer{}

		Initialize(config.LoggerConfig{
			Level:       "info",
			Format:      "json",
			ServiceName: "JSONTest",
		}, buf)

		GetLogger().Warn("This is a JSON message.", zap.String("key", "value"))

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output should be valid JSON")
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "JSONTest", entry["logger"])
		assert.Equal(t, "This is a JSON message.", entry["msg"])
		assert.Equal(t, "value", entry["key"])
	})

	t.Run("writes to a log file when configured", func(t *testing.T) {
		ResetForTest()
		logFile := filepath.Join(t.TempDir(), "bridge.log")

		Initialize(config.LoggerConfig{
			Level:   "debug",
			Format:  "json",
			LogFile: logFile,
			MaxSize: 1,
		}, &zaptest.Buffer{})

		GetLogger().Error("This should go to the file.")
		Sync()

		content, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(content), "This should go to the file.")
	})

	t.Run("invalid level falls back to info", func(t *testing.T) {
		ResetForTest()
		buf := &zaptest.Buffer{}

		Initialize(config.LoggerConfig{Level: "shouting", Format: "json"}, buf)

		GetLogger().Debug("hidden")
		GetLogger().Info("visible")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "visible")
	})

	t.Run("initializes exactly once", func(t *testing.T) {
		ResetForTest()
		buf := &zaptest.Buffer{}

		Initialize(config.LoggerConfig{Level: "info", ServiceName: "First", Format: "json"}, buf)
		first := GetLogger()

		Initialize(config.LoggerConfig{Level: "debug", ServiceName: "Second", Format: "json"}, &zaptest.Buffer{})
		second := GetLogger()

		assert.Same(t, first, second)
		second.Info("test")
		assert.Contains(t, buf.String(), "First")
		assert.NotContains(t, buf.String(), "Second")
	})
}

func TestGetLogger(t *testing.T) {
	t.Run("returns a fallback before initialization", func(t *testing.T) {
		ResetForTest()
		logger := GetLogger()
		require.NotNil(t, logger)
	})

	t.Run("returns the stored instance after initialization", func(t *testing.T) {
		ResetForTest()
		Initialize(config.LoggerConfig{Level: "info", Format: "json"}, &zaptest.Buffer{})
		assert.Same(t, globalLogger.Load(), GetLogger())
	})
}

func TestSyncWithoutLogger(t *testing.T) {
	ResetForTest()
	// Must be a no-op rather than a panic.
	Sync()
}
