// File: internal/screenshot/capture_test.go
package screenshot

import (
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/xkilldash9x/nova-bridge/internal/config"
)

// The allocator options are opaque closures, so these tests assert on how many
// options each config knob contributes on top of the chromedp defaults.
func TestAllocatorOptions(t *testing.T) {
	base := len(chromedp.DefaultExecAllocatorOptions)

	t.Run("defaults plus the headless flag", func(t *testing.T) {
		c := NewChrome(config.BrowserConfig{}, true, zap.NewNop())
		assert.Len(t, c.allocatorOptions(), base+1)
	})

	t.Run("custom exec path adds one option", func(t *testing.T) {
		c := NewChrome(config.BrowserConfig{ExecPath: "/usr/bin/chromium"}, true, zap.NewNop())
		assert.Len(t, c.allocatorOptions(), base+2)
	})

	t.Run("ignore tls errors adds one option", func(t *testing.T) {
		c := NewChrome(config.BrowserConfig{IgnoreTLSErrors: true}, false, zap.NewNop())
		assert.Len(t, c.allocatorOptions(), base+2)
	})

	t.Run("all knobs together", func(t *testing.T) {
		c := NewChrome(config.BrowserConfig{
			ExecPath:        "/usr/bin/chromium",
			IgnoreTLSErrors: true,
		}, true, zap.NewNop())
		assert.Len(t, c.allocatorOptions(), base+3)
	})

	t.Run("options never mutate the shared defaults", func(t *testing.T) {
		c := NewChrome(config.BrowserConfig{ExecPath: "/usr/bin/chromium"}, true, zap.NewNop())
		_ = c.allocatorOptions()
		assert.Len(t, chromedp.DefaultExecAllocatorOptions, base)
	})
}

func TestViewportDefaults(t *testing.T) {
	c := NewChrome(config.BrowserConfig{}, true, zap.NewNop())
	assert.Equal(t, 1366, c.viewportWidth())
	assert.Equal(t, 900, c.viewportHeight())

	custom := NewChrome(config.BrowserConfig{ViewportWidth: 1920, ViewportHeight: 1080}, true, zap.NewNop())
	assert.Equal(t, 1920, custom.viewportWidth())
	assert.Equal(t, 1080, custom.viewportHeight())
}
