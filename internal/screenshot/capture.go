// File: internal/screenshot/capture.go
// Package screenshot captures full-page images with a locally driven headless
// Chrome. It is the only place the bridge touches a browser directly; the
// automation service drives its own.
package screenshot

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/nova-bridge/api/schemas"
	"github.com/xkilldash9x/nova-bridge/internal/config"
)

// Chrome implements schemas.Capturer with chromedp. Each Capture call spawns
// its own allocator and tab and tears both down before returning, so a failed
// capture never leaks a browser process.
type Chrome struct {
	cfg      config.BrowserConfig
	headless bool
	logger   *zap.Logger
}

var _ schemas.Capturer = (*Chrome)(nil)

// NewChrome builds a capturer. headless comes from the request, the rest from
// configuration.
func NewChrome(cfg config.BrowserConfig, headless bool, logger *zap.Logger) *Chrome {
	return &Chrome{
		cfg:      cfg,
		headless: headless,
		logger:   logger.Named("screenshot"),
	}
}

// Capture navigates to the URL, waits for the page to settle, and returns a
// full-page PNG plus the page title and final URL.
func (c *Chrome) Capture(ctx context.Context, url string) (*schemas.Capture, error) {
	timeout := c.cfg.NavigationTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, c.allocatorOptions()...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	quiet := c.cfg.QuietPeriod
	if quiet <= 0 {
		quiet = 1500 * time.Millisecond
	}

	var (
		buf      []byte
		title    string
		finalURL string
	)
	err := chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(c.viewportWidth()), int64(c.viewportHeight())),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// Quiet-period wait approximates network idle after load.
		chromedp.Sleep(quiet),
		chromedp.Title(&title),
		chromedp.Location(&finalURL),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, err = page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				WithCaptureBeyondViewport(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("screenshot capture of %q failed: %w", url, err)
	}

	c.logger.Debug("Screenshot captured",
		zap.String("url", url),
		zap.String("final_url", finalURL),
		zap.Int("bytes", len(buf)),
	)
	return &schemas.Capture{PNG: buf, Title: title, FinalURL: finalURL}, nil
}

func (c *Chrome) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts, chromedp.Flag("headless", c.headless))
	if c.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(c.cfg.ExecPath))
	}
	if c.cfg.IgnoreTLSErrors {
		opts = append(opts, chromedp.Flag("ignore-certificate-errors", true))
	}
	return opts
}

func (c *Chrome) viewportWidth() int {
	if c.cfg.ViewportWidth > 0 {
		return c.cfg.ViewportWidth
	}
	return 1366
}

func (c *Chrome) viewportHeight() int {
	if c.cfg.ViewportHeight > 0 {
		return c.cfg.ViewportHeight
	}
	return 900
}
