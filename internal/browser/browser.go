// Package browser owns the playwright lifecycle so the acquisition flows and
// the CLI share one launch path.
package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// Session is a running browser with one open page.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	Page    playwright.Page
}

// Launch installs the driver if needed, starts Chromium and opens a page.
// headless=false keeps the window visible for debugging.
func Launch(headless bool, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := playwright.Install(); err != nil {
		return nil, fmt.Errorf("install playwright driver: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	page, err := b.NewPage()
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("open page: %w", err)
	}

	logger.Debug("browser ready", zap.Bool("headless", headless))
	return &Session{pw: pw, browser: b, Page: page}, nil
}

// Close tears the browser and driver down. Safe to call once.
func (s *Session) Close() {
	if s.browser != nil {
		s.browser.Close()
	}
	if s.pw != nil {
		s.pw.Stop()
	}
}
