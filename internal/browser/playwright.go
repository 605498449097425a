package browser

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go-easyhunt/internal/config"

	"github.com/playwright-community/playwright-go"
)

type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	cfg     config.Browser
}

// NewPlaywright starts the driver, launches chromium and opens one page.
// Everything started so far is stopped again if a later step fails.
func NewPlaywright(cfg config.Browser) (pm *PlaywrightManager, err error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	pm = &PlaywrightManager{pw: pw, cfg: cfg}
	defer func() {
		if err != nil {
			_ = pm.Close()
		}
	}()

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
		Args:     launchArgs(cfg),
	}
	if cfg.BinaryPath != "" {
		opts.ExecutablePath = playwright.String(cfg.BinaryPath)
	}
	pm.browser, err = pw.Chromium.Launch(opts)
	if err != nil {
		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}

	var cookies []playwright.OptionalCookie
	if cfg.CookiesFile != "" {
		cookies, err = LoadCookies(cfg.CookiesFile)
		if err != nil {
			log.Printf("⚠️ Could not load cookies from %s: %v. Continuing.", cfg.CookiesFile, err)
		} else {
			log.Printf("🍪 Loaded %d cookies", len(cookies))
		}
	}

	pm.context, err = pm.NewContext(cookies)
	if err != nil {
		return nil, err
	}

	pm.page, err = pm.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	pm.page.SetDefaultTimeout(timeoutMs(cfg))
	return pm, nil
}

func (pm *PlaywrightManager) NewContext(cookies []playwright.OptionalCookie) (playwright.BrowserContext, error) {
	opts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: pm.cfg.WindowWidth, Height: pm.cfg.WindowHeight},
	}
	if pm.cfg.UserAgent != "" {
		opts.UserAgent = playwright.String(pm.cfg.UserAgent)
	}
	bctx, err := pm.browser.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}
	if len(cookies) > 0 {
		if err := bctx.AddCookies(cookies); err != nil {
			_ = bctx.Close()
			return nil, fmt.Errorf("could not add cookies: %w", err)
		}
	}
	return bctx, nil
}

// Page exposes the underlying page, mainly for tests that route requests.
func (pm *PlaywrightManager) Page() playwright.Page {
	return pm.page
}

func (pm *PlaywrightManager) Open(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := pm.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(boundedMs(ctx, timeoutMs(pm.cfg))),
	})
	return err
}

func (pm *PlaywrightManager) WaitFor(ctx context.Context, selector string, timeout float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return pm.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(boundedMs(ctx, timeout)),
	})
}

func (pm *PlaywrightManager) ScrollToBottom(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if _, err := pm.page.Evaluate("window.scrollTo(0, document.body.scrollHeight)"); err != nil {
		return 0, err
	}
	v, err := pm.page.Evaluate("document.body.scrollHeight")
	if err != nil {
		return 0, err
	}
	return toInt(v)
}

func (pm *PlaywrightManager) ClickIfVisible(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	btn := pm.page.Locator(selector).First()
	if visible, _ := btn.IsVisible(); !visible {
		return false, nil
	}
	if err := btn.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(boundedMs(ctx, timeoutMs(pm.cfg))),
	}); err != nil {
		return false, err
	}
	return true, nil
}

func (pm *PlaywrightManager) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return pm.page.Content()
}

func (pm *PlaywrightManager) Screenshot(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := pm.page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	return err
}

// Close releases context, browser and driver in that order. Errors are joined.
func (pm *PlaywrightManager) Close() error {
	var errs []error
	if pm.context != nil {
		errs = append(errs, pm.context.Close())
	}
	if pm.browser != nil {
		errs = append(errs, pm.browser.Close())
	}
	if pm.pw != nil {
		errs = append(errs, pm.pw.Stop())
	}
	return errors.Join(errs...)
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("unexpected scroll height %T", v)
	}
}
