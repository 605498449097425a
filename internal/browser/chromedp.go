package browser

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go-easyhunt/internal/config"

	"github.com/chromedp/chromedp"
)

// ChromedpSession drives Chrome over the DevTools protocol without the
// playwright driver.
type ChromedpSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    config.Browser
}

func NewChromedp(parent context.Context, cfg config.Browser) (*ChromedpSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.WindowSize(cfg.WindowWidth, cfg.WindowHeight),
	)
	if cfg.Container {
		opts = append(opts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.Flag("disable-gpu", true),
		)
	}
	if cfg.BinaryPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.BinaryPath))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	for _, arg := range cfg.ExtraArgs {
		name, value := splitFlag(arg)
		opts = append(opts, chromedp.Flag(name, value))
	}
	if cfg.CookiesFile != "" {
		log.Printf("ℹ️ cookies_file is only applied by the playwright engine")
	}

	// the browser lives as long as the parent context, not a per-call timeout
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(parent), opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	cancel := func() {
		cancelBrowser()
		cancelAlloc()
	}

	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("could not start chrome: %w", err)
	}
	return &ChromedpSession{ctx: browserCtx, cancel: cancel, cfg: cfg}, nil
}

// run executes actions on the browser tab, bounded by ctx and timeout.
func (s *ChromedpSession) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (s *ChromedpSession) navTimeout() time.Duration {
	return s.cfg.NavigationTimeout
}

func (s *ChromedpSession) Open(ctx context.Context, url string) error {
	return s.run(ctx, s.navTimeout(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (s *ChromedpSession) WaitFor(ctx context.Context, selector string, timeout float64) error {
	return s.run(ctx, time.Duration(timeout)*time.Millisecond,
		chromedp.WaitReady(selector, chromedp.ByQuery),
	)
}

func (s *ChromedpSession) ScrollToBottom(ctx context.Context) (int, error) {
	var height int
	err := s.run(ctx, s.navTimeout(),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight); document.body.scrollHeight`, &height),
	)
	return height, err
}

func (s *ChromedpSession) ClickIfVisible(ctx context.Context, selector string) (bool, error) {
	var visible bool
	probe := fmt.Sprintf(`(() => { const el = document.querySelector(%q); return !!el && el.offsetParent !== null; })()`, selector)
	if err := s.run(ctx, s.navTimeout(), chromedp.Evaluate(probe, &visible)); err != nil {
		return false, err
	}
	if !visible {
		return false, nil
	}
	if err := s.run(ctx, s.navTimeout(), chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *ChromedpSession) HTML(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, s.navTimeout(), chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (s *ChromedpSession) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := s.run(ctx, s.navTimeout(), chromedp.FullScreenshot(&buf, 90)); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0644)
}

func (s *ChromedpSession) Close() error {
	s.cancel()
	return nil
}

// splitFlag turns "--proxy-server=host:1" into ("proxy-server", "host:1") and
// "--mute-audio" into ("mute-audio", true).
func splitFlag(arg string) (string, interface{}) {
	for len(arg) > 0 && arg[0] == '-' {
		arg = arg[1:]
	}
	for i := 0; i < len(arg); i++ {
		if arg[i] == '=' {
			return arg[:i], arg[i+1:]
		}
	}
	return arg, true
}
