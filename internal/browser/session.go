package browser

import (
	"context"
	"fmt"
	"time"

	"go-easyhunt/internal/config"
)

// Session is one live browser tab. Implementations bound every call by the
// context deadline and the timeout passed in.
type Session interface {
	// Open navigates to url and waits for the DOM to be ready.
	Open(ctx context.Context, url string) error
	// WaitFor blocks until selector matches an element or timeout elapses.
	WaitFor(ctx context.Context, selector string, timeoutMs float64) error
	// ScrollToBottom scrolls the window and returns the new document height.
	ScrollToBottom(ctx context.Context) (int, error)
	// ClickIfVisible clicks the first visible match and reports whether it did.
	ClickIfVisible(ctx context.Context, selector string) (bool, error)
	// HTML returns the current page markup.
	HTML(ctx context.Context) (string, error)
	// Screenshot writes a full-page PNG to path.
	Screenshot(ctx context.Context, path string) error
	Close() error
}

// Launch starts the engine named in cfg and returns a ready session.
func Launch(ctx context.Context, cfg config.Browser) (Session, error) {
	switch cfg.Engine {
	case config.EngineChromedp:
		s, err := NewChromedp(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.EnginePlaywright, "":
		pm, err := NewPlaywright(cfg)
		if err != nil {
			return nil, err
		}
		return pm, nil
	default:
		return nil, fmt.Errorf("unknown browser engine %q", cfg.Engine)
	}
}

// launchArgs mirrors the flags the hosted deployment needs: chromium inside a
// container has no usable sandbox or /dev/shm.
func launchArgs(cfg config.Browser) []string {
	var args []string
	if cfg.Container {
		args = append(args,
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-gpu",
		)
	}
	if cfg.WindowWidth > 0 && cfg.WindowHeight > 0 {
		args = append(args, fmt.Sprintf("--window-size=%d,%d", cfg.WindowWidth, cfg.WindowHeight))
	}
	return append(args, cfg.ExtraArgs...)
}

func timeoutMs(cfg config.Browser) float64 {
	return float64(cfg.NavigationTimeout.Milliseconds())
}

// boundedMs shrinks timeout so it never outlives the context deadline.
func boundedMs(ctx context.Context, timeout float64) float64 {
	deadline, ok := ctx.Deadline()
	if !ok {
		return timeout
	}
	left := float64(time.Until(deadline).Milliseconds())
	if left < 1 {
		left = 1
	}
	if timeout <= 0 || left < timeout {
		return left
	}
	return timeout
}
