package linkedin

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go-easyhunt/internal/browser"
	"go-easyhunt/internal/config"
	"go-easyhunt/internal/models"
	"go-easyhunt/internal/scraper"

	"golang.org/x/time/rate"
)

// LinkedInScraper fetches guest search result pages through one browser
// session. It is not safe for concurrent use; the session is a single tab.
type LinkedInScraper struct {
	session  browser.Session
	cfg      config.Search
	limiter  *rate.Limiter
	debugger *browser.ScreenshotDebugger
}

var _ scraper.Fetcher = (*LinkedInScraper)(nil)

func NewLinkedInScraper(session browser.Session, cfg config.Search, debugger *browser.ScreenshotDebugger) *LinkedInScraper {
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	return &LinkedInScraper{
		session:  session,
		cfg:      cfg,
		limiter:  rate.NewLimiter(limit, 1),
		debugger: debugger,
	}
}

// Fetch loads the results for one location and returns its job cards.
// Any failure to load the page is returned as a *scraper.NavigationError.
func (s *LinkedInScraper) Fetch(ctx context.Context, q models.Query, location string) ([]string, error) {
	searchURL, err := SearchURL(s.cfg.BaseURL, q, location)
	if err != nil {
		return nil, &scraper.NavigationError{Location: location, Cause: err}
	}
	fail := func(err error) error {
		return &scraper.NavigationError{Location: location, URL: searchURL, Cause: err}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fail(err)
	}

	log.Printf("  🔍 Searching: %q in %s", q.Role, location)
	if err := s.session.Open(ctx, searchURL); err != nil {
		s.capture(ctx, location, "navigation failed")
		return nil, fail(err)
	}

	if err := s.session.WaitFor(ctx, ReadySelector, float64(s.cfg.CardWait.Milliseconds())); err != nil {
		if html, herr := s.session.HTML(ctx); herr == nil && IsEmptyResults(html) {
			log.Printf("    ⚠️ No listings found in %s", location)
			return nil, nil
		}
		s.capture(ctx, location, "job list did not load")
		return nil, fail(fmt.Errorf("job list did not load: %w", err))
	}

	s.loadAll(ctx)

	html, err := s.session.HTML(ctx)
	if err != nil {
		return nil, fail(err)
	}
	cards, err := SplitCards(html)
	if err != nil {
		return nil, fail(err)
	}
	if s.cfg.MaxCards > 0 && len(cards) > s.cfg.MaxCards {
		cards = cards[:s.cfg.MaxCards]
	}
	log.Printf("    📦 Found %d job cards in %s", len(cards), location)
	return cards, nil
}

// loadAll scrolls until the page stops growing or MaxScrolls is reached,
// pressing "See more jobs" when the site shows it. Errors here only end the
// loop; whatever is loaded so far is still used.
func (s *LinkedInScraper) loadAll(ctx context.Context) {
	last := -1
	pause := s.cfg.ScrollPause
	for i := 0; i < s.cfg.MaxScrolls; i++ {
		height, err := s.session.ScrollToBottom(ctx)
		if err != nil {
			log.Printf("    ⚠️ Scroll failed: %v", err)
			return
		}
		if err := browser.RandomDelay(ctx, pause, pause+pause/4); err != nil {
			return
		}
		clicked, err := s.session.ClickIfVisible(ctx, ShowMoreSelector)
		if err != nil {
			log.Printf("    ⚠️ Show-more click failed: %v", err)
		}
		if height == last && !clicked {
			return
		}
		last = height
	}
}

func (s *LinkedInScraper) capture(ctx context.Context, location, reason string) {
	if s.debugger == nil {
		return
	}
	// the failing context may already be done; give the screenshot its own budget
	shotCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	_, _ = s.debugger.CaptureAndLog(shotCtx, s.session, "linkedin-"+location, fmt.Sprintf("🚨 LinkedIn: %s for %s", reason, location))
}

// IsEmptyResults reports whether the page is the site's "no matching jobs"
// page rather than a failed load.
func IsEmptyResults(html string) bool {
	if strings.Contains(html, "jobs-search-no-results") {
		return true
	}
	lower := strings.ToLower(html)
	return strings.Contains(lower, "no matching jobs found") || strings.Contains(lower, "we couldn’t find a match") || strings.Contains(lower, "we couldn't find a match")
}
