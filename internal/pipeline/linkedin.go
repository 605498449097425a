package pipeline

import (
	"context"
	"fmt"
	"log"

	"go-easyhunt/internal/browser"
	"go-easyhunt/internal/config"
	"go-easyhunt/internal/models"
	"go-easyhunt/internal/scraper"
	"go-easyhunt/internal/scraper/linkedin"
	"go-easyhunt/internal/snapshot"
)

// NewLinkedInSearcher wires the LinkedIn fetcher and extractor from cfg.
// With snapshot.dir set, fetches are recorded and fresh snapshots replayed;
// with snapshot.offline no browser is ever launched.
func NewLinkedInSearcher(cfg *config.Config) (*Searcher, error) {
	var store *snapshot.Store
	if cfg.Snapshot.Dir != "" {
		var err error
		store, err = snapshot.NewStore(cfg.Snapshot.Dir, cfg.Snapshot.TTL)
		if err != nil {
			return nil, err
		}
	}
	key := func(q models.Query, location string) (string, error) {
		return linkedin.SearchURL(cfg.Search.BaseURL, q, location)
	}

	open := func(ctx context.Context) (scraper.Fetcher, func() error, error) {
		if cfg.Snapshot.Offline {
			log.Printf("📼 Offline mode: replaying snapshots from %s", cfg.Snapshot.Dir)
			return snapshot.NewFetcher(store, nil, key), func() error { return nil }, nil
		}
		live := &lazyBrowser{browserCfg: cfg.Browser, searchCfg: cfg.Search}
		var f scraper.Fetcher = live
		if store != nil {
			f = snapshot.NewFetcher(store, live, key)
		}
		return f, live.Close, nil
	}

	return NewSearcher(open, linkedin.NewExtractor()), nil
}

// lazyBrowser launches the browser on the first live fetch so runs served
// entirely from snapshots never start one. A launch failure is remembered and
// reported for every location.
type lazyBrowser struct {
	browserCfg config.Browser
	searchCfg  config.Search

	session   browser.Session
	scraper   *linkedin.LinkedInScraper
	launchErr error
}

func (b *lazyBrowser) Fetch(ctx context.Context, q models.Query, location string) ([]string, error) {
	if b.scraper == nil && b.launchErr == nil {
		log.Printf("🌐 Launching %s browser (headless=%v)", b.browserCfg.Engine, b.browserCfg.Headless)
		sess, err := browser.Launch(ctx, b.browserCfg)
		if err != nil {
			b.launchErr = fmt.Errorf("failed to launch browser: %w", err)
		} else {
			b.session = sess
			b.scraper = linkedin.NewLinkedInScraper(sess, b.searchCfg, browser.NewScreenshotDebugger(b.browserCfg.DebugDir))
		}
	}
	if b.launchErr != nil {
		return nil, &scraper.NavigationError{Location: location, Cause: b.launchErr}
	}
	return b.scraper.Fetch(ctx, q, location)
}

func (b *lazyBrowser) Close() error {
	if b.session == nil {
		return nil
	}
	return b.session.Close()
}
