package snapshot

import (
	"context"
	"errors"
	"log"

	"go-easyhunt/internal/models"
	"go-easyhunt/internal/scraper"
)

// KeyFunc maps a query and location to the URL a live fetch would load.
type KeyFunc func(q models.Query, location string) (string, error)

// Fetcher replays fresh snapshots and records live fetches. With a nil live
// fetcher it works offline: any recorded snapshot is replayed regardless of
// age and a missing one is a navigation failure.
type Fetcher struct {
	store *Store
	live  scraper.Fetcher
	key   KeyFunc
}

var _ scraper.Fetcher = (*Fetcher)(nil)

func NewFetcher(store *Store, live scraper.Fetcher, key KeyFunc) *Fetcher {
	return &Fetcher{store: store, live: live, key: key}
}

func (f *Fetcher) Fetch(ctx context.Context, q models.Query, location string) ([]string, error) {
	url, err := f.key(q, location)
	if err != nil {
		return nil, &scraper.NavigationError{Location: location, Cause: err}
	}

	entry, err := f.store.Get(url)
	switch {
	case err == nil && (f.live == nil || f.store.Fresh(entry)):
		log.Printf("    📼 Replaying %d cards for %s (recorded %s)", len(entry.Cards), location, entry.FetchedAt.Format("2006-01-02 15:04"))
		return entry.Cards, nil
	case err != nil && !errors.Is(err, ErrMiss):
		log.Printf("    ⚠️ Snapshot unreadable for %s: %v", location, err)
	}

	if f.live == nil {
		return nil, &scraper.NavigationError{Location: location, URL: url, Cause: err}
	}

	cards, err := f.live.Fetch(ctx, q, location)
	if err != nil {
		return nil, err
	}
	if err := f.store.Put(url, cards); err != nil {
		log.Printf("    ⚠️ Failed to record snapshot for %s: %v", location, err)
	}
	return cards, nil
}
