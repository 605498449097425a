// Package snapshot records the card fragments fetched for a search URL so a
// run can be replayed without a browser.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrMiss is returned when no snapshot exists for a key.
var ErrMiss = errors.New("no snapshot recorded")

// Entry is one recorded fetch.
type Entry struct {
	URL       string    `json:"url"`
	FetchedAt time.Time `json:"fetched_at"`
	Cards     []string  `json:"cards"`
}

// Store keeps one JSON file per search URL under dir.
type Store struct {
	mu  sync.Mutex
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewStore creates dir if needed. A zero ttl never expires entries.
func NewStore(dir string, ttl time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &Store{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Get returns the entry recorded for url, or ErrMiss.
func (s *Store) Get(url string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(url))
	if err != nil {
		if os.IsNotExist(err) {
			return Entry{}, ErrMiss
		}
		return Entry{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return e, nil
}

// Fresh reports whether e is younger than the store's TTL.
func (s *Store) Fresh(e Entry) bool {
	return s.ttl <= 0 || s.now().Sub(e.FetchedAt) < s.ttl
}

// Put records cards for url, replacing any previous entry.
func (s *Store) Put(url string, cards []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cards == nil {
		cards = []string{}
	}
	data, err := json.MarshalIndent(Entry{URL: url, FetchedAt: s.now().UTC(), Cards: cards}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	tmp := s.path(url) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return os.Rename(tmp, s.path(url))
}

func (s *Store) path(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:12])+".json")
}
