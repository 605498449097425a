package dedup

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type seenEntry struct {
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
}

// SeenCache remembers which posting links were already notified, across runs.
// Entries older than the retention window are dropped on load.
type SeenCache struct {
	mu        sync.Mutex
	filePath  string
	seen      map[string]int64
	retention time.Duration
	now       func() time.Time
}

const DefaultRetention = 30 * 24 * time.Hour

// NewSeenCache creates or loads the cache stored in cacheDir/seen_jobs.json.
func NewSeenCache(cacheDir string) *SeenCache {
	return newSeenCache(cacheDir, DefaultRetention, time.Now)
}

func newSeenCache(cacheDir string, retention time.Duration, now func() time.Time) *SeenCache {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		log.Printf("⚠️ Failed to create cache directory: %v", err)
	}
	cache := &SeenCache{
		filePath:  filepath.Join(cacheDir, "seen_jobs.json"),
		seen:      make(map[string]int64),
		retention: retention,
		now:       now,
	}
	cache.load()
	return cache
}

// Filter returns the links from links that are not in the cache, in order.
func (c *SeenCache) Filter(links []string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var fresh []string
	for _, link := range links {
		if _, exists := c.seen[link]; !exists {
			fresh = append(fresh, link)
		}
	}
	return fresh
}

// Add records links and persists the cache when anything changed.
func (c *SeenCache) Add(links []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now().UnixMilli()
	changed := false
	for _, link := range links {
		if _, exists := c.seen[link]; !exists {
			c.seen[link] = now
			changed = true
		}
	}

	if changed {
		c.save()
	}
}

func (c *SeenCache) load() {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️ Failed to read seen_jobs.json: %v", err)
		}
		return
	}

	var entries []seenEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("⚠️ Failed to parse seen_jobs.json: %v", err)
		return
	}

	cutoff := c.now().Add(-c.retention).UnixMilli()
	loaded := 0
	for _, e := range entries {
		if e.Timestamp > cutoff {
			c.seen[e.URL] = e.Timestamp
			loaded++
		}
	}
	log.Printf("📋 Loaded %d previously seen jobs (%d expired and removed)", loaded, len(entries)-loaded)
}

func (c *SeenCache) save() {
	entries := make([]seenEntry, 0, len(c.seen))
	for url, ts := range c.seen {
		entries = append(entries, seenEntry{URL: url, Timestamp: ts})
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		log.Printf("⚠️ Failed to marshal seen jobs: %v", err)
		return
	}
	if err := os.WriteFile(c.filePath, data, 0644); err != nil {
		log.Printf("⚠️ Failed to write seen_jobs.json: %v", err)
		return
	}
	log.Printf("💾 Saved %d seen jobs to cache", len(entries))
}
