// Package pipeline runs a query through fetch, extract and normalize.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go-easyhunt/internal/filter"
	"go-easyhunt/internal/models"
	"go-easyhunt/internal/scraper"

	"github.com/google/uuid"
)

type WarningKind string

const (
	WarningNavigation WarningKind = "navigation"
	WarningExtraction WarningKind = "extraction"
)

// Warning is a non-fatal problem reported alongside the result.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	Location string      `json:"location"`
	Message  string      `json:"message"`
}

// Result is the outcome of one search run.
type Result struct {
	RunID        string              `json:"run_id"`
	Query        models.Query        `json:"query"`
	Postings     []models.JobPosting `json:"postings"`
	TotalFetched int                 `json:"total_fetched"`
	Warnings     []Warning           `json:"warnings"`
	StartedAt    time.Time           `json:"started_at"`
	Duration     time.Duration       `json:"duration"`
}

// Empty reports the "no postings matched" state. It is not an error.
func (r *Result) Empty() bool {
	return len(r.Postings) == 0
}

// OpenFunc acquires a fetcher for one run. The returned close function is
// called once after the last location, on every exit path.
type OpenFunc func(ctx context.Context) (scraper.Fetcher, func() error, error)

// Searcher is not safe for concurrent use when its fetcher drives a browser.
type Searcher struct {
	open      OpenFunc
	extractor scraper.Extractor
	now       func() time.Time
}

func NewSearcher(open OpenFunc, extractor scraper.Extractor) *Searcher {
	return &Searcher{open: open, extractor: extractor, now: time.Now}
}

// StaticFetcher wraps an already built fetcher that needs no cleanup.
func StaticFetcher(f scraper.Fetcher) OpenFunc {
	return func(context.Context) (scraper.Fetcher, func() error, error) {
		return f, func() error { return nil }, nil
	}
}

// Search validates q and runs it. Only an invalid query is returned as an
// error; failed locations and skipped cards become warnings.
func (s *Searcher) Search(ctx context.Context, q models.Query) (*Result, error) {
	q, err := q.Validate()
	if err != nil {
		return nil, err
	}

	start := s.now()
	res := &Result{RunID: uuid.NewString(), Query: q, StartedAt: start}
	log.Printf("🚀 Search %s: %q in %d location(s)", res.RunID, q.Role, len(q.Locations))

	var raw []models.JobPosting
	fetcher, closeFn, err := s.open(ctx)
	if err != nil {
		log.Printf("❌ Failed to start fetcher: %v", err)
		for _, loc := range q.Locations {
			res.Warnings = append(res.Warnings, navigationWarning(loc, err))
		}
	} else {
		defer func() {
			if err := closeFn(); err != nil {
				log.Printf("⚠️ Failed to release fetcher: %v", err)
			}
		}()
		for _, loc := range q.Locations {
			jobs, warnings := s.searchLocation(ctx, fetcher, q, loc, start)
			raw = append(raw, jobs...)
			res.Warnings = append(res.Warnings, warnings...)
		}
	}

	res.TotalFetched = len(raw)
	res.Postings = Normalize(raw, filter.CriteriaFor(q), start)
	res.Duration = s.now().Sub(start)

	if res.Empty() {
		log.Printf("📭 Search %s: no postings matched (%d warning(s))", res.RunID, len(res.Warnings))
	} else {
		log.Printf("✅ Search %s: %d postings (%d fetched, %d warning(s))", res.RunID, len(res.Postings), res.TotalFetched, len(res.Warnings))
	}
	return res, nil
}

// searchLocation resolves every card's date against the run's start time.
func (s *Searcher) searchLocation(ctx context.Context, fetcher scraper.Fetcher, q models.Query, loc string, start time.Time) ([]models.JobPosting, []Warning) {
	cards, err := fetcher.Fetch(ctx, q, loc)
	if err != nil {
		log.Printf("  ⚠️ %v", err)
		return nil, []Warning{navigationWarning(loc, err)}
	}

	jobs := make([]models.JobPosting, 0, len(cards))
	var skipped int
	var firstErr error
	for _, card := range cards {
		job, err := s.extractor.Extract(card, start)
		if err != nil {
			skipped++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		job.SearchedLocation = loc
		if len(q.Levels) > 0 {
			job.Levels = append([]models.ExperienceLevel(nil), q.Levels...)
		}
		jobs = append(jobs, job)
	}

	if skipped == 0 {
		return jobs, nil
	}
	log.Printf("  ⚠️ Skipped %d of %d cards in %s: %v", skipped, len(cards), loc, firstErr)
	return jobs, []Warning{{
		Kind:     WarningExtraction,
		Location: loc,
		Message:  fmt.Sprintf("skipped %d of %d job cards: %v", skipped, len(cards), firstErr),
	}}
}

func navigationWarning(loc string, err error) Warning {
	msg := err.Error()
	var navErr *scraper.NavigationError
	if errors.As(err, &navErr) && navErr.Cause != nil {
		msg = navErr.Cause.Error()
	}
	return Warning{Kind: WarningNavigation, Location: loc, Message: msg}
}
