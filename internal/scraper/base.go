// Define the contracts between the pipeline and a job site.
// Markup knowledge stays behind Extractor.

package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-easyhunt/internal/models"
)

// Fetcher loads the search results for one location and returns the raw job
// card fragments (outer HTML), in page order.
type Fetcher interface {
	Fetch(ctx context.Context, q models.Query, location string) ([]string, error)
}

// Extractor maps one job card fragment to a posting. Relative dates ("3 days
// ago") resolve against now, which is the same for every card of a run.
// It returns an *ExtractionError when the card cannot be identified.
type Extractor interface {
	Extract(fragment string, now time.Time) (models.JobPosting, error)
}

// ErrIncompleteCard marks a card missing title, company or link.
var ErrIncompleteCard = errors.New("job card is missing an identity field")

// NavigationError means a location could not be loaded at all.
type NavigationError struct {
	Location string
	URL      string
	Cause    error
}

func (e *NavigationError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("navigation failed for %q (%s): %v", e.Location, e.URL, e.Cause)
	}
	return fmt.Sprintf("navigation failed for %q: %v", e.Location, e.Cause)
}

func (e *NavigationError) Unwrap() error {
	return e.Cause
}

// ExtractionError means one card was skipped.
type ExtractionError struct {
	Field string
	Cause error
}

func (e *ExtractionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("extraction failed: %s: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("extraction failed: %v", e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
