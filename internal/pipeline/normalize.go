package pipeline

import (
	"sort"
	"time"

	"go-easyhunt/internal/dedup"
	"go-easyhunt/internal/filter"
	"go-easyhunt/internal/models"
)

// Normalize dedups jobs (first occurrence wins), applies c and orders the
// survivors most recent first. Postings without a date go last; ties keep
// their encounter order.
func Normalize(jobs []models.JobPosting, c filter.Criteria, now time.Time) []models.JobPosting {
	unique := dedup.Unique(jobs)

	kept := unique[:0]
	for _, job := range unique {
		if c.Keep(job, now) {
			kept = append(kept, job)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		switch {
		case a.HasPostedAt() && b.HasPostedAt():
			return a.PostedAt.After(b.PostedAt)
		default:
			return a.HasPostedAt() && !b.HasPostedAt()
		}
	})
	return kept
}
