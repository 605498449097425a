package filter

import (
	"time"

	"go-easyhunt/internal/models"
)

// Criteria is the post-hoc filter applied after deduplication.
type Criteria struct {
	Levels       []models.ExperienceLevel
	PostedWithin time.Duration
}

// CriteriaFor extracts the filter part of a query.
func CriteriaFor(q models.Query) Criteria {
	return Criteria{Levels: q.Levels, PostedWithin: q.PostedWithin}
}

// Keep reports whether a posting satisfies c.
func (c Criteria) Keep(job models.JobPosting, now time.Time) bool {
	return c.matchesLevel(job) && IsWithin(job.PostedAt, c.PostedWithin, now)
}

// matchesLevel: no requested level keeps everything; a posting tagged by a
// filtered search matches on its tags; an untagged posting falls back to the
// level inferred from its title.
func (c Criteria) matchesLevel(job models.JobPosting) bool {
	if len(c.Levels) == 0 {
		return true
	}
	if len(job.Levels) > 0 {
		for _, lvl := range job.Levels {
			if models.ContainsLevel(c.Levels, lvl) {
				return true
			}
		}
		return false
	}
	lvl, ok := InferLevel(job.Title)
	return ok && models.ContainsLevel(c.Levels, lvl)
}
