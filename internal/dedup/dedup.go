package dedup

import "go-easyhunt/internal/models"

// Unique drops every posting whose (title, company, link) key was already
// seen earlier in jobs. The first occurrence wins and order is preserved.
func Unique(jobs []models.JobPosting) []models.JobPosting {
	seen := make(map[models.DedupKey]struct{}, len(jobs))
	out := make([]models.JobPosting, 0, len(jobs))
	for _, job := range jobs {
		key := job.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, job)
	}
	return out
}
