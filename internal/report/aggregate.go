package report

import (
	"sort"

	"go-easyhunt/internal/models"
)

const DefaultTopCompanies = 20

// Count is one bar of a chart.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// TopCompanies counts postings per exact company name, largest first, ties in
// order of first appearance, truncated to n. n <= 0 keeps every company.
func TopCompanies(jobs []models.JobPosting, n int) []Count {
	return countBy(jobs, n, func(j models.JobPosting) string { return j.Company })
}

// CountByLocation counts postings per searched location, i.e. which location
// query produced them, not the free text printed on the card.
func CountByLocation(jobs []models.JobPosting) []Count {
	return countBy(jobs, 0, func(j models.JobPosting) string { return j.SearchedLocation })
}

func countBy(jobs []models.JobPosting, n int, key func(models.JobPosting) string) []Count {
	index := make(map[string]int)
	var counts []Count
	for _, job := range jobs {
		k := key(job)
		if i, ok := index[k]; ok {
			counts[i].Count++
			continue
		}
		index[k] = len(counts)
		counts = append(counts, Count{Name: k, Count: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
