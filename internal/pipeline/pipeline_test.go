package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go-easyhunt/internal/filter"
	"go-easyhunt/internal/models"
	"go-easyhunt/internal/scraper"
	"go-easyhunt/internal/scraper/linkedin"
	"go-easyhunt/internal/snapshot"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// fakeFetcher serves cards per location; a location listed in fail errors.
type fakeFetcher struct {
	cards map[string][]string
	fail  map[string]error
	calls []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, q models.Query, location string) ([]string, error) {
	f.calls = append(f.calls, location)
	if err, ok := f.fail[location]; ok {
		return nil, &scraper.NavigationError{Location: location, Cause: err}
	}
	return f.cards[location], nil
}

// pipeExtractor reads "title|company|link|YYYY-MM-DD[|location]" fragments.
type pipeExtractor struct{}

func (pipeExtractor) Extract(fragment string, now time.Time) (models.JobPosting, error) {
	parts := strings.Split(fragment, "|")
	if len(parts) < 4 || len(parts) > 5 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return models.JobPosting{}, &scraper.ExtractionError{Field: "card", Cause: scraper.ErrIncompleteCard}
	}
	job := models.JobPosting{Title: parts[0], Company: parts[1], Link: parts[2], Location: models.Placeholder, PostedText: parts[3]}
	if len(parts) == 5 && parts[4] != "" {
		job.Location = parts[4]
	}
	if d, err := time.Parse("2006-01-02", parts[3]); err == nil {
		job.PostedAt = d
	}
	return job, nil
}

func card(title, company, link, date string) string {
	return fmt.Sprintf("%s|%s|%s|%s", title, company, link, date)
}

func cardIn(title, company, link, date, location string) string {
	return card(title, company, link, date) + "|" + location
}

// guestCard is a card in the site's markup with a relative date only.
func guestCard(title, id string) string {
	return fmt.Sprintf(`<div class="base-card"><a class="base-card__full-link" href="https://in.linkedin.com/jobs/view/%s?trk=x"></a>`+
		`<h3 class="base-search-card__title">%s</h3><h4 class="base-search-card__subtitle">Acme</h4>`+
		`<span class="job-search-card__location">Pune</span><time class="job-search-card__listdate">3 days ago</time></div>`, id, title)
}

func newTestSearcher(open OpenFunc) *Searcher {
	s := NewSearcher(open, pipeExtractor{})
	s.now = func() time.Time { return fixedNow }
	return s
}

func posting(title, company, link string, posted time.Time) models.JobPosting {
	return models.JobPosting{Title: title, Company: company, Link: link, PostedAt: posted}
}

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalize(t *testing.T) {
	jobs := []models.JobPosting{
		posting("A", "Acme", "l1", day(10)),
		posting("B", "Acme", "l2", time.Time{}),
		posting("C", "Acme", "l3", day(12)),
		posting("A", "Acme", "l1", day(14)), // duplicate of the first
		posting("D", "Acme", "l4", day(10)),
		posting("E", "Acme", "l5", time.Time{}),
	}

	got := Normalize(jobs, filter.Criteria{}, fixedNow)

	var titles []string
	for _, j := range got {
		titles = append(titles, j.Title)
	}
	assert.Equal(t, []string{"C", "A", "D", "B", "E"}, titles)
	assert.Equal(t, day(10), got[1].PostedAt, "first occurrence wins")
}

func TestNormalizeProperties(t *testing.T) {
	var jobs []models.JobPosting
	for i := 0; i < 40; i++ {
		posted := time.Time{}
		if i%3 != 0 {
			posted = day(1 + i%7)
		}
		jobs = append(jobs, posting(fmt.Sprintf("T%d", i%15), "Co", fmt.Sprintf("l%d", i%15), posted))
	}

	got := Normalize(jobs, filter.Criteria{}, fixedNow)

	seen := map[models.DedupKey]bool{}
	for i, j := range got {
		assert.False(t, seen[j.Key()], "duplicate key %v", j.Key())
		seen[j.Key()] = true
		if i == 0 {
			continue
		}
		prev := got[i-1]
		if j.HasPostedAt() {
			require.True(t, prev.HasPostedAt(), "dated posting after an undated one")
			assert.False(t, j.PostedAt.After(prev.PostedAt))
		}
	}
	assert.Len(t, got, 15)
}

func TestNormalizeEmptyLevelFilterIsUnfiltered(t *testing.T) {
	jobs := []models.JobPosting{
		posting("Software Engineering Intern", "Acme", "l1", day(10)),
		posting("Director of Engineering", "Acme", "l2", day(11)),
		posting("Go Developer", "Acme", "l3", time.Time{}),
	}
	assert.Equal(t, Normalize(jobs, filter.Criteria{}, fixedNow), Normalize(jobs, filter.Criteria{Levels: nil, PostedWithin: 0}, fixedNow))
	assert.Len(t, Normalize(jobs, filter.Criteria{}, fixedNow), 3)

	onlyInterns := Normalize(jobs, filter.Criteria{Levels: []models.ExperienceLevel{models.LevelInternship}}, fixedNow)
	require.Len(t, onlyInterns, 1)
	assert.Equal(t, "Software Engineering Intern", onlyInterns[0].Title)
}

func TestSearchOverlappingLocations(t *testing.T) {
	// the same remote posting shows a different location line in each search
	f := &fakeFetcher{cards: map[string][]string{
		"Pune": {
			cardIn("Go Dev", "Acme", "https://www.linkedin.com/jobs/view/1/", "2026-03-14", "Pune, Maharashtra, India"),
			card("Rust Dev", "Initech", "https://www.linkedin.com/jobs/view/2/", "2026-03-10"),
		},
		"Mumbai": {
			card("Java Dev", "Globex", "https://www.linkedin.com/jobs/view/3/", "2026-03-12"),
			cardIn("Go Dev", "Acme", "https://www.linkedin.com/jobs/view/1/", "2026-03-14", "India (Remote)"),
		},
	}}

	res, err := newTestSearcher(StaticFetcher(f)).Search(context.Background(), models.Query{Role: "dev", Locations: []string{"Pune", "Mumbai"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"Pune", "Mumbai"}, f.calls)
	assert.Equal(t, 4, res.TotalFetched)
	require.Len(t, res.Postings, 3)
	assert.Equal(t, "Go Dev", res.Postings[0].Title)
	assert.Equal(t, "Pune", res.Postings[0].SearchedLocation)
	assert.Equal(t, "Pune, Maharashtra, India", res.Postings[0].Location, "first occurrence wins")
	assert.Equal(t, "Java Dev", res.Postings[1].Title)
	assert.Equal(t, "Mumbai", res.Postings[1].SearchedLocation)
	assert.Empty(t, res.Warnings)
	assert.NotEmpty(t, res.RunID)
	assert.False(t, res.Empty())
}

func TestSearchFailingLocation(t *testing.T) {
	f := &fakeFetcher{
		cards: map[string][]string{"Pune": {card("Go Dev", "Acme", "l1", "2026-03-14")}},
		fail:  map[string]error{"Atlantis": errors.New("timeout 30000ms exceeded")},
	}

	res, err := newTestSearcher(StaticFetcher(f)).Search(context.Background(), models.Query{Role: "dev", Locations: []string{"Atlantis", "Pune"}})
	require.NoError(t, err)

	require.Len(t, res.Postings, 1)
	assert.Equal(t, "Pune", res.Postings[0].SearchedLocation)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, Warning{Kind: WarningNavigation, Location: "Atlantis", Message: "timeout 30000ms exceeded"}, res.Warnings[0])
}

func TestSearchExtractionWarning(t *testing.T) {
	f := &fakeFetcher{cards: map[string][]string{
		"Pune": {card("Go Dev", "Acme", "l1", "2026-03-14"), card("Ghost", "", "", ""), "garbage"},
	}}

	res, err := newTestSearcher(StaticFetcher(f)).Search(context.Background(), models.Query{Role: "dev", Locations: []string{"Pune"}})
	require.NoError(t, err)

	assert.Len(t, res.Postings, 1)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarningExtraction, res.Warnings[0].Kind)
	assert.Contains(t, res.Warnings[0].Message, "skipped 2 of 3")
}

func TestSearchEmptyResult(t *testing.T) {
	f := &fakeFetcher{cards: map[string][]string{}}

	res, err := newTestSearcher(StaticFetcher(f)).Search(context.Background(), models.Query{Role: "dev", Locations: []string{"Pune"}})
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Empty(t, res.Warnings)
}

func TestSearchInvalidQuery(t *testing.T) {
	f := &fakeFetcher{}
	s := newTestSearcher(StaticFetcher(f))

	_, err := s.Search(context.Background(), models.Query{Role: " ", Locations: []string{"Pune"}})
	assert.Error(t, err)
	_, err = s.Search(context.Background(), models.Query{Role: "dev", Locations: []string{"", "  "}})
	assert.Error(t, err)
	assert.Empty(t, f.calls)
}

func TestSearchNormalizesLocations(t *testing.T) {
	f := &fakeFetcher{}
	_, err := newTestSearcher(StaticFetcher(f)).Search(context.Background(), models.Query{Role: "dev", Locations: []string{" Pune ", "", "pune", "Mumbai"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Pune", "Mumbai"}, f.calls)
}

func TestSearchOpenFailure(t *testing.T) {
	open := func(context.Context) (scraper.Fetcher, func() error, error) {
		return nil, nil, errors.New("browser not installed")
	}

	res, err := newTestSearcher(open).Search(context.Background(), models.Query{Role: "dev", Locations: []string{"Pune", "Mumbai"}})
	require.NoError(t, err)
	assert.True(t, res.Empty())
	require.Len(t, res.Warnings, 2)
	for _, w := range res.Warnings {
		assert.Equal(t, WarningNavigation, w.Kind)
		assert.Equal(t, "browser not installed", w.Message)
	}
}

func TestSearchReleasesFetcher(t *testing.T) {
	closed := 0
	f := &fakeFetcher{fail: map[string]error{"Pune": errors.New("boom")}}
	open := func(context.Context) (scraper.Fetcher, func() error, error) {
		return f, func() error { closed++; return nil }, nil
	}

	_, err := newTestSearcher(open).Search(context.Background(), models.Query{Role: "dev", Locations: []string{"Pune"}})
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
}

func TestSearchStampsLevels(t *testing.T) {
	f := &fakeFetcher{cards: map[string][]string{
		"Pune": {card("Software Engineer", "Acme", "l1", "2026-03-14")},
	}}
	q := models.Query{Role: "dev", Locations: []string{"Pune"}, Levels: []models.ExperienceLevel{models.LevelEntry}}

	res, err := newTestSearcher(StaticFetcher(f)).Search(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, res.Postings, 1)
	assert.Equal(t, []models.ExperienceLevel{models.LevelEntry}, res.Postings[0].Levels)
}

func TestSearchDeterministicOverSnapshots(t *testing.T) {
	store, err := snapshot.NewStore(t.TempDir(), 0)
	require.NoError(t, err)
	key := func(q models.Query, location string) (string, error) { return q.Role + "@" + location, nil }
	require.NoError(t, store.Put("dev@Pune", []string{
		card("B", "Acme", "l2", "2026-03-11"),
		card("A", "Acme", "l1", "2026-03-13"),
		card("C", "Acme", "l3", "unknown"),
	}))
	require.NoError(t, store.Put("dev@Mumbai", []string{card("A", "Acme", "l1", "2026-03-13")}))

	s := newTestSearcher(StaticFetcher(snapshot.NewFetcher(store, nil, key)))
	q := models.Query{Role: "dev", Locations: []string{"Pune", "Mumbai"}}

	first, err := s.Search(context.Background(), q)
	require.NoError(t, err)
	second, err := s.Search(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, first.Postings, second.Postings)
	assert.Equal(t, first.Warnings, second.Warnings)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Len(t, first.Postings, 3)
}

func TestSearchSameRelativeDateKeepsPageOrder(t *testing.T) {
	var cards []string
	for i := 1; i <= 5; i++ {
		cards = append(cards, guestCard(fmt.Sprintf("Job %d", i), fmt.Sprintf("%d", 3900000000+i)))
	}
	f := &fakeFetcher{cards: map[string][]string{"Pune": cards}}

	s := NewSearcher(StaticFetcher(f), linkedin.NewExtractor())
	// a clock that moves on every read
	tick := fixedNow
	s.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	res, err := s.Search(context.Background(), models.Query{Role: "dev", Locations: []string{"Pune"}})
	require.NoError(t, err)
	require.Len(t, res.Postings, 5)

	var titles []string
	for _, j := range res.Postings {
		titles = append(titles, j.Title)
		assert.Equal(t, res.Postings[0].PostedAt, j.PostedAt)
	}
	assert.Equal(t, []string{"Job 1", "Job 2", "Job 3", "Job 4", "Job 5"}, titles)
	assert.Equal(t, res.StartedAt.Add(-3*24*time.Hour), res.Postings[0].PostedAt)
}
