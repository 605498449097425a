package linkedin

import (
	"fmt"
	"strings"
	"time"

	"go-easyhunt/internal/filter"
	"go-easyhunt/internal/models"
	"go-easyhunt/internal/scraper"

	"github.com/PuerkitoBio/goquery"
)

// Selectors for the public (guest) job search layout. A layout change on the
// site should only require edits in this block.
const (
	CardSelector     = "div.base-card, div.job-search-card"
	ReadySelector    = "div.base-card, div.job-search-card, ul.jobs-search__results-list"
	ShowMoreSelector = "button.infinite-scroller__show-more-button"

	titleSelector    = "h3.base-search-card__title"
	companySelector  = "h4.base-search-card__subtitle"
	locationSelector = "span.job-search-card__location"
	dateSelector     = "time.job-search-card__listdate, time.job-search-card__listdate--new, time"
	linkSelector     = "a.base-card__full-link"
)

// SplitCards returns the outer HTML of every job card on a results page.
func SplitCards(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	var cards []string
	doc.Find(CardSelector).Each(func(_ int, s *goquery.Selection) {
		// a job-search-card nested in a base-card is the same card
		if s.ParentsFiltered(CardSelector).Length() > 0 {
			return
		}
		if fragment, err := goquery.OuterHtml(s); err == nil {
			cards = append(cards, fragment)
		}
	})
	return cards, nil
}

// Extractor reads the guest search card markup.
type Extractor struct{}

var _ scraper.Extractor = (*Extractor)(nil)

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(fragment string, now time.Time) (models.JobPosting, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return models.JobPosting{}, &scraper.ExtractionError{Cause: err}
	}
	card := doc.Find(CardSelector).First()
	if card.Length() == 0 {
		// fragment may be the inner markup of a card
		card = doc.Find("body")
	}

	title := cleanText(card.Find(titleSelector).First().Text())
	if title == "" {
		return models.JobPosting{}, &scraper.ExtractionError{Field: "title", Cause: scraper.ErrIncompleteCard}
	}

	company := cleanText(card.Find(companySelector).First().Text())
	if company == "" {
		return models.JobPosting{}, &scraper.ExtractionError{Field: "company", Cause: scraper.ErrIncompleteCard}
	}

	link, ok := extractLink(card)
	if !ok {
		return models.JobPosting{}, &scraper.ExtractionError{Field: "link", Cause: scraper.ErrIncompleteCard}
	}

	location := cleanText(card.Find(locationSelector).First().Text())
	if location == "" {
		location = models.Placeholder
	}

	dateEl := card.Find(dateSelector).First()
	postedText := cleanText(dateEl.Text())
	datetime, _ := dateEl.Attr("datetime")
	postedAt := time.Time{}
	if postedText != "" || datetime != "" {
		postedAt = filter.ParsePostedAt(datetime, postedText, now)
	}
	if postedText == "" {
		postedText = models.Placeholder
	}

	return models.JobPosting{
		Title:      title,
		Company:    company,
		Location:   location,
		PostedText: postedText,
		PostedAt:   postedAt,
		Link:       link,
	}, nil
}

func extractLink(card *goquery.Selection) (string, bool) {
	if href, ok := card.Find(linkSelector).First().Attr("href"); ok {
		if link, ok := CanonicalLink(href); ok {
			return link, true
		}
	}
	if urn, ok := card.Attr("data-entity-urn"); ok {
		return LinkFromURN(urn)
	}
	if urn, ok := card.Find("[data-entity-urn]").First().Attr("data-entity-urn"); ok {
		return LinkFromURN(urn)
	}
	return "", false
}

// cleanText collapses the whitespace the site pads card text with.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
