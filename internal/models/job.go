package models

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Placeholder is stored in optional fields the card did not carry.
const Placeholder = "N/A"

// JobPosting is one job card after extraction.
type JobPosting struct {
	Title            string            `json:"title"`
	Company          string            `json:"company"`
	Location         string            `json:"location"`
	PostedText       string            `json:"posted_text"`
	PostedAt         time.Time         `json:"posted_at,omitempty"`
	Link             string            `json:"link"`
	SearchedLocation string            `json:"searched_location"`
	Levels           []ExperienceLevel `json:"levels,omitempty"`
}

// DedupKey identifies a posting across location queries.
type DedupKey struct {
	Title   string
	Company string
	Link    string
}

func (j JobPosting) Key() DedupKey {
	return DedupKey{Title: j.Title, Company: j.Company, Link: j.Link}
}

// HasPostedAt reports whether the posting date could be parsed.
func (j JobPosting) HasPostedAt() bool {
	return !j.PostedAt.IsZero()
}

// ExperienceLevel is the site's coarse seniority filter.
type ExperienceLevel string

const (
	LevelInternship ExperienceLevel = "Internship"
	LevelEntry      ExperienceLevel = "Entry level"
	LevelAssociate  ExperienceLevel = "Associate"
	LevelMidSenior  ExperienceLevel = "Mid-Senior level"
	LevelDirector   ExperienceLevel = "Director"
	LevelExecutive  ExperienceLevel = "Executive"
)

// Levels lists every experience level in the order the site presents them.
var Levels = []ExperienceLevel{
	LevelInternship,
	LevelEntry,
	LevelAssociate,
	LevelMidSenior,
	LevelDirector,
	LevelExecutive,
}

// Code returns the value LinkedIn expects in the f_E search parameter.
func (l ExperienceLevel) Code() string {
	for i, lvl := range Levels {
		if lvl == l {
			return strconv.Itoa(i + 1)
		}
	}
	return ""
}

// Slug returns the lower-case dashed form, e.g. "mid-senior-level".
func (l ExperienceLevel) Slug() string {
	return strings.ReplaceAll(strings.ToLower(string(l)), " ", "-")
}

// ParseLevel accepts a display name, a slug or a numeric code.
// Matching ignores case and diacritics.
func ParseLevel(s string) (ExperienceLevel, bool) {
	in := foldText(strings.TrimSpace(s))
	if in == "" {
		return "", false
	}
	for _, lvl := range Levels {
		if in == foldText(string(lvl)) || in == lvl.Slug() || in == lvl.Code() {
			return lvl, true
		}
	}
	return "", false
}

// ContainsLevel reports whether levels holds lvl.
func ContainsLevel(levels []ExperienceLevel, lvl ExperienceLevel) bool {
	for _, l := range levels {
		if l == lvl {
			return true
		}
	}
	return false
}

// FoldText lower-cases s and strips combining marks ("Pasantía" -> "pasantia").
func FoldText(s string) string {
	return foldText(s)
}

func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}
	return strings.ToLower(result)
}
