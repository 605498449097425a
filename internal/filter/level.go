package filter

import (
	"regexp"

	"go-easyhunt/internal/models"
)

// Title keywords per level, most specific first. Titles are folded (lower
// case, no diacritics) before matching.
var levelPatterns = []struct {
	level models.ExperienceLevel
	re    *regexp.Regexp
}{
	{models.LevelInternship, regexp.MustCompile(`\b(intern|internship|trainee|pasantia|praktikum|stagiaire|apprentice)\b`)},
	{models.LevelExecutive, regexp.MustCompile(`\b(chief|cto|ceo|cfo|coo|cio|vp|vice president|svp|evp|head of)\b`)},
	{models.LevelDirector, regexp.MustCompile(`\b(director|directeur)\b`)},
	{models.LevelMidSenior, regexp.MustCompile(`\b(senior|sr|lead|principal|staff|manager|architect)\b`)},
	{models.LevelEntry, regexp.MustCompile(`\b(junior|jr|entry[\s-]?level|graduate|fresher|new grad)\b`)},
	{models.LevelAssociate, regexp.MustCompile(`\b(associate)\b`)},
}

// InferLevel guesses the experience level from a job title. It is used only
// for postings that were not fetched through a level-filtered search.
func InferLevel(title string) (models.ExperienceLevel, bool) {
	text := models.FoldText(title)
	for _, p := range levelPatterns {
		if p.re.MatchString(text) {
			return p.level, true
		}
	}
	return "", false
}
