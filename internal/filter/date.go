package filter

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

var (
	isoDateRegex   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	slashDateRegex = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})`)
	relativeRegex  = regexp.MustCompile(`(\d+)\s*\+?\s*(second|sec|minute|min|hour|hr|day|week|wk|month|mo|year|yr)s?\b`)
)

// ParsePostedAt turns the card's date signal into an absolute time.
//
// The datetime attribute of the <time> element wins when it holds an ISO date.
// Otherwise the visible text is read:
//   - "just now", "N seconds/minutes/hours ago": now minus that amount
//   - "N days/weeks/months/years ago": N, 7N, 30N or 365N days before now
//   - "YYYY-MM-DD" or "dd/mm/yyyy"
//
// Anything else yields the zero time, which sorts after every dated posting.
func ParsePostedAt(datetimeAttr, text string, now time.Time) time.Time {
	if t, ok := parseAbsolute(strings.TrimSpace(datetimeAttr)); ok {
		return t
	}

	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" || text == "n/a" {
		return time.Time{}
	}

	if strings.Contains(text, "just now") || text == "now" || strings.Contains(text, "today") {
		return now
	}
	if strings.Contains(text, "yesterday") {
		return now.Add(-day)
	}

	if m := relativeRegex.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}
		}
		return now.Add(-time.Duration(n) * unitDuration(m[2]))
	}

	// "an hour ago", "a week ago"
	if strings.HasPrefix(text, "a ") || strings.HasPrefix(text, "an ") {
		fields := strings.Fields(text)
		if len(fields) > 1 {
			unit := strings.TrimSuffix(fields[1], "s")
			if d := unitDuration(unit); d > 0 {
				return now.Add(-d)
			}
		}
	}

	if t, ok := parseAbsolute(text); ok {
		return t
	}
	return time.Time{}
}

func unitDuration(unit string) time.Duration {
	switch unit {
	case "second", "sec":
		return time.Second
	case "minute", "min":
		return time.Minute
	case "hour", "hr":
		return time.Hour
	case "day":
		return day
	case "week", "wk":
		return 7 * day
	case "month", "mo":
		return 30 * day
	case "year", "yr":
		return 365 * day
	}
	return 0
}

func parseAbsolute(s string) (time.Time, bool) {
	//Case 1: ISO format "2026-01-27" or 2026-01-27T...
	if isoDateRegex.MatchString(s) {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, true
		}
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t, true
		}
	}

	//case 2: dd/mm/yyyy
	if m := slashDateRegex.FindStringSubmatch(s); m != nil {
		d, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		if mo < 1 || mo > 12 || d < 1 || d > 31 {
			return time.Time{}, false
		}
		return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// IsWithin reports whether postedAt lies inside the window ending at now.
// Unknown dates pass, and so does a zero window. Dates more than two days in
// the future (timezone skew beyond that) are rejected.
func IsWithin(postedAt time.Time, window time.Duration, now time.Time) bool {
	if window <= 0 || postedAt.IsZero() {
		return true
	}
	diff := now.Sub(postedAt)
	if diff > window {
		return false
	}
	if diff < -2*day {
		return false
	}
	return true
}
