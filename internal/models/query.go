package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Query is what a presenter asks the pipeline for.
type Query struct {
	Role         string            `json:"role" validate:"required"`
	Locations    []string          `json:"locations" validate:"min=1,dive,required"`
	Levels       []ExperienceLevel `json:"levels,omitempty" validate:"dive,explevel"`
	PostedWithin time.Duration     `json:"posted_within,omitempty" validate:"gte=0"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("explevel", func(fl validator.FieldLevel) bool {
		_, ok := ParseLevel(fl.Field().String())
		return ok
	})
	return v
}

// Normalized trims the role, drops blank and repeated locations and repeated
// levels. Order of first appearance is kept.
func (q Query) Normalized() Query {
	out := Query{
		Role:         strings.TrimSpace(q.Role),
		PostedWithin: q.PostedWithin,
	}
	seenLoc := make(map[string]bool)
	for _, loc := range q.Locations {
		loc = strings.TrimSpace(loc)
		if loc == "" || seenLoc[strings.ToLower(loc)] {
			continue
		}
		seenLoc[strings.ToLower(loc)] = true
		out.Locations = append(out.Locations, loc)
	}
	for _, lvl := range q.Levels {
		if parsed, ok := ParseLevel(string(lvl)); ok {
			lvl = parsed
		}
		if !ContainsLevel(out.Levels, lvl) {
			out.Levels = append(out.Levels, lvl)
		}
	}
	return out
}

// Validate normalizes q and checks it. The returned query is the one to run.
func (q Query) Validate() (Query, error) {
	n := q.Normalized()
	if err := validate.Struct(n); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return n, fmt.Errorf("invalid query: %s", describe(verrs[0]))
		}
		return n, fmt.Errorf("invalid query: %w", err)
	}
	return n, nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.StructField() == "Role" {
			return "role is required"
		}
		return "location must not be empty"
	case "min":
		return "at least one location is required"
	case "explevel":
		return fmt.Sprintf("unknown experience level %q", fe.Value())
	case "gte":
		return "posted_within must not be negative"
	}
	return fe.Error()
}

// ParseLocations splits a comma-separated location list and drops blank
// entries ("Pune, Berlin," becomes two locations).
func ParseLocations(input string) []string {
	var out []string
	for _, part := range strings.Split(input, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
