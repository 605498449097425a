// Package report turns a search result into the outputs a presenter shows:
// a CSV export, JSON, a text table and company/location counts.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go-easyhunt/internal/models"
	"go-easyhunt/internal/pipeline"
)

var csvHeader = []string{"Job Title", "Company", "Location", "Post Date", "Posted At", "Link", "Searched Location"}

// WriteCSV writes postings in order with a header row. Posted At is the
// parsed date (YYYY-MM-DD) or empty when unknown.
func WriteCSV(w io.Writer, jobs []models.JobPosting) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, job := range jobs {
		if err := cw.Write([]string{
			job.Title,
			job.Company,
			job.Location,
			job.PostedText,
			postedAt(job),
			job.Link,
			job.SearchedLocation,
		}); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the whole result, indented.
func WriteJSON(w io.Writer, res *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

// ExportFileName is the download name for a role's CSV export,
// e.g. "Software Developer" -> "Software_Developer_jobs.csv".
func ExportFileName(role string) string {
	name := strings.Join(strings.Fields(role), "_")
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, name)
	if name == "" {
		name = "search"
	}
	return name + "_jobs.csv"
}

// SaveCSV writes the CSV export for res into dir and returns its path.
func SaveCSV(dir string, res *pipeline.Result) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create directory: %w", err)
	}
	path := filepath.Join(dir, ExportFileName(res.Query.Role))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("could not create %s: %w", path, err)
	}
	if err := WriteCSV(f, res.Postings); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func postedAt(job models.JobPosting) string {
	if !job.HasPostedAt() {
		return ""
	}
	return job.PostedAt.Format("2006-01-02")
}
