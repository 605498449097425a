package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"go-easyhunt/internal/models"
	"go-easyhunt/internal/pipeline"
)

const maxCell = 48

// WriteTable prints postings as an aligned text table.
func WriteTable(w io.Writer, jobs []models.JobPosting) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPOSTED\tTITLE\tCOMPANY\tLOCATION\tLINK")
	for i, job := range jobs {
		posted := postedAt(job)
		if posted == "" {
			posted = job.PostedText
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			i+1, posted, truncate(job.Title), truncate(job.Company), truncate(job.Location), job.Link)
	}
	return tw.Flush()
}

// WriteSummary prints the run status, warnings and the company chart as text.
func WriteSummary(w io.Writer, res *pipeline.Result, topN int) error {
	if res.Empty() {
		fmt.Fprintf(w, "No jobs found for %q.\n", res.Query.Role)
	} else {
		fmt.Fprintf(w, "Found %d jobs for %q (%d cards fetched) in %s.\n",
			len(res.Postings), res.Query.Role, res.TotalFetched, res.Duration.Round(time.Millisecond))
	}
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "warning: %s: %s: %s\n", warn.Kind, warn.Location, warn.Message)
	}
	if res.Empty() {
		return nil
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Top hiring companies:")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range TopCompanies(res.Postings, topN) {
		fmt.Fprintf(tw, "  %s\t%d\t%s\n", truncate(c.Name), c.Count, strings.Repeat("█", c.Count))
	}
	return tw.Flush()
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxCell {
		return s
	}
	return string(r[:maxCell-1]) + "…"
}
