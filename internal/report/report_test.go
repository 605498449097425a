package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go-easyhunt/internal/models"
	"go-easyhunt/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleJobs() []models.JobPosting {
	return []models.JobPosting{
		{Title: "Go Developer", Company: "Acme", Location: "Pune, Maharashtra, India", PostedText: "2 days ago",
			PostedAt: time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), Link: "https://www.linkedin.com/jobs/view/1/", SearchedLocation: "Pune"},
		{Title: "Backend Engineer, Payments", Company: "Globex", Location: models.Placeholder, PostedText: models.Placeholder,
			Link: "https://www.linkedin.com/jobs/view/2/", SearchedLocation: "Pune"},
		{Title: "SRE", Company: "Acme", Location: "Mumbai", PostedText: "1 week ago",
			PostedAt: time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC), Link: "https://www.linkedin.com/jobs/view/3/", SearchedLocation: "Mumbai"},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleJobs()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Job Title", "Company", "Location", "Post Date", "Posted At", "Link", "Searched Location"}, rows[0])
	assert.Equal(t, []string{"Go Developer", "Acme", "Pune, Maharashtra, India", "2 days ago", "2026-03-13", "https://www.linkedin.com/jobs/view/1/", "Pune"}, rows[1])
	assert.Equal(t, "", rows[2][4], "unknown date stays empty")
	assert.Equal(t, "N/A", rows[2][3])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Job Title,Company,Location,Post Date,Posted At,Link,Searched Location\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	res := &pipeline.Result{RunID: "run-1", Query: models.Query{Role: "dev", Locations: []string{"Pune"}}, Postings: sampleJobs()}
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, res))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.Len(t, decoded["postings"], 3)
}

func TestExportFileName(t *testing.T) {
	tests := []struct {
		role string
		want string
	}{
		{"Software Developer", "Software_Developer_jobs.csv"},
		{"  Data   Scientist ", "Data_Scientist_jobs.csv"},
		{"C/C++ Engineer", "C-C++_Engineer_jobs.csv"},
		{"", "search_jobs.csv"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExportFileName(tt.role), tt.role)
	}
}

func TestSaveCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	res := &pipeline.Result{Query: models.Query{Role: "Go Developer"}, Postings: sampleJobs()}

	path, err := SaveCSV(dir, res)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Go_Developer_jobs.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(data), "\n"))
}

func TestTopCompanies(t *testing.T) {
	jobs := []models.JobPosting{
		{Company: "Globex"}, {Company: "Acme"}, {Company: "Initech"},
		{Company: "Acme"}, {Company: "Initech"}, {Company: "acme"},
	}

	got := TopCompanies(jobs, 20)
	assert.Equal(t, []Count{{"Acme", 2}, {"Initech", 2}, {"Globex", 1}, {"acme", 1}}, got)

	assert.Equal(t, []Count{{"Acme", 2}, {"Initech", 2}}, TopCompanies(jobs, 2))
	assert.Len(t, TopCompanies(jobs, 0), 4)
	assert.Empty(t, TopCompanies(nil, DefaultTopCompanies))
}

func TestCountByLocation(t *testing.T) {
	got := CountByLocation(sampleJobs())
	assert.Equal(t, []Count{{"Pune", 2}, {"Mumbai", 1}}, got)
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleJobs()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "#"))
	assert.Contains(t, lines[1], "2026-03-13")
	assert.Contains(t, lines[2], "N/A")
	assert.Contains(t, lines[3], "SRE")
}

func TestWriteSummary(t *testing.T) {
	res := &pipeline.Result{
		Query:        models.Query{Role: "dev"},
		Postings:     sampleJobs(),
		TotalFetched: 5,
		Warnings:     []pipeline.Warning{{Kind: pipeline.WarningNavigation, Location: "Atlantis", Message: "timeout"}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, res, 20))

	out := buf.String()
	assert.Contains(t, out, `Found 3 jobs for "dev"`)
	assert.Contains(t, out, "warning: navigation: Atlantis: timeout")
	assert.Contains(t, out, "Acme")

	buf.Reset()
	require.NoError(t, WriteSummary(&buf, &pipeline.Result{Query: models.Query{Role: "dev"}}, 20))
	assert.Contains(t, buf.String(), `No jobs found for "dev"`)
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("é", maxCell+5)
	got := truncate(long)
	assert.Equal(t, maxCell, len([]rune(got)))
	assert.Equal(t, "short", truncate("short"))
}
