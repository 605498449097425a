package telegram

import (
	"errors"
	"testing"
	"time"

	"go-easyhunt/internal/dedup"
	"go-easyhunt/internal/models"
	"go-easyhunt/internal/pipeline"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent   []tgbotapi.MessageConfig
	failOn int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.failOn > 0 && len(f.sent)+1 == f.failOn {
		return tgbotapi.Message{}, errors.New("telegram unavailable")
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func testResult() *pipeline.Result {
	return &pipeline.Result{
		Query: models.Query{Role: "Go Developer", Locations: []string{"Pune", "Berlin"}},
		Postings: []models.JobPosting{
			{Title: "Sr. Go Developer (Remote)", Company: "Acme", Location: "Pune", PostedText: "2 days ago", Link: "https://www.linkedin.com/jobs/view/1/", SearchedLocation: "Pune"},
			{Title: "Go Developer", Company: "Globex", Location: "Berlin", PostedText: "N/A", Link: "https://www.linkedin.com/jobs/view/2/", SearchedLocation: "Berlin"},
			{Title: "Platform Engineer", Company: "Acme", Location: "Pune", PostedText: "1 week ago", Link: "https://www.linkedin.com/jobs/view/3/", SearchedLocation: "Pune"},
		},
		Warnings: []pipeline.Warning{{Kind: pipeline.WarningNavigation, Location: "Atlantis", Message: "timeout"}},
	}
}

func seenIn(c *dedup.SeenCache, link string) bool {
	return len(c.Filter([]string{link})) == 0
}

func TestFormatPostingEscapes(t *testing.T) {
	got := FormatPosting(testResult().Postings[0])
	assert.Contains(t, got, `*Sr\. Go Developer \(Remote\)*`)
	assert.Contains(t, got, "🏢 Acme")
	assert.Contains(t, got, "🔎 Pune")

	slashed := FormatPosting(models.JobPosting{Title: `C\C++ Dev`, Company: "Acme"})
	assert.Contains(t, slashed, `*C\\C\+\+ Dev*`)
}

func TestFormatSummary(t *testing.T) {
	got := FormatSummary(testResult(), 20)
	assert.Contains(t, got, "*3* jobs for *Go Developer*")
	assert.Contains(t, got, "• Acme: 2")
	assert.Contains(t, got, "⚠️ Atlantis: timeout")

	empty := FormatSummary(&pipeline.Result{Query: models.Query{Role: "Go Developer"}}, 20)
	assert.Contains(t, empty, "No jobs found")
}

func TestNotifySkipsSeenAndCaps(t *testing.T) {
	fs := &fakeSender{}
	bot := &Bot{api: fs, chatID: 42}
	seen := dedup.NewSeenCache(t.TempDir())
	seen.Add([]string{"https://www.linkedin.com/jobs/view/1/"})

	require.NoError(t, bot.Notify(testResult(), seen, 20, 1))

	require.Len(t, fs.sent, 2, "summary plus one posting")
	assert.Equal(t, int64(42), fs.sent[0].ChatID)
	assert.Contains(t, fs.sent[1].Text, "Globex")
	assert.True(t, seenIn(seen, "https://www.linkedin.com/jobs/view/2/"))
	assert.False(t, seenIn(seen, "https://www.linkedin.com/jobs/view/3/"))
}

func TestNotifyRecordsPartialProgress(t *testing.T) {
	fs := &fakeSender{failOn: 3}
	bot := &Bot{api: fs, chatID: 42}
	seen := dedup.NewSeenCache(t.TempDir())

	err := bot.Notify(testResult(), seen, 20, 0)
	require.Error(t, err)
	assert.True(t, seenIn(seen, "https://www.linkedin.com/jobs/view/1/"))
	assert.False(t, seenIn(seen, "https://www.linkedin.com/jobs/view/2/"))
}

func TestSendStatus(t *testing.T) {
	fs := &fakeSender{}
	bot := &Bot{api: fs, chatID: 7}
	require.NoError(t, bot.SendStatus("started at "+time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC).Format("2006-01-02")))
	require.NoError(t, bot.SendError(errors.New("boom")))
	require.Len(t, fs.sent, 2)
	assert.Equal(t, "ℹ️ started at 2026-03-15", fs.sent[0].Text)
	assert.Equal(t, "❌ Error: boom", fs.sent[1].Text)
}

func TestNotifyAllSeenSendsStatus(t *testing.T) {
	fs := &fakeSender{}
	bot := &Bot{api: fs, chatID: 42}
	seen := dedup.NewSeenCache(t.TempDir())
	var links []string
	for _, job := range testResult().Postings {
		links = append(links, job.Link)
	}
	seen.Add(links)

	require.NoError(t, bot.Notify(testResult(), seen, 20, 10))

	require.Len(t, fs.sent, 2, "summary plus status")
	assert.Equal(t, "ℹ️ No new postings since the last run.", fs.sent[1].Text)
}

func TestNotifySharedLinkSentOnce(t *testing.T) {
	fs := &fakeSender{}
	bot := &Bot{api: fs, chatID: 42}
	res := testResult()
	dup := res.Postings[0]
	dup.Title = "Golang Developer"
	res.Postings = append(res.Postings, dup)

	require.NoError(t, bot.Notify(res, nil, 20, 0))
	assert.Len(t, fs.sent, 4, "summary plus three distinct links")
}
