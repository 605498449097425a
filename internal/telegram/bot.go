package telegram

import (
	"fmt"
	"log"
	"strings"

	"go-easyhunt/internal/dedup"
	"go-easyhunt/internal/models"
	"go-easyhunt/internal/pipeline"
	"go-easyhunt/internal/report"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// sender is the part of tgbotapi.BotAPI the bot uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api    sender
	chatID int64
}

func NewBot(token string, chatID int64) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	//turn this on in case of debug
	//api.Debug = true

	return &Bot{
		api:    api,
		chatID: chatID,
	}, nil
}

var markdownEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
	")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
	"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
	"}", "\\}", ".", "\\.", "!", "\\!",
)

func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// FormatPosting renders one posting as a MarkdownV2 message body.
func FormatPosting(job models.JobPosting) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔥 *%s*\n", escapeMarkdown(job.Title))
	fmt.Fprintf(&b, "🏢 %s\n", escapeMarkdown(job.Company))
	fmt.Fprintf(&b, "📍 %s\n", escapeMarkdown(job.Location))
	fmt.Fprintf(&b, "📅 %s\n", escapeMarkdown(job.PostedText))
	if job.SearchedLocation != "" {
		fmt.Fprintf(&b, "🔎 %s\n", escapeMarkdown(job.SearchedLocation))
	}
	return b.String()
}

// FormatSummary renders the run status and the top companies.
func FormatSummary(res *pipeline.Result, topN int) string {
	var b strings.Builder
	role := escapeMarkdown(res.Query.Role)
	if res.Empty() {
		fmt.Fprintf(&b, "📭 No jobs found for *%s*\n", role)
	} else {
		fmt.Fprintf(&b, "✅ *%d* jobs for *%s* in %s\n", len(res.Postings), role,
			escapeMarkdown(strings.Join(res.Query.Locations, ", ")))
		for _, c := range report.TopCompanies(res.Postings, topN) {
			fmt.Fprintf(&b, "• %s: %d\n", escapeMarkdown(c.Name), c.Count)
		}
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(&b, "⚠️ %s: %s\n", escapeMarkdown(w.Location), escapeMarkdown(w.Message))
	}
	return b.String()
}

func (b *Bot) SendPosting(job models.JobPosting) error {
	msg := tgbotapi.NewMessage(b.chatID, FormatPosting(job))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🔗 View Job", job.Link),
		),
	)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendSummary(res *pipeline.Result, topN int) error {
	msg := tgbotapi.NewMessage(b.chatID, FormatSummary(res, topN))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) SendError(err error) error {
	msg := tgbotapi.NewMessage(b.chatID, fmt.Sprintf("❌ Error: %v", err))
	_, sendErr := b.api.Send(msg)
	return sendErr
}

func (b *Bot) SendStatus(message string) error {
	msg := tgbotapi.NewMessage(b.chatID, "ℹ️ "+message)
	_, err := b.api.Send(msg)
	return err
}

// Notify sends the summary and then up to limit postings that seen has not
// recorded yet. Sent links are added to seen. A nil seen sends the first limit;
// limit <= 0 sends all. When every posting was already sent, a short status
// message replaces them.
func (b *Bot) Notify(res *pipeline.Result, seen *dedup.SeenCache, topN, limit int) error {
	if err := b.SendSummary(res, topN); err != nil {
		return fmt.Errorf("failed to send summary: %w", err)
	}

	links := make([]string, 0, len(res.Postings))
	for _, job := range res.Postings {
		links = append(links, job.Link)
	}
	if seen != nil {
		links = seen.Filter(links)
	}
	fresh := make(map[string]bool, len(links))
	for _, link := range links {
		fresh[link] = true
	}

	var sent []string
	defer func() {
		if seen != nil && len(sent) > 0 {
			seen.Add(sent)
		}
	}()

	for _, job := range res.Postings {
		if limit > 0 && len(sent) >= limit {
			break
		}
		if !fresh[job.Link] {
			continue
		}
		if err := b.SendPosting(job); err != nil {
			return fmt.Errorf("failed to send posting %s: %w", job.Link, err)
		}
		// one message per link even if two titles share it
		fresh[job.Link] = false
		sent = append(sent, job.Link)
	}
	log.Printf("📨 Sent %d new posting(s) to Telegram", len(sent))

	if len(sent) == 0 && !res.Empty() {
		if err := b.SendStatus("No new postings since the last run."); err != nil {
			return fmt.Errorf("failed to send status: %w", err)
		}
	}
	return nil
}
