package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go-easyhunt/internal/config"
	"go-easyhunt/internal/dedup"
	"go-easyhunt/internal/models"
	"go-easyhunt/internal/pdf"
	"go-easyhunt/internal/pipeline"
	"go-easyhunt/internal/report"
	"go-easyhunt/internal/telegram"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:     "search",
	Short:   "Search job postings for a role in one or more locations",
	Example: `  easyhunt search --role "Software Developer" --location "Pune, Mumbai" --level entry-level --csv
  easyhunt search -r "Data Engineer" -l Berlin -l Munich --posted-within 168h --json`,
	RunE:    runSearch,
}

var (
	searchRole         string
	searchLocations    []string
	searchLevels       []string
	searchPostedWithin time.Duration
	searchCSV          bool
	searchJSON         bool
	searchPDF          bool
	searchOffline      bool
	searchNotify       bool
	searchTimeout      time.Duration
)

func init() {
	searchCmd.Flags().StringVarP(&searchRole, "role", "r", "", "Job title or keywords (required)")
	searchCmd.Flags().StringArrayVarP(&searchLocations, "location", "l", nil, "Location to search; repeat or use a comma separated list (required)")
	searchCmd.Flags().StringArrayVar(&searchLevels, "level", nil, "Experience level name, slug or code; repeatable (run the levels command to list them)")
	searchCmd.Flags().DurationVar(&searchPostedWithin, "posted-within", 0, "Only keep postings newer than this, e.g. 24h or 168h")
	searchCmd.Flags().BoolVar(&searchCSV, "csv", false, "Write <role>_jobs.csv into report.output_dir")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print the result as JSON instead of a table")
	searchCmd.Flags().BoolVar(&searchPDF, "pdf", false, "Write <role>_jobs.pdf into report.output_dir")
	searchCmd.Flags().BoolVar(&searchOffline, "offline", false, "Replay recorded snapshots only, never launch a browser")
	searchCmd.Flags().BoolVar(&searchNotify, "notify", false, "Send the summary and new postings to Telegram")
	searchCmd.Flags().DurationVar(&searchTimeout, "timeout", 10*time.Minute, "Give up on the whole run after this long")
	_ = searchCmd.MarkFlagRequired("role")
	_ = searchCmd.MarkFlagRequired("location")

	rootCmd.AddCommand(searchCmd)
}

func buildQuery() models.Query {
	q := models.Query{Role: searchRole, PostedWithin: searchPostedWithin}
	for _, loc := range searchLocations {
		q.Locations = append(q.Locations, models.ParseLocations(loc)...)
	}
	for _, lvl := range searchLevels {
		q.Levels = append(q.Levels, models.ExperienceLevel(lvl))
	}
	return q
}

func runSearch(cmd *cobra.Command, _ []string) error {
	q, err := buildQuery().Validate()
	if err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if searchOffline {
		if cfg.Snapshot.Dir == "" {
			return fmt.Errorf("--offline needs snapshot.dir in the config")
		}
		cfg.Snapshot.Offline = true
	}
	log.Printf("🔧 Config loaded. Engine: %s, snapshots: %q", cfg.Browser.Engine, cfg.Snapshot.Dir)

	var bot *telegram.Bot
	if searchNotify {
		if !cfg.Telegram.Enabled() {
			return fmt.Errorf("--notify needs TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID")
		}
		bot, err = telegram.NewBot(cfg.Telegram.Token, cfg.Telegram.ChatID)
		if err != nil {
			return err
		}
		log.Println("🤖 Telegram Bot initialized.")
	}
	var alert errorSender
	if bot != nil {
		alert = bot
	}

	searcher, err := pipeline.NewLinkedInSearcher(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	res, err := searcher.Search(ctx, q)
	if err != nil {
		return reportFailure(alert, err)
	}

	out := cmd.OutOrStdout()
	if searchJSON {
		if err := report.WriteJSON(out, res); err != nil {
			return err
		}
	} else {
		if err := report.WriteSummary(out, res, cfg.Report.TopCompanies); err != nil {
			return err
		}
		if !res.Empty() {
			fmt.Fprintln(out)
			if err := report.WriteTable(out, res.Postings); err != nil {
				return err
			}
		}
	}

	if searchCSV {
		path, err := report.SaveCSV(cfg.Report.OutputDir, res)
		if err != nil {
			return reportFailure(alert, err)
		}
		log.Printf("📁 Results saved to %s", path)
	}

	if searchPDF {
		data, err := pdf.NewGenerator("", cfg.Browser, cfg.Report.TopCompanies).Generate(res)
		if err != nil {
			return reportFailure(alert, err)
		}
		path := filepath.Join(cfg.Report.OutputDir, pdf.FileName(res.Query.Role))
		if err := pdf.SaveToFile(data, path); err != nil {
			return reportFailure(alert, err)
		}
		log.Printf("📄 PDF saved to %s", path)
	}

	if bot != nil {
		seen := dedup.NewSeenCache(cfg.Telegram.CacheDir)
		if err := bot.Notify(res, seen, cfg.Report.TopCompanies, cfg.Telegram.MaxPostings); err != nil {
			log.Printf("⚠️ Failed to notify Telegram: %v", err)
		}
	}

	log.Println("🏁 Execution finished.")
	return nil
}

// errorSender is the part of telegram.Bot used to report a failed run.
type errorSender interface {
	SendError(err error) error
}

// reportFailure forwards err to the chat when notifications are on and
// returns err unchanged.
func reportFailure(alert errorSender, err error) error {
	if alert == nil || err == nil {
		return err
	}
	if sendErr := alert.SendError(err); sendErr != nil {
		log.Printf("⚠️ Failed to send error to Telegram: %v", sendErr)
	}
	return err
}
