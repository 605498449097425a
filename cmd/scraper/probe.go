package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go-easyhunt/internal/browser"
	"go-easyhunt/internal/config"
	"go-easyhunt/internal/models"
	"go-easyhunt/internal/scraper/linkedin"

	"github.com/spf13/cobra"
)

// probe and config are the manual checks run when setting up a new machine.

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Launch the configured browser, load one search page and report what it sees",
	RunE:  runProbe,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE:  runConfig,
}

var (
	probeLocation   string
	probeScreenshot string
)

func init() {
	probeCmd.Flags().StringVarP(&probeLocation, "location", "l", "India", "Location for the test search")
	probeCmd.Flags().StringVar(&probeScreenshot, "screenshot", "", "Save a screenshot of the loaded page to this path")

	rootCmd.AddCommand(probeCmd, configCmd)
}

func runProbe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🌐 Testing browser...")

	if cfg.Browser.CookiesFile != "" {
		cookies, err := browser.LoadCookies(cfg.Browser.CookiesFile)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✅ Loaded %d cookies\n", len(cookies))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	sess, err := browser.Launch(ctx, cfg.Browser)
	if err != nil {
		return err
	}
	defer sess.Close()
	fmt.Fprintf(out, "✅ %s started (headless=%v)\n", cfg.Browser.Engine, cfg.Browser.Headless)

	url, err := linkedin.SearchURL(cfg.Search.BaseURL, models.Query{Role: "software engineer"}, probeLocation)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "🔍 Navigating to %s\n", url)
	if err := sess.Open(ctx, url); err != nil {
		return err
	}

	waitErr := sess.WaitFor(ctx, linkedin.ReadySelector, float64(cfg.Search.CardWait.Milliseconds()))
	html, err := sess.HTML(ctx)
	if err != nil {
		return err
	}
	cards, err := linkedin.SplitCards(html)
	if err != nil {
		return err
	}
	switch {
	case len(cards) > 0:
		fmt.Fprintf(out, "✅ Found %d job cards\n", len(cards))
	case linkedin.IsEmptyResults(html):
		fmt.Fprintln(out, "⚠️ Page loaded but reports no matching jobs")
	default:
		fmt.Fprintf(out, "❌ No job cards (%v); the page may be a login wall or captcha\n", waitErr)
	}

	if probeScreenshot != "" {
		path, _ := filepath.Abs(probeScreenshot)
		if err := sess.Screenshot(ctx, path); err != nil {
			fmt.Fprintf(out, "⚠️ Failed to take screenshot: %v\n", err)
		} else {
			fmt.Fprintf(out, "📸 Screenshot saved: %s\n", path)
		}
	}
	fmt.Fprintln(out, "✨ Probe complete!")
	return nil
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✅ Config loaded successfully!\n")
	fmt.Fprintf(out, "   Browser: %s (headless=%v, container=%v, binary=%q)\n", cfg.Browser.Engine, cfg.Browser.Headless, cfg.Browser.Container, cfg.Browser.BinaryPath)
	fmt.Fprintf(out, "   Search: max_scrolls=%d card_wait=%s min_interval=%s\n", cfg.Search.MaxScrolls, cfg.Search.CardWait, cfg.Search.MinInterval)
	fmt.Fprintf(out, "   Snapshots: dir=%q ttl=%s offline=%v\n", cfg.Snapshot.Dir, cfg.Snapshot.TTL, cfg.Snapshot.Offline)
	fmt.Fprintf(out, "   Reports: %s (top %d companies)\n", cfg.Report.OutputDir, cfg.Report.TopCompanies)
	fmt.Fprintf(out, "   Telegram: enabled=%v token=%s chat=%d\n", cfg.Telegram.Enabled(), redact(cfg.Telegram.Token), cfg.Telegram.ChatID)
	fmt.Fprintf(out, "   Server port: %s\n", cfg.Server.Port)
	return nil
}

func redact(secret string) string {
	if len(secret) <= 6 {
		if secret == "" {
			return "(unset)"
		}
		return "***"
	}
	return secret[:6] + "..."
}
