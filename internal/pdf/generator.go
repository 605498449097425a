package pdf

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go-easyhunt/internal/config"
	"go-easyhunt/internal/models"
	"go-easyhunt/internal/pipeline"
	"go-easyhunt/internal/report"

	"github.com/playwright-community/playwright-go"
)

//go:embed templates/postings.html
var templates embed.FS

// Generator renders a search result as a printable table.
type Generator struct {
	templatePath string
	browser      config.Browser
	topN         int
}

// NewGenerator uses the template at templatePath, or the built-in one when
// it is empty.
func NewGenerator(templatePath string, browser config.Browser, topN int) *Generator {
	return &Generator{
		templatePath: templatePath,
		browser:      browser,
		topN:         topN,
	}
}

type pageData struct {
	*pipeline.Result
	TopCompanies []report.Count
	GeneratedAt  time.Time
}

var funcMap = template.FuncMap{
	"join": strings.Join,
	"date": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
	"posted": func(j models.JobPosting) string {
		if j.HasPostedAt() {
			return j.PostedAt.Format("2006-01-02")
		}
		return j.PostedText
	},
	"barWidth": func(n int) int { return n * 12 },
}

// RenderHTML executes the template for res.
func (g *Generator) RenderHTML(res *pipeline.Result, now time.Time) (string, error) {
	var (
		tmpl *template.Template
		err  error
	)
	if g.templatePath != "" {
		tmpl, err = template.New(filepath.Base(g.templatePath)).Funcs(funcMap).ParseFiles(g.templatePath)
	} else {
		tmpl, err = template.New("postings.html").Funcs(funcMap).ParseFS(templates, "templates/postings.html")
	}
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	data := pageData{Result: res, TopCompanies: report.TopCompanies(res.Postings, g.topN), GeneratedAt: now}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// Generate renders res and prints it to PDF with a headless Chromium.
func (g *Generator) Generate(res *pipeline.Result) ([]byte, error) {
	htmlContent, err := g.RenderHTML(res, time.Now())
	if err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	defer pw.Stop()

	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	}
	if g.browser.BinaryPath != "" {
		opts.ExecutablePath = playwright.String(g.browser.BinaryPath)
	}
	browser, err := pw.Chromium.Launch(opts)
	if err != nil {
		return nil, fmt.Errorf("could not launch chromium browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create new page: %w", err)
	}
	defer page.Close()

	if err := page.SetContent(htmlContent, playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return nil, fmt.Errorf("could not set page content: %w", err)
	}

	pdfBytes, err := page.PDF(playwright.PagePdfOptions{
		Format:          playwright.String("A4"),
		Landscape:       playwright.Bool(true),
		PrintBackground: playwright.Bool(true),
		Margin: &playwright.Margin{
			Top:    playwright.String("10mm"),
			Bottom: playwright.String("10mm"),
			Left:   playwright.String("8mm"),
			Right:  playwright.String("8mm"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not generate PDF: %w", err)
	}

	return pdfBytes, nil
}

// FileName is the PDF counterpart of report.ExportFileName.
func FileName(role string) string {
	return strings.TrimSuffix(report.ExportFileName(role), ".csv") + ".pdf"
}

// SaveToFile is a helper function to directly save generated PDF to disk
func SaveToFile(pdfBytes []byte, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("could not create directory: %w", err)
	}

	return os.WriteFile(outputPath, pdfBytes, 0644)
}
