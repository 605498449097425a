package browser

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"time"
)

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ScreenshotDebugger writes failure screenshots under a directory.
// A nil debugger or an empty directory disables it.
type ScreenshotDebugger struct {
	outputDir string
}

func NewScreenshotDebugger(dir string) *ScreenshotDebugger {
	if dir == "" {
		return nil
	}
	return &ScreenshotDebugger{outputDir: dir}
}

// CaptureAndLog saves a full-page screenshot named after name and returns its
// path.
func (s *ScreenshotDebugger) CaptureAndLog(ctx context.Context, sess Session, name, message string) (string, error) {
	if s == nil || sess == nil {
		return "", nil
	}
	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return "", fmt.Errorf("could not create screenshot directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s.png", unsafeName.ReplaceAllString(name, "-"), timestamp)
	path := filepath.Join(s.outputDir, filename)
	log.Printf("📸 %s", message)

	if err := sess.Screenshot(ctx, path); err != nil {
		log.Printf("⚠️ Failed to capture screenshot: %v", err)
		return "", err
	}

	log.Printf("   Screenshot saved: %s", path)
	return path, nil
}
