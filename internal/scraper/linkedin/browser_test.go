package linkedin

import (
	"context"
	"testing"
	"time"

	"go-easyhunt/internal/browser"
	"go-easyhunt/internal/config"
	"go-easyhunt/internal/models"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFetchWithPlaywright serves the fixture through a routed page so the
// real session code runs without touching the network.
func TestFetchWithPlaywright(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	fixture := loadFixture(t)

	pm, err := browser.NewPlaywright(config.Browser{
		Headless:          true,
		WindowWidth:       1280,
		WindowHeight:      800,
		NavigationTimeout: 15 * time.Second,
	})
	if err != nil {
		t.Skipf("playwright not available: %v", err)
	}
	defer pm.Close()

	err = pm.Page().Route("**/*", func(route playwright.Route) {
		_ = route.Fulfill(playwright.RouteFulfillOptions{
			Status:      playwright.Int(200),
			ContentType: playwright.String("text/html; charset=utf-8"),
			Body:        fixture,
		})
	})
	require.NoError(t, err)

	cfg := testSearchConfig()
	cfg.MaxScrolls = 2
	s := NewLinkedInScraper(pm, cfg, nil)

	cards, err := s.Fetch(context.Background(), models.Query{Role: "Software Developer"}, "Pune")
	require.NoError(t, err)
	require.Len(t, cards, 4)

	job, err := NewExtractor().Extract(cards[0], fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "Acme", job.Company)
}
