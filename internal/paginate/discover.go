// Package paginate determines how many index pages a source exposes.
package paginate

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/imovelhub/ingest/internal/ingest"
)

// Mode selects the navigation pattern a source uses for pagination.
type Mode string

const (
	// ModeButtons reads a row of numbered page buttons and takes the
	// maximum numeric label.
	ModeButtons Mode = "buttons"
	// ModeLastControl activates a "last page" control, reads the resulting
	// active-page indicator, then returns to the original index URL. Costs
	// an extra round trip and requires a rendered session.
	ModeLastControl Mode = "last_control"
)

// Rule configures discovery for one source.
type Rule struct {
	Mode Mode
	// ButtonSelector matches the numbered page buttons (ModeButtons).
	ButtonSelector string
	// LastControl matches the control to activate (ModeLastControl).
	LastControl string
	// ActiveIndicator matches the active-page label read after activation.
	ActiveIndicator string
}

// Discover returns the source's total page count, always >= 1. A missing or
// unparsable pagination control is not an error: the source is treated as a
// single page and the run continues.
func Discover(ctx context.Context, fetcher ingest.Fetcher, nav ingest.Navigator, baseURL string, rule Rule, logger *zap.Logger) int {
	total, err := discover(ctx, fetcher, nav, baseURL, rule)
	if err != nil {
		logger.Warn("pagination discovery failed, assuming single page",
			zap.String("url", baseURL),
			zap.Error(err),
		)
		return 1
	}
	if total < 1 {
		return 1
	}
	return total
}

func discover(ctx context.Context, fetcher ingest.Fetcher, nav ingest.Navigator, baseURL string, rule Rule) (int, error) {
	switch rule.Mode {
	case ModeButtons:
		return discoverFromButtons(ctx, fetcher, baseURL, rule.ButtonSelector)
	case ModeLastControl:
		return discoverFromLastControl(ctx, nav, baseURL, rule)
	default:
		return 0, fmt.Errorf("unknown pagination mode %q", rule.Mode)
	}
}

func discoverFromButtons(ctx context.Context, fetcher ingest.Fetcher, baseURL, selector string) (int, error) {
	page, err := fetcher.Fetch(ctx, baseURL)
	if err != nil {
		return 0, fmt.Errorf("fetch index page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return 0, fmt.Errorf("parse index page: %w", err)
	}

	buttons := doc.Find(selector)
	if buttons.Length() == 0 {
		return 0, ingest.ErrNoPagination
	}

	total := 1
	buttons.Each(func(_ int, btn *goquery.Selection) {
		n, err := strconv.Atoi(strings.TrimSpace(btn.Text()))
		if err == nil && n > total {
			total = n
		}
	})
	return total, nil
}

func discoverFromLastControl(ctx context.Context, nav ingest.Navigator, baseURL string, rule Rule) (int, error) {
	if nav == nil {
		return 0, fmt.Errorf("pagination mode %q needs a rendered session", rule.Mode)
	}
	label, err := nav.ClickAndRead(ctx, baseURL, rule.LastControl, rule.ActiveIndicator)
	if err != nil {
		return 0, fmt.Errorf("activate last-page control: %w", err)
	}
	total, err := strconv.Atoi(strings.TrimSpace(label))
	if err != nil {
		return 0, fmt.Errorf("parse active page %q: %w", label, err)
	}
	return total, nil
}
