// Package source holds the per-agency adapter configurations: base URL,
// pagination strategy, field selector tables, and enrichment selectors.
// Adding a source is a configuration change, not new control flow.
package source

import (
	"fmt"

	"github.com/imovelhub/ingest/internal/extract"
	"github.com/imovelhub/ingest/internal/ingest"
	"github.com/imovelhub/ingest/internal/paginate"
)

// Adapter is the full configuration set for one external real-estate site.
type Adapter struct {
	// Name is the config key ("auxiliadora").
	Name string
	// Agency is the display name stored on records ("Auxiliadora Predial").
	Agency string
	// BaseURL is the listing index, also page 1.
	BaseURL string
	// Render selects the headless browser; false uses the static fetcher
	// for server-rendered sources.
	Render bool
	// WaitSelector is the card selector the rendered fetcher waits for
	// before snapshotting.
	WaitSelector string
	// PageURLFormat builds page N >= 2 from the base URL and page number,
	// e.g. "%s?page=%d" or "%s/%d".
	PageURLFormat string
	Pagination    paginate.Rule
	Extraction    extract.Config
	Enrichment    EnrichmentConfig
}

// EnrichmentConfig carries the detail-page selectors delegated to the
// external scraping service.
type EnrichmentConfig struct {
	Disabled  bool
	Selectors ingest.EnrichmentSelectors
}

// PageURLs expands the base URL into the full ordered page list.
func (a Adapter) PageURLs(totalPages int) []string {
	urls := make([]string, 0, totalPages)
	for page := 1; page <= totalPages; page++ {
		if page == 1 || a.PageURLFormat == "" {
			urls = append(urls, a.BaseURL)
			continue
		}
		urls = append(urls, fmt.Sprintf(a.PageURLFormat, a.BaseURL, page))
	}
	return urls
}

// Validate checks the adapter is complete enough to run.
func (a Adapter) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("adapter name is required")
	}
	if a.Agency == "" {
		return fmt.Errorf("adapter %s: agency is required", a.Name)
	}
	if a.BaseURL == "" {
		return fmt.Errorf("adapter %s: base url is required", a.Name)
	}
	if a.Extraction.CardSelector == "" {
		return fmt.Errorf("adapter %s: card selector is required", a.Name)
	}
	if a.Pagination.Mode == paginate.ModeLastControl && !a.Render {
		return fmt.Errorf("adapter %s: last-control pagination needs a rendered session", a.Name)
	}
	return nil
}
