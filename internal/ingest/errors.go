package ingest

import "errors"

// Sentinel errors for the recoverable failure classes of the pipeline.
// Persistence errors carry no sentinel: they propagate unwrapped and fail
// the run.
var (
	// ErrPageLoad marks a navigation or timeout failure on an index page.
	// The crawl controller logs and skips the page after retries.
	ErrPageLoad = errors.New("page load failed")

	// ErrEnrichment marks a transport or decode failure talking to the
	// external scraping service. The run degrades to partial enrichment.
	ErrEnrichment = errors.New("enrichment request failed")

	// ErrNoPagination reports that no pagination control was found on the
	// index page. Discovery treats it as a single-page source.
	ErrNoPagination = errors.New("pagination control not found")
)
