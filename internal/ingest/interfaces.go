package ingest

import (
	"context"
	"time"
)

// Fetcher loads one page and returns its rendered HTML.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// Navigator performs the click-then-read round trip some sources need for
// pagination discovery: activate a control, wait for the navigation, read the
// resulting indicator text.
type Navigator interface {
	ClickAndRead(ctx context.Context, url, clickSelector, readSelector string) (string, error)
}

// Store reconciles scraped records into the canonical listing table and
// records run metadata.
type Store interface {
	// UpsertListings writes records keyed by ref: existing agency-owned rows
	// are updated in place, unseen refs create new rows. Returns the number
	// of rows written.
	UpsertListings(ctx context.Context, listings []ScrapedListing) (int, error)
	// SaveRunMetadata appends one audit row for a completed agency run.
	SaveRunMetadata(ctx context.Context, meta RunMetadata) error
	// PurgePlaceholders deletes agency-owned rows that never received a name,
	// leftovers of incomplete earlier runs. Agent-owned rows are never touched.
	PurgePlaceholders(ctx context.Context) (int64, error)
}

// Enricher submits the batched detail URLs to the external scraping service.
// Implementations must treat transport failures as their own problem to
// report; callers degrade to "no enrichment this run" on error.
type Enricher interface {
	Enrich(ctx context.Context, req EnrichmentRequest) ([]EnrichmentResult, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
