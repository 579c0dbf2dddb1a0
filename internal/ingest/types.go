// Package ingest defines core types shared across the listing pipeline.
package ingest

import (
	"time"
)

// ScrapedListing is the transient record produced for one listing card during
// a crawl run. Instances live only until the run's records are merged into
// the canonical store.
type ScrapedListing struct {
	Name      *string  `json:"name"`
	Link      *string  `json:"link"`
	Image     *string  `json:"image"`
	Address   *string  `json:"address"`
	Price     *float64 `json:"price"`
	Area      *int     `json:"area"`
	Bedrooms  *int     `json:"bedrooms"`
	Bathrooms *int     `json:"bathrooms"`
	Parking   *int     `json:"parking"`
	Type      *string  `json:"type"`
	ForSale   bool     `json:"for_sale"`
	Content   string   `json:"content"`
	Photos    []string `json:"photos"`
	Agency    string   `json:"agency"`
	Ref       string   `json:"ref"`
	AgentID   *int64   `json:"agent_id"`
	Published bool     `json:"published"`
}

// RunMetadata is the append-only audit record written once per completed
// agency run. It is never mutated after creation.
type RunMetadata struct {
	RunID         string    `json:"run_id"`
	Agency        string    `json:"agency"`
	TotalListings int       `json:"total_listings"`
	TotalPages    int       `json:"total_pages"`
	Created       time.Time `json:"created_at"`
}

// RunStage represents the lifecycle state of one agency run.
type RunStage string

// Run stages, in execution order. Failed is terminal and reachable from any
// stage on an unrecoverable error.
const (
	StageIdle        RunStage = "idle"
	StageDiscovering RunStage = "discovering_pages"
	StageCrawling    RunStage = "crawling_pages"
	StageDeduping    RunStage = "deduplicating"
	StageEnriching   RunStage = "enriching"
	StagePersisting  RunStage = "persisting"
	StageCompleted   RunStage = "completed"
	StageFailed      RunStage = "failed"
)

// RunReport summarizes one agency run for logging and the process exit code.
type RunReport struct {
	RunID       string
	Agency      string
	Stage       RunStage
	TotalPages  int
	PagesFailed int
	Extracted   int
	Duplicates  int
	Enriched    int
	Persisted   int
	Started     time.Time
	Finished    time.Time
	Err         error
}

// Page is a fetched, fully rendered index or detail page.
type Page struct {
	URL  string
	HTML string
}

// EnrichmentRequest is the single batched request submitted to the external
// scraping service after deduplication.
type EnrichmentRequest struct {
	Name      string              `json:"name,omitempty"`
	URLs      []string            `json:"URLs"`
	Selectors EnrichmentSelectors `json:"selectors"`
}

// EnrichmentSelectors carries the per-source fallback selectors the external
// service should try for detail-page content and photo galleries, plus the
// pattern it needs to derive each result's ref from the detail URL. Without
// Ref the service cannot label results for the join.
type EnrichmentSelectors struct {
	Content []string `json:"content"`
	Photos  []string `json:"photos"`
	Ref     string   `json:"ref,omitempty"`
}

// EnrichmentResult is one entry of the external service response, joined back
// to local records solely by Ref.
type EnrichmentResult struct {
	URL     string   `json:"url"`
	Ref     string   `json:"ref"`
	Content string   `json:"content"`
	Photos  []string `json:"photos"`
}
