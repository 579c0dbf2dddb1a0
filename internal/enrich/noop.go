package enrich

import (
	"context"

	"github.com/imovelhub/ingest/internal/ingest"
)

// Noop is an Enricher that returns no results. Used when the external
// service is not configured and in tests of the crawl-and-merge logic.
type Noop struct{}

// Enrich returns an empty result set.
func (Noop) Enrich(context.Context, ingest.EnrichmentRequest) ([]ingest.EnrichmentResult, error) {
	return nil, nil
}
