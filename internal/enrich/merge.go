package enrich

import (
	"go.uber.org/zap"

	"github.com/imovelhub/ingest/internal/ingest"
)

// Merge copies enrichment results onto listings, joined solely by ref.
// Listings whose ref is absent from the response keep their prior content
// and photos. Results carrying a ref that was never submitted in this run
// are ignored and logged, never merged. Returns the number of listings that
// received content or photos.
func Merge(listings []ingest.ScrapedListing, results []ingest.EnrichmentResult, logger *zap.Logger) int {
	if len(results) == 0 {
		return 0
	}

	submitted := make(map[string]int, len(listings))
	for i, l := range listings {
		if l.Ref != "" {
			submitted[l.Ref] = i
		}
	}

	merged := 0
	for _, result := range results {
		index, ok := submitted[result.Ref]
		if !ok {
			logger.Warn("enrichment result for unknown ref ignored",
				zap.String("ref", result.Ref),
				zap.String("url", result.URL),
			)
			continue
		}
		listing := &listings[index]
		touched := false
		if result.Content != "" {
			listing.Content = result.Content
			touched = true
		}
		if len(result.Photos) > 0 {
			listing.Photos = result.Photos
			touched = true
		}
		if touched {
			merged++
		}
	}
	return merged
}
