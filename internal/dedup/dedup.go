// Package dedup collapses duplicate reference codes within one run.
package dedup

import (
	"github.com/imovelhub/ingest/internal/ingest"
)

// ByRef keeps the first occurrence of each non-empty ref, preserving the
// original page-then-card order. Records without a ref and later duplicates
// are dropped. Deterministic for a fixed input ordering, independent of how
// concurrently extraction ran.
func ByRef(listings []ingest.ScrapedListing) (kept []ingest.ScrapedListing, dropped int) {
	seen := make(map[string]struct{}, len(listings))
	for _, listing := range listings {
		if listing.Ref == "" {
			dropped++
			continue
		}
		if _, ok := seen[listing.Ref]; ok {
			dropped++
			continue
		}
		seen[listing.Ref] = struct{}{}
		kept = append(kept, listing)
	}
	return kept, dropped
}
