// Package pipeline orchestrates the per-agency ingestion run: pagination
// discovery, bounded crawling, deduplication, enrichment, and persistence.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/imovelhub/ingest/internal/crawl"
	"github.com/imovelhub/ingest/internal/dedup"
	"github.com/imovelhub/ingest/internal/enrich"
	"github.com/imovelhub/ingest/internal/extract"
	"github.com/imovelhub/ingest/internal/ingest"
	"github.com/imovelhub/ingest/internal/metrics"
	"github.com/imovelhub/ingest/internal/paginate"
	"github.com/imovelhub/ingest/internal/source"
)

// FetcherFactory builds the page fetcher and, when the adapter renders, the
// navigator for one source. A nil Navigator is fine for static sources.
type FetcherFactory func(a source.Adapter) (ingest.Fetcher, ingest.Navigator)

// Options bundles the Runner's collaborators.
type Options struct {
	FetcherFor      FetcherFactory
	Store           ingest.Store
	Enricher        ingest.Enricher
	Clock           ingest.Clock
	IDs             ingest.IDGenerator
	Crawl           crawl.Config
	Retry           *ingest.ExponentialRetryPolicy
	EnrichBatchSize int
	Logger          *zap.Logger
}

// Runner executes full ingestion runs, one agency at a time. Sources run
// sequentially so a single browser pool and the shared cooldown budget are
// never contended across agencies.
type Runner struct {
	opts Options
}

// New validates the options and builds a Runner.
func New(opts Options) (*Runner, error) {
	if opts.FetcherFor == nil {
		return nil, fmt.Errorf("fetcher factory is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if opts.Clock == nil {
		return nil, fmt.Errorf("clock is required")
	}
	if opts.IDs == nil {
		return nil, fmt.Errorf("id generator is required")
	}
	if opts.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if opts.EnrichBatchSize <= 0 {
		opts.EnrichBatchSize = 25
	}
	return &Runner{opts: opts}, nil
}

// RunAll purges stale placeholder rows, then runs every adapter in order.
// The returned error aggregates the failed runs; successful reports are
// always returned alongside it.
func (r *Runner) RunAll(ctx context.Context, adapters []source.Adapter) ([]ingest.RunReport, error) {
	if deleted, err := r.opts.Store.PurgePlaceholders(ctx); err != nil {
		r.opts.Logger.Warn("placeholder purge failed, continuing", zap.Error(err))
	} else if deleted > 0 {
		r.opts.Logger.Info("purged placeholder listings", zap.Int64("deleted", deleted))
	}

	var (
		reports []ingest.RunReport
		errs    []error
	)
	for _, adapter := range adapters {
		report := r.runSource(ctx, adapter)
		reports = append(reports, report)
		if report.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", adapter.Agency, report.Err))
		}
		if ctx.Err() != nil {
			break
		}
	}
	return reports, errors.Join(errs...)
}

func (r *Runner) runSource(ctx context.Context, adapter source.Adapter) ingest.RunReport {
	report := ingest.RunReport{
		Agency:  adapter.Agency,
		Stage:   ingest.StageIdle,
		Started: r.opts.Clock.Now(),
	}

	fail := func(err error) ingest.RunReport {
		report.Stage = ingest.StageFailed
		report.Err = err
		report.Finished = r.opts.Clock.Now()
		metrics.RunsFailed.Inc()
		r.opts.Logger.Error("run failed",
			zap.String("agency", adapter.Agency),
			zap.String("run_id", report.RunID),
			zap.Error(err),
		)
		return report
	}

	if err := adapter.Validate(); err != nil {
		return fail(err)
	}
	runID, err := r.opts.IDs.NewID()
	if err != nil {
		return fail(fmt.Errorf("generate run id: %w", err))
	}
	report.RunID = runID

	logger := r.opts.Logger.With(
		zap.String("agency", adapter.Agency),
		zap.String("run_id", runID),
	)
	stage := func(next ingest.RunStage) {
		report.Stage = next
		logger.Info("run stage", zap.String("stage", string(next)))
	}

	fetcher, nav := r.opts.FetcherFor(adapter)
	extractor, err := extract.New(adapter.Extraction, logger)
	if err != nil {
		return fail(fmt.Errorf("build extractor: %w", err))
	}

	stage(ingest.StageDiscovering)
	totalPages := paginate.Discover(ctx, fetcher, nav, adapter.BaseURL, adapter.Pagination, logger)
	report.TotalPages = totalPages
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	stage(ingest.StageCrawling)
	controller := crawl.New(fetcher, extractor, r.opts.Retry, r.opts.Crawl, logger)
	scraped, stats, err := controller.Run(ctx, adapter.PageURLs(totalPages))
	if err != nil {
		return fail(err)
	}
	report.PagesFailed = stats.PagesFailed
	report.Extracted = len(scraped)
	metrics.ListingsScraped.Add(float64(len(scraped)))

	stage(ingest.StageDeduping)
	kept, dropped := dedup.ByRef(scraped)
	report.Duplicates = dropped
	metrics.DuplicatesDropped.Add(float64(dropped))
	logger.Info("deduplicated listings",
		zap.Int("extracted", len(scraped)),
		zap.Int("kept", len(kept)),
		zap.Int("dropped", dropped),
	)

	stage(ingest.StageEnriching)
	report.Enriched = r.enrich(ctx, adapter, kept, logger)

	stage(ingest.StagePersisting)
	persisted, err := r.opts.Store.UpsertListings(ctx, kept)
	if err != nil {
		return fail(fmt.Errorf("persist listings: %w", err))
	}
	report.Persisted = persisted

	meta := ingest.RunMetadata{
		RunID:         runID,
		Agency:        adapter.Agency,
		TotalListings: persisted,
		TotalPages:    totalPages,
		Created:       r.opts.Clock.Now(),
	}
	if err := r.opts.Store.SaveRunMetadata(ctx, meta); err != nil {
		return fail(fmt.Errorf("save run metadata: %w", err))
	}

	stage(ingest.StageCompleted)
	report.Finished = r.opts.Clock.Now()
	metrics.RunsCompleted.Inc()
	metrics.RunDuration.Observe(report.Finished.Sub(report.Started).Seconds())
	logger.Info("run completed",
		zap.Int("total_pages", totalPages),
		zap.Int("pages_failed", stats.PagesFailed),
		zap.Int("persisted", persisted),
		zap.Int("enriched", report.Enriched),
	)
	return report
}

// enrich submits detail URLs in batches and merges results by ref. Any
// failure degrades to "no enrichment for that batch"; the run continues
// with index-page data only.
func (r *Runner) enrich(ctx context.Context, adapter source.Adapter, kept []ingest.ScrapedListing, logger *zap.Logger) int {
	if r.opts.Enricher == nil || adapter.Enrichment.Disabled {
		return 0
	}

	var urls []string
	for _, listing := range kept {
		if listing.Link != nil && *listing.Link != "" {
			urls = append(urls, *listing.Link)
		}
	}
	if len(urls) == 0 {
		return 0
	}

	selectors := adapter.Enrichment.Selectors
	if selectors.Ref == "" {
		selectors.Ref = adapter.Extraction.RefPattern
	}

	enriched := 0
	for start := 0; start < len(urls); start += r.opts.EnrichBatchSize {
		end := min(start+r.opts.EnrichBatchSize, len(urls))
		req := ingest.EnrichmentRequest{
			Name:      adapter.Name,
			URLs:      urls[start:end],
			Selectors: selectors,
		}
		results, err := r.enrichBatch(ctx, req)
		if err != nil {
			logger.Warn("enrichment batch failed, keeping index-page data",
				zap.Int("from", start),
				zap.Int("to", end),
				zap.Error(err),
			)
			continue
		}
		enriched += enrich.Merge(kept, results, logger)
	}
	metrics.ListingsEnriched.Add(float64(enriched))
	return enriched
}

// enrichBatch submits one batch with the same bounded retry the page crawl
// uses.
func (r *Runner) enrichBatch(ctx context.Context, req ingest.EnrichmentRequest) ([]ingest.EnrichmentResult, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		results, err := r.opts.Enricher.Enrich(ctx, req)
		if err == nil {
			return results, nil
		}
		lastErr = err
		if r.opts.Retry == nil || !r.opts.Retry.ShouldRetry(err, attempt+1) {
			return nil, lastErr
		}
		select {
		case <-ctx.Done():
			return nil, lastErr
		case <-time.After(r.opts.Retry.Backoff(attempt)):
		}
	}
}
