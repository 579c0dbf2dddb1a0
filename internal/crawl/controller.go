// Package crawl drives bounded-parallel fetching of index pages.
package crawl

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/imovelhub/ingest/internal/ingest"
	"github.com/imovelhub/ingest/internal/metrics"
)

// Extractor turns one fetched page into listing records.
type Extractor interface {
	Extract(page ingest.Page) ([]ingest.ScrapedListing, error)
}

// Config controls batch fan-out.
type Config struct {
	// Concurrency caps in-flight fetches per batch.
	Concurrency int
	// Cooldown is the fixed pause between successive batches, to stay under
	// source-side rate limits.
	Cooldown time.Duration
}

// Stats summarizes one crawl phase.
type Stats struct {
	PagesFetched int
	PagesFailed  int
}

// Controller partitions page URLs into batches of at most Concurrency and
// runs each batch's fetch-and-extract in parallel. Batches execute strictly
// in sequence; results are re-serialized into original page order so the
// downstream deduplicator is deterministic regardless of scheduling.
type Controller struct {
	fetcher   ingest.Fetcher
	extractor Extractor
	retry     *ingest.ExponentialRetryPolicy
	cfg       Config
	logger    *zap.Logger
}

// New constructs a Controller.
func New(fetcher ingest.Fetcher, extractor Extractor, retry *ingest.ExponentialRetryPolicy, cfg Config, logger *zap.Logger) *Controller {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	return &Controller{
		fetcher:   fetcher,
		extractor: extractor,
		retry:     retry,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run fetches every URL and returns the extracted records in page order.
// A page that still fails after retries is logged, counted, and skipped;
// the crawl continues with partial coverage. Only context cancellation
// aborts the phase.
func (c *Controller) Run(ctx context.Context, urls []string) ([]ingest.ScrapedListing, Stats, error) {
	perPage := make([][]ingest.ScrapedListing, len(urls))
	var (
		mu    sync.Mutex
		stats Stats
	)

	for start := 0; start < len(urls); start += c.cfg.Concurrency {
		if err := ctx.Err(); err != nil {
			return nil, stats, fmt.Errorf("crawl aborted: %w", err)
		}

		end := min(start+c.cfg.Concurrency, len(urls))
		batch := urls[start:end]
		c.logger.Info("crawling batch",
			zap.Int("from", start+1),
			zap.Int("to", end),
			zap.Int("total_pages", len(urls)),
		)

		var wg sync.WaitGroup
		for offset, url := range batch {
			wg.Add(1)
			go func(index int, pageURL string) {
				defer wg.Done()
				listings, err := c.fetchPage(ctx, pageURL)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					stats.PagesFailed++
					metrics.PageFailures.Inc()
					c.logger.Warn("page skipped after retries",
						zap.String("url", pageURL),
						zap.Int("page", index+1),
						zap.Error(err),
					)
					return
				}
				stats.PagesFetched++
				metrics.PagesFetched.Inc()
				perPage[index] = listings
			}(start+offset, url)
		}
		wg.Wait()

		if end < len(urls) {
			c.pause(ctx)
		}
	}

	var all []ingest.ScrapedListing
	for _, listings := range perPage {
		all = append(all, listings...)
	}
	return all, stats, nil
}

func (c *Controller) fetchPage(ctx context.Context, url string) ([]ingest.ScrapedListing, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		page, err := c.fetcher.Fetch(ctx, url)
		if err == nil {
			return c.extractor.Extract(page)
		}
		lastErr = err
		if c.retry == nil || !c.retry.ShouldRetry(err, attempt+1) {
			break
		}
		c.logger.Debug("retrying page fetch",
			zap.String("url", url),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
		if !sleepCtx(ctx, c.retry.Backoff(attempt)) {
			break
		}
	}
	return nil, fmt.Errorf("%w: %s: %w", ingest.ErrPageLoad, url, lastErr)
}

func (c *Controller) pause(ctx context.Context) {
	if c.cfg.Cooldown <= 0 {
		return
	}
	sleepCtx(ctx, c.cfg.Cooldown)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
