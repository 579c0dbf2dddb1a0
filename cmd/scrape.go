package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/imovelhub/ingest/internal/clock/system"
	"github.com/imovelhub/ingest/internal/config"
	"github.com/imovelhub/ingest/internal/crawl"
	"github.com/imovelhub/ingest/internal/enrich"
	"github.com/imovelhub/ingest/internal/fetcher/headless"
	"github.com/imovelhub/ingest/internal/fetcher/static"
	"github.com/imovelhub/ingest/internal/id/uuid"
	"github.com/imovelhub/ingest/internal/ingest"
	"github.com/imovelhub/ingest/internal/logging"
	"github.com/imovelhub/ingest/internal/pipeline"
	"github.com/imovelhub/ingest/internal/source"
	"github.com/imovelhub/ingest/internal/store/postgres"
)

// newScrapeCmd creates and configures the 'scrape' subcommand, the full
// ingestion run over every enabled source.
func newScrapeCmd() *cobra.Command {
	var only []string
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Runs the full listing ingestion pipeline",
		Long: `Discovers pagination, crawls every index page, deduplicates by
reference code, enriches via the external scraping service when configured,
and upserts the results into the marketplace database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScrape(cmd.Context(), only)
		},
	}
	cmd.Flags().StringSliceVar(&only, "source", nil, "restrict the run to the named sources")
	return cmd
}

func runScrape(parent context.Context, only []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	adapters, err := selectAdapters(cfg, only)
	if err != nil {
		return err
	}
	if len(adapters) == 0 {
		logger.Warn("no sources enabled, nothing to do")
		return nil
	}

	store, err := postgres.NewListingStore(ctx, postgres.Config{
		DSN:             cfg.DB.DSN,
		MaxConns:        cfg.DB.MaxConns,
		MinConns:        cfg.DB.MinConns,
		MaxConnLifetime: cfg.DB.ConnLifetime(),
	})
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer store.Close()

	pool, err := headless.NewPool(headless.Config{
		MaxTabs:           cfg.Browser.MaxTabs,
		UserAgent:         cfg.Browser.UserAgent,
		NavigationTimeout: cfg.Browser.NavTimeout(),
		ExtraWait:         cfg.Browser.ExtraWait(),
	})
	if err != nil {
		return fmt.Errorf("init browser pool: %w", err)
	}
	defer pool.Close()

	staticFetcher, err := static.New(static.Config{
		UserAgent:      cfg.Browser.UserAgent,
		RequestTimeout: cfg.Browser.NavTimeout(),
		Concurrency:    cfg.Crawl.Concurrency,
	}, logger)
	if err != nil {
		return fmt.Errorf("init static fetcher: %w", err)
	}

	enricher, err := buildEnricher(cfg.Enrichment)
	if err != nil {
		return err
	}

	runner, err := pipeline.New(pipeline.Options{
		FetcherFor: func(a source.Adapter) (ingest.Fetcher, ingest.Navigator) {
			if a.Render {
				return headless.NewFetcher(pool, a.WaitSelector), pool
			}
			return staticFetcher, nil
		},
		Store:    store,
		Enricher: enricher,
		Clock:    system.New(),
		IDs:      uuid.NewUUIDGenerator(),
		Crawl: crawl.Config{
			Concurrency: cfg.Crawl.Concurrency,
			Cooldown:    cfg.Crawl.Cooldown(),
		},
		Retry:           ingest.NewExponentialRetryPolicy(cfg.Crawl.MaxAttempts),
		EnrichBatchSize: cfg.Enrichment.BatchSize,
		Logger:          logger,
	})
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	reports, err := runner.RunAll(ctx, adapters)
	logReports(logger, reports)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("ingestion run: %w", err)
	}
	return nil
}

// buildEnricher returns the external client when enrichment is configured,
// a no-op otherwise.
func buildEnricher(cfg config.EnrichmentConfig) (ingest.Enricher, error) {
	if !cfg.Enabled {
		return enrich.Noop{}, nil
	}
	client, err := enrich.NewClient(enrich.ClientConfig{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("init enrichment client: %w", err)
	}
	return client, nil
}

// selectAdapters applies config overrides to the builtin adapters and
// filters them down to the requested subset.
func selectAdapters(cfg config.Config, only []string) ([]source.Adapter, error) {
	requested := make(map[string]bool, len(only))
	for _, name := range only {
		requested[name] = true
	}

	var adapters []source.Adapter
	for _, adapter := range source.Builtin() {
		override, ok := cfg.Sources[adapter.Name]
		if ok {
			if override.Enabled != nil && !*override.Enabled {
				continue
			}
			if override.BaseURL != "" {
				adapter.BaseURL = override.BaseURL
				adapter.Extraction.BaseURL = override.BaseURL
			}
		}
		if len(requested) > 0 && !requested[adapter.Name] {
			continue
		}
		delete(requested, adapter.Name)
		adapters = append(adapters, adapter)
	}

	if len(requested) > 0 {
		for name := range requested {
			return nil, fmt.Errorf("unknown source %q", name)
		}
	}
	return adapters, nil
}

func logReports(logger *zap.Logger, reports []ingest.RunReport) {
	for _, report := range reports {
		fields := []zap.Field{
			zap.String("agency", report.Agency),
			zap.String("run_id", report.RunID),
			zap.String("stage", string(report.Stage)),
			zap.Int("total_pages", report.TotalPages),
			zap.Int("pages_failed", report.PagesFailed),
			zap.Int("extracted", report.Extracted),
			zap.Int("duplicates", report.Duplicates),
			zap.Int("enriched", report.Enriched),
			zap.Int("persisted", report.Persisted),
			zap.Duration("elapsed", report.Finished.Sub(report.Started)),
		}
		if report.Err != nil {
			logger.Error("run summary", append(fields, zap.Error(report.Err))...)
			continue
		}
		logger.Info("run summary", fields...)
	}
}
