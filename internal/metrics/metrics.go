// Package metrics exposes Prometheus instrumentation for the ingest pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesFetched tracks index pages successfully fetched and extracted.
	PagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_pages_fetched_total",
		Help: "The total number of index pages successfully fetched.",
	})
	// PageFailures tracks index pages skipped after exhausting retries.
	PageFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_page_failures_total",
		Help: "The total number of index pages skipped after retries.",
	})
	// ListingsScraped tracks listing records extracted before deduplication.
	ListingsScraped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_listings_scraped_total",
		Help: "The total number of listing records extracted from cards.",
	})
	// DuplicatesDropped tracks records removed by run-level deduplication.
	DuplicatesDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_duplicates_dropped_total",
		Help: "The total number of records dropped as duplicate or missing refs.",
	})
	// ListingsEnriched tracks records that received detail-page content.
	ListingsEnriched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_listings_enriched_total",
		Help: "The total number of records merged with enrichment results.",
	})
	// RunsCompleted tracks agency runs that reached the completed stage.
	RunsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_runs_completed_total",
		Help: "The total number of agency runs completed.",
	})
	// RunsFailed tracks agency runs that terminated in the failed stage.
	RunsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_runs_failed_total",
		Help: "The total number of agency runs that failed.",
	})
	// RunDuration observes end-to-end agency run duration.
	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ingest_run_duration_seconds",
		Help:    "End-to-end duration of one agency run.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
)
