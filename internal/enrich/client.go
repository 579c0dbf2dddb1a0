// Package enrich delegates detail-page content extraction to the external
// scraping service and merges its results back by reference code.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/imovelhub/ingest/internal/ingest"
)

// ClientConfig controls access to the external scraping service.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client submits batched /scrape requests to the external service.
type Client struct {
	cfg  ClientConfig
	http *http.Client
}

// NewClient validates the config and builds a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("enrichment.base_url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type scrapeResponse struct {
	Results []ingest.EnrichmentResult `json:"results"`
}

// Enrich POSTs the batch of detail URLs and per-source selectors. All failures
// wrap ingest.ErrEnrichment so callers can degrade instead of aborting.
func (c *Client) Enrich(ctx context.Context, req ingest.EnrichmentRequest) ([]ingest.EnrichmentResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %w", ingest.ErrEnrichment, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/scrape", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ingest.ErrEnrichment, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ingest.ErrEnrichment, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ingest.ErrEnrichment, resp.StatusCode)
	}

	var decoded scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ingest.ErrEnrichment, err)
	}
	return decoded.Results, nil
}
