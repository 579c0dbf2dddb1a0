// Package headless renders pages with chromedp and a bounded tab pool.
package headless

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"

	"github.com/imovelhub/ingest/internal/ingest"
)

// Config controls the behavior of the headless session pool.
type Config struct {
	// MaxTabs bounds how many browser tabs run at once. Each concurrent
	// page task checks out one tab and returns it on every exit path.
	MaxTabs           int
	UserAgent         string
	NavigationTimeout time.Duration
	// ExtraWait gives client-side rendering a moment to settle after the
	// document is ready.
	ExtraWait time.Duration
}

// Pool shares one browser allocator across the concurrent tasks of a batch.
// Every operation opens an isolated tab context, scoped so cleanup is
// unconditional even on extraction errors.
type Pool struct {
	cfg         Config
	limiter     chan struct{}
	allocator   context.Context
	allocCancel context.CancelFunc
}

// NewPool creates a headless session pool backed by chromedp.
func NewPool(cfg Config) (*Pool, error) {
	if cfg.MaxTabs <= 0 {
		return nil, fmt.Errorf("max tabs must be > 0")
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 25 * time.Second
	}
	if cfg.ExtraWait <= 0 {
		cfg.ExtraWait = 500 * time.Millisecond
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Pool{
		cfg:         cfg,
		limiter:     make(chan struct{}, cfg.MaxTabs),
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}, nil
}

// Close cancels the allocator context, tearing down the browser.
func (p *Pool) Close() {
	p.allocCancel()
}

// Fetch navigates a fresh tab to url and returns the rendered DOM once
// waitSelector (if any) is visible.
func (p *Pool) Fetch(ctx context.Context, url, waitSelector string) (ingest.Page, error) {
	var html string
	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if waitSelector != "" {
		actions = append(actions, chromedp.WaitVisible(waitSelector, chromedp.ByQuery))
	}
	actions = append(actions,
		chromedp.Sleep(p.cfg.ExtraWait),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)

	if err := p.runInTab(ctx, actions...); err != nil {
		return ingest.Page{}, fmt.Errorf("render %s: %w", url, err)
	}
	return ingest.Page{URL: url, HTML: html}, nil
}

// ClickAndRead navigates to url, activates clickSelector, waits out the
// resulting navigation, and returns the text of readSelector. Used for
// pagination controls that only reveal the page count after a round trip.
func (p *Pool) ClickAndRead(ctx context.Context, url, clickSelector, readSelector string) (string, error) {
	var label string
	err := p.runInTab(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Click(clickSelector, chromedp.ByQuery),
		chromedp.WaitVisible(readSelector, chromedp.ByQuery),
		chromedp.Text(readSelector, &label, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("click-and-read %s: %w", url, err)
	}
	return label, nil
}

// runInTab checks out a pool slot, opens an isolated tab, runs the actions
// under the navigation timeout, and releases everything on return.
func (p *Pool) runInTab(ctx context.Context, actions ...chromedp.Action) error {
	if err := p.acquire(ctx); err != nil {
		return err
	}
	defer p.release()

	tabCtx, tabCancel := chromedp.NewContext(p.allocator)
	defer tabCancel()

	tabCtx, cancel := context.WithTimeout(tabCtx, p.cfg.NavigationTimeout)
	defer cancel()

	// Propagate caller cancellation into the tab.
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	all := make([]chromedp.Action, 0, len(actions)+1)
	all = append(all, p.userAgentAction())
	all = append(all, actions...)
	if err := chromedp.Run(tabCtx, all...); err != nil {
		return fmt.Errorf("chromedp run: %w", err)
	}
	return nil
}

func (p *Pool) userAgentAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if p.cfg.UserAgent == "" {
			return nil
		}
		if err := emulation.SetUserAgentOverride(p.cfg.UserAgent).Do(ctx); err != nil {
			return fmt.Errorf("set user-agent: %w", err)
		}
		return nil
	})
}

func (p *Pool) acquire(ctx context.Context) error {
	select {
	case p.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("tab slot wait canceled: %w", ctx.Err())
	}
}

func (p *Pool) release() {
	select {
	case <-p.limiter:
	default:
	}
}

// Fetcher adapts the pool to ingest.Fetcher for one source, waiting for the
// source's card selector before snapshotting.
type Fetcher struct {
	pool         *Pool
	waitSelector string
}

// NewFetcher wraps the pool with a per-source wait selector.
func NewFetcher(pool *Pool, waitSelector string) *Fetcher {
	return &Fetcher{pool: pool, waitSelector: waitSelector}
}

// Fetch implements ingest.Fetcher.
func (f *Fetcher) Fetch(ctx context.Context, url string) (ingest.Page, error) {
	return f.pool.Fetch(ctx, url, f.waitSelector)
}
