// Package static fetches server-rendered pages with Colly, no JS execution.
package static

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/imovelhub/ingest/internal/ingest"
)

// Config controls the static fetcher.
type Config struct {
	UserAgent      string
	RequestTimeout time.Duration
	Concurrency    int
}

// Fetcher implements ingest.Fetcher using a Colly collector. Suitable for
// sources whose index pages render server side.
type Fetcher struct {
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// New constructs a configured Colly-based Fetcher.
func New(cfg Config, logger *zap.Logger) (*Fetcher, error) {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}

	base := colly.NewCollector(colly.UserAgent(cfg.UserAgent))
	base.AllowURLRevisit = true
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   16,
		MaxConnsPerHost:       cfg.Concurrency * 2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.RequestTimeout,
		ForceAttemptHTTP2:     true,
	})
	base.SetRequestTimeout(cfg.RequestTimeout)

	return &Fetcher{
		baseCollector: base,
		logger:        logger,
	}, nil
}

// Fetch retrieves a page via a clone of the base collector. The caller's
// context rides on the outbound request, so cancellation interrupts an
// in-flight fetch instead of waiting out the transport timeout.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (ingest.Page, error) {
	collector := f.baseCollector.Clone()
	collector.Context = ctx
	resultCh := make(chan fetchResult, 1)
	var once sync.Once
	send := func(res fetchResult) {
		once.Do(func() {
			resultCh <- res
		})
	}

	collector.OnResponse(func(r *colly.Response) {
		send(fetchResult{page: ingest.Page{
			URL:  r.Request.URL.String(),
			HTML: string(r.Body),
		}})
	})

	collector.OnError(func(_ *colly.Response, err error) {
		if err == nil {
			err = errors.New("unknown colly error")
		}
		send(fetchResult{err: err})
	})

	if err := collector.Visit(rawURL); err != nil {
		return ingest.Page{}, err
	}
	collector.Wait()

	select {
	case res := <-resultCh:
		if err := ctx.Err(); err != nil {
			return ingest.Page{}, err
		}
		return res.page, res.err
	default:
		return ingest.Page{}, errors.New("colly fetch produced no result")
	}
}

type fetchResult struct {
	page ingest.Page
	err  error
}
