// Package crawl provides breadth-first site crawling.
// It discovers the in-scope URLs of a site in bounded concurrent batches
// and fetches their main content as pages.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/siterag"
	"golang.org/x/sync/errgroup"
)

// Crawler discovers and fetches the pages of a single site.
type Crawler struct {
	Fetcher     siterag.Fetcher
	Links       siterag.LinkExtractor
	Extractor   siterag.Extractor
	Converter   siterag.Converter      // optional; renders main content as markdown
	Sitemaps    siterag.SitemapService // optional; seeds the frontier from sitemaps
	RateLimiter siterag.DomainLimiter  // optional
	Logger      *slog.Logger

	// Concurrency is the number of fetches in flight per batch.
	Concurrency int
	// MaxURLs stops discovery once this many URLs have been seen.
	// A batch in progress may push the count slightly past it.
	MaxURLs int
	// FetchTimeout bounds each fetch attempt. Zero means no extra bound.
	FetchTimeout time.Duration
	// RetryDelays are waited between fetch attempts. Empty means no retries.
	RetryDelays []time.Duration
	// ExcludedExtensions filters sitemap URLs. Defaults to siterag.DefaultExcludedExtensions.
	ExcludedExtensions []string
}

// DiscoverResult holds the outcome of URL discovery.
type DiscoverResult struct {
	// URLs holds every distinct URL seen, in discovery order.
	URLs    []string
	Batches int
	Fetched int
	Failed  int
}

// Discover crawls breadth-first from seedURL and returns every URL seen.
//
// Each round pops up to Concurrency URLs from the frontier and fetches them
// concurrently. A failed fetch is logged and contributes no links; it never
// cancels the rest of the batch. Links are merged into the frontier only
// after the whole batch has finished. Discovery ends when the queue is empty
// or MaxURLs URLs have been seen.
func (c *Crawler) Discover(ctx context.Context, seedURL string) (*DiscoverResult, error) {
	if seedURL == "" {
		return nil, siterag.Errorf(siterag.EINVALID, "seed URL required")
	}
	if c.Concurrency <= 0 {
		return nil, siterag.Errorf(siterag.EINVALID, "concurrency must be positive, got %d", c.Concurrency)
	}
	if c.MaxURLs <= 0 {
		return nil, siterag.Errorf(siterag.EINVALID, "max URLs must be positive, got %d", c.MaxURLs)
	}

	seed, err := siterag.NormalizeURL(seedURL)
	if err != nil {
		return nil, err
	}
	parsed, err := url.Parse(seed)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL: %w", err)
	}
	baseHost := parsed.Host
	logger := c.logger()

	frontier := NewFrontier()
	frontier.Push(seed)
	c.seedFromSitemaps(ctx, frontier, seed, baseHost)

	var result DiscoverResult
	for frontier.Len() > 0 && frontier.SeenCount() < c.MaxURLs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch := frontier.PopBatch(c.Concurrency)
		links := make([][]string, len(batch))
		errs := make([]error, len(batch))

		// Goroutines never return an error so that one failure does not
		// cancel the others.
		var g errgroup.Group
		for i, u := range batch {
			g.Go(func() error {
				links[i], errs[i] = c.fetchLinks(ctx, u, baseHost)
				return nil
			})
		}
		_ = g.Wait()
		result.Batches++

		for i, u := range batch {
			if errs[i] != nil {
				result.Failed++
				logger.Warn("fetch failed", "url", u, "err", errs[i])
				continue
			}
			result.Fetched++
			for _, link := range links[i] {
				frontier.Push(link)
			}
		}

		logger.Info("discovered so far",
			"seen", frontier.SeenCount(),
			"queued", frontier.Len(),
			"batch", result.Batches,
		)
	}

	result.URLs = frontier.URLs()
	logger.Info("discovery finished", "urls", len(result.URLs), "failed", result.Failed)
	return &result, nil
}

// seedFromSitemaps pushes in-scope sitemap URLs behind the seed.
// Sitemap failures are logged and otherwise ignored.
func (c *Crawler) seedFromSitemaps(ctx context.Context, frontier *Frontier, seed, baseHost string) {
	if c.Sitemaps == nil {
		return
	}
	urls, err := c.Sitemaps.DiscoverURLs(ctx, seed)
	if err != nil {
		c.logger().Warn("sitemap discovery failed", "url", seed, "err", err)
		return
	}
	exts := c.ExcludedExtensions
	if exts == nil {
		exts = siterag.DefaultExcludedExtensions
	}
	added := 0
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Host != baseHost || siterag.HasExtension(u.Path, exts) {
			continue
		}
		if frontier.Push(raw) {
			added++
		}
	}
	c.logger().Info("sitemap seeded", "urls", added)
}

// fetchLinks fetches a page and returns its in-scope links.
func (c *Crawler) fetchLinks(ctx context.Context, pageURL, baseHost string) ([]string, error) {
	html, err := c.fetchHTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	links, err := c.Links.ExtractLinks(html, pageURL, baseHost)
	if err != nil {
		return nil, fmt.Errorf("extracting links: %w", err)
	}
	return links, nil
}

// fetchHTML applies rate limiting, the per-attempt timeout and retries around Fetcher.
func (c *Crawler) fetchHTML(ctx context.Context, pageURL string) (string, error) {
	if c.RateLimiter != nil {
		u, err := url.Parse(pageURL)
		if err != nil {
			return "", err
		}
		if err := c.RateLimiter.Wait(ctx, u.Host); err != nil {
			return "", err
		}
	}

	fetch := func(ctx context.Context, u string) (string, error) {
		if c.FetchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.FetchTimeout)
			defer cancel()
		}
		return c.Fetcher.Fetch(ctx, u)
	}
	return FetchWithRetry(ctx, pageURL, fetch, c.Logger, c.RetryDelays)
}

func (c *Crawler) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}
