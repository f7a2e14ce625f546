package crawl

import (
	"context"
	"fmt"

	"github.com/fwojciec/siterag"
	"golang.org/x/sync/errgroup"
)

// FetchResult holds the outcome of fetching pages.
type FetchResult struct {
	Pages  []*siterag.Page
	Failed int
	Bytes  int
}

// FetchPage downloads a URL and reduces it to its title and main text.
// The page content is the title, a blank line, then the main text.
// When a Converter is set the main content is rendered as markdown instead
// of plain text.
func (c *Crawler) FetchPage(ctx context.Context, pageURL string) (*siterag.Page, error) {
	html, err := c.fetchHTML(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	extracted, err := c.Extractor.Extract(html)
	if err != nil {
		return nil, fmt.Errorf("extracting content: %w", err)
	}

	text := extracted.Text
	if c.Converter != nil && extracted.ContentHTML != "" {
		markdown, err := c.Converter.Convert(extracted.ContentHTML)
		if err != nil {
			return nil, fmt.Errorf("converting content: %w", err)
		}
		text = markdown
	}

	return &siterag.Page{
		URL:     pageURL,
		Title:   extracted.Title,
		Content: siterag.PageContent(extracted.Title, text),
	}, nil
}

// FetchPages fetches urls in batches of Concurrency and returns the pages
// that succeeded, in input order. Failures are logged, counted and reported
// to progress; they never stop the remaining fetches.
func (c *Crawler) FetchPages(ctx context.Context, urls []string, progress siterag.FetchProgressFunc) (*FetchResult, error) {
	if c.Concurrency <= 0 {
		return nil, siterag.Errorf(siterag.EINVALID, "concurrency must be positive, got %d", c.Concurrency)
	}
	logger := c.logger()

	var result FetchResult
	completed := 0
	for start := 0; start < len(urls); start += c.Concurrency {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch := urls[start:min(start+c.Concurrency, len(urls))]
		pages := make([]*siterag.Page, len(batch))
		errs := make([]error, len(batch))

		var g errgroup.Group
		for i, u := range batch {
			g.Go(func() error {
				pages[i], errs[i] = c.FetchPage(ctx, u)
				return nil
			})
		}
		_ = g.Wait()

		for i, u := range batch {
			completed++
			if errs[i] != nil {
				result.Failed++
				logger.Warn("page failed", "url", u, "err", errs[i])
			} else {
				result.Pages = append(result.Pages, pages[i])
				result.Bytes += len(pages[i].Content)
				logger.Debug("page fetched", "url", u, "chars", len([]rune(pages[i].Content)))
			}
			if progress != nil {
				progress(siterag.FetchProgress{
					URL:       u,
					Completed: completed,
					Total:     len(urls),
					Error:     errs[i],
				})
			}
		}
	}

	return &result, nil
}
