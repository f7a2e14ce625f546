package main

import (
	"fmt"

	"github.com/fwojciec/siterag"
)

// progressWidth is the width of the URL shown on the progress line.
const progressWidth = 50

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	cfg := c.config(deps.Config)
	if err := cfg.ValidateCrawl(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siterag.ErrorMessage(err))
		return err
	}

	crawler := deps.Crawler
	crawler.MaxURLs = cfg.MaxURLs
	crawler.Concurrency = cfg.Concurrency
	crawler.FetchTimeout = cfg.FetchTimeout
	crawler.ExcludedExtensions = cfg.ExcludedExtensions

	fmt.Fprintf(deps.Stdout, "Crawling %s\n", cfg.SeedURL)
	discovered, err := crawler.Discover(deps.Ctx, cfg.SeedURL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siterag.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Found %d URLs in %d batches (%d failed)\n",
		len(discovered.URLs), discovered.Batches, discovered.Failed)

	progress := func(p siterag.FetchProgress) {
		if p.Error != nil {
			fmt.Fprintf(deps.Stderr, "\rskip %s: %v\n", p.URL, p.Error)
		}
		fmt.Fprintf(deps.Stdout, "\r[%d/%d] %s", p.Completed, p.Total, TruncateURL(p.URL, progressWidth))
	}

	fetched, err := crawler.FetchPages(deps.Ctx, discovered.URLs, progress)
	if err != nil {
		_ = deps.Pages.Abort()
		fmt.Fprintf(deps.Stderr, "\nerror fetching: %v\n", err)
		return err
	}

	// Clear progress line
	fmt.Fprintf(deps.Stdout, "\r%80s\r", "")

	if len(fetched.Pages) == 0 {
		_ = deps.Pages.Abort()
		fmt.Fprintf(deps.Stderr, "error: no pages could be fetched; %s was left unchanged\n", c.PagesDir)
		return siterag.Errorf(siterag.ENOTFOUND, "no pages fetched from %s", cfg.SeedURL)
	}

	for _, page := range fetched.Pages {
		if err := deps.Pages.Save(deps.Ctx, page); err != nil {
			_ = deps.Pages.Abort()
			fmt.Fprintf(deps.Stderr, "error saving %s: %v\n", page.URL, err)
			return err
		}
	}
	if err := deps.Pages.Commit(); err != nil {
		fmt.Fprintf(deps.Stderr, "error committing: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Saved %d pages to %s (%s, %d failed)\n",
		len(fetched.Pages), c.PagesDir, FormatBytes(fetched.Bytes), fetched.Failed)
	return nil
}
