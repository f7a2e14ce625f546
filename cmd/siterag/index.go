package main

import (
	"fmt"

	"github.com/fwojciec/siterag"
	"github.com/fwojciec/siterag/index"
)

// Run executes the index command.
func (c *IndexCmd) Run(deps *Dependencies) error {
	cfg := c.config(deps.Config)
	if err := cfg.ValidateIndex(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siterag.ErrorMessage(err))
		return err
	}
	mode, err := index.ParseMode(c.Mode)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siterag.ErrorMessage(err))
		return err
	}

	sources, err := deps.Source.LoadPages(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siterag.ErrorMessage(err))
		if siterag.ErrorCode(err) == siterag.ENOTFOUND {
			fmt.Fprintln(deps.Stderr, "Hint: Run 'siterag crawl URL' first")
		}
		return err
	}
	fmt.Fprintf(deps.Stdout, "Loaded %d pages from %s\n", len(sources), cfg.PagesDir)

	indexer := deps.Indexer
	indexer.Collection = cfg.Collection
	indexer.Chunk = cfg.Chunk
	indexer.Dedup = c.Dedup
	indexer.Mode = mode

	result, err := indexer.Index(deps.Ctx, sources)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siterag.ErrorMessage(err))
		return err
	}

	if result.Removed > 0 {
		fmt.Fprintf(deps.Stdout, "Removed %d existing chunks\n", result.Removed)
	}
	fmt.Fprintf(deps.Stdout, "Indexed %d of %d chunks into %q (%s)\n",
		result.Stored, result.Chunks, result.Collection, FormatTokens(result.Tokens))
	if result.Skipped > 0 {
		fmt.Fprintf(deps.Stdout, "  %d duplicate chunks skipped\n", result.Skipped)
	}
	if result.Failed > 0 {
		fmt.Fprintf(deps.Stderr, "  %d chunks failed\n", result.Failed)
	}
	return nil
}
