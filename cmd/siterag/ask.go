package main

import (
	"fmt"

	"github.com/fwojciec/siterag"
	"github.com/fwojciec/siterag/search"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	cfg := c.config(deps.Config)

	asker, err := openAsker(deps, cfg)
	if err != nil {
		return err
	}

	answer, err := asker.Ask(deps.Ctx, c.Question, nil)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siterag.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, answer.Text)
	if c.Sources {
		fmt.Fprintln(deps.Stdout)
		fmt.Fprintln(deps.Stdout, "Sources:")
		for _, s := range answer.Sources {
			fmt.Fprintf(deps.Stdout, "  [%.3f] %s\n", s.Score, s.Candidate.Source())
		}
	}
	return nil
}

// openAsker validates the query settings, opens the collection and builds
// an Asker over it. It halts with ENOTFOUND when the collection is missing
// or empty.
func openAsker(deps *Dependencies, cfg siterag.Config) (siterag.Asker, error) {
	if err := cfg.ValidateQuery(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siterag.ErrorMessage(err))
		return nil, err
	}

	coll, err := deps.Store.FindCollection(deps.Ctx, cfg.Collection)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siterag.ErrorMessage(err))
		if siterag.ErrorCode(err) == siterag.ENOTFOUND {
			fmt.Fprintln(deps.Stderr, "Hint: Run 'siterag index' first")
		}
		return nil, err
	}

	n, err := coll.Count(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siterag.ErrorMessage(err))
		return nil, err
	}
	if n == 0 {
		fmt.Fprintf(deps.Stderr, "error: collection %q is empty\n", cfg.Collection)
		fmt.Fprintln(deps.Stderr, "Hint: Run 'siterag index' first")
		return nil, siterag.Errorf(siterag.ENOTFOUND, "collection %q is empty", cfg.Collection)
	}

	retriever := &search.Retriever{
		Embedder:   deps.QueryEmbedder,
		Collection: coll,
		Logger:     deps.Logger,
	}
	return deps.NewAsker(retriever, cfg), nil
}
