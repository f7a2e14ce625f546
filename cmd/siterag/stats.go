package main

import (
	"fmt"

	"github.com/fwojciec/siterag"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	coll, err := deps.Store.FindCollection(deps.Ctx, deps.Config.Collection)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siterag.ErrorMessage(err))
		return err
	}

	n, err := coll.Count(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", siterag.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Collection: %s\n", coll.Name())
	fmt.Fprintf(deps.Stdout, "Chunks:     %d\n", n)
	return nil
}
