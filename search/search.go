// Package search ranks stored chunks against a query.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/fwojciec/siterag"
)

var _ siterag.Retriever = (*Retriever)(nil)

// Retriever embeds a query, asks the collection for candidates and
// re-scores them by exact cosine similarity.
type Retriever struct {
	Embedder   siterag.Embedder
	Collection siterag.Collection
	Logger     *slog.Logger
}

// Retrieve returns up to topK chunks by descending cosine similarity to the
// query. Candidates with equal scores keep the order the store returned
// them in, so the ranking is deterministic.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]siterag.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, siterag.Errorf(siterag.EINVALID, "query required")
	}
	if topK <= 0 {
		return nil, siterag.Errorf(siterag.EINVALID, "topK must be positive, got %d", topK)
	}

	vec, err := r.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	candidates, err := r.Collection.Query(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	ranked := Rerank(vec, candidates)
	r.logger().Debug("retrieved", "candidates", len(candidates), "top_k", topK)
	return ranked, nil
}

// Rerank scores every candidate against query and sorts by descending
// score. The sort is stable.
func Rerank(query []float32, candidates []*siterag.Candidate) []siterag.ScoredChunk {
	scored := make([]siterag.ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, siterag.ScoredChunk{
			Candidate: c,
			Score:     siterag.CosineSimilarity(query, c.Vector),
		})
	}
	slices.SortStableFunc(scored, func(a, b siterag.ScoredChunk) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return scored
}

func (r *Retriever) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}
