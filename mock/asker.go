package mock

import (
	"context"

	"github.com/fwojciec/siterag"
)

var _ siterag.Asker = (*Asker)(nil)

// Asker is a mock implementation of siterag.Asker.
type Asker struct {
	AskFn func(ctx context.Context, question string, history []siterag.Turn) (*siterag.Answer, error)
}

func (a *Asker) Ask(ctx context.Context, question string, history []siterag.Turn) (*siterag.Answer, error) {
	return a.AskFn(ctx, question, history)
}

var _ siterag.Retriever = (*Retriever)(nil)

// Retriever is a mock implementation of siterag.Retriever.
type Retriever struct {
	RetrieveFn func(ctx context.Context, query string, topK int) ([]siterag.ScoredChunk, error)
}

func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]siterag.ScoredChunk, error) {
	return r.RetrieveFn(ctx, query, topK)
}
