package mock

import (
	"context"

	"github.com/fwojciec/siterag"
)

var _ siterag.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of siterag.Embedder.
type Embedder struct {
	EmbedFn func(ctx context.Context, text string) ([]float32, error)
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedFn(ctx, text)
}

var _ siterag.VectorStore = (*VectorStore)(nil)

// VectorStore is a mock implementation of siterag.VectorStore.
type VectorStore struct {
	GetOrCreateCollectionFn func(ctx context.Context, name string) (siterag.Collection, bool, error)
	FindCollectionFn        func(ctx context.Context, name string) (siterag.Collection, error)
}

func (s *VectorStore) GetOrCreateCollection(ctx context.Context, name string) (siterag.Collection, bool, error) {
	return s.GetOrCreateCollectionFn(ctx, name)
}

func (s *VectorStore) FindCollection(ctx context.Context, name string) (siterag.Collection, error) {
	return s.FindCollectionFn(ctx, name)
}

var _ siterag.Collection = (*Collection)(nil)

// Collection is a mock implementation of siterag.Collection.
type Collection struct {
	NameFn    func() string
	UpsertFn  func(ctx context.Context, rec *siterag.Record) error
	QueryFn   func(ctx context.Context, vector []float32, topK int) ([]*siterag.Candidate, error)
	CountFn   func(ctx context.Context) (int, error)
	ListIDsFn func(ctx context.Context) ([]string, error)
	DeleteFn  func(ctx context.Context, ids []string) error
}

func (c *Collection) Name() string {
	return c.NameFn()
}

func (c *Collection) Upsert(ctx context.Context, rec *siterag.Record) error {
	return c.UpsertFn(ctx, rec)
}

func (c *Collection) Query(ctx context.Context, vector []float32, topK int) ([]*siterag.Candidate, error) {
	return c.QueryFn(ctx, vector, topK)
}

func (c *Collection) Count(ctx context.Context) (int, error) {
	return c.CountFn(ctx)
}

func (c *Collection) ListIDs(ctx context.Context) ([]string, error) {
	return c.ListIDsFn(ctx)
}

func (c *Collection) Delete(ctx context.Context, ids []string) error {
	return c.DeleteFn(ctx, ids)
}
