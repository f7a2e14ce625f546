package index_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fwojciec/siterag"
	"github.com/fwojciec/siterag/index"
	"github.com/fwojciec/siterag/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCollection backs a mock.Collection with a slice of records.
type memCollection struct {
	records []*siterag.Record
	deleted []string
}

func (m *memCollection) mock(name string) *mock.Collection {
	return &mock.Collection{
		NameFn: func() string { return name },
		UpsertFn: func(_ context.Context, rec *siterag.Record) error {
			m.records = append(m.records, rec)
			return nil
		},
		ListIDsFn: func(_ context.Context) ([]string, error) {
			var ids []string
			for _, r := range m.records {
				ids = append(ids, r.ID)
			}
			return ids, nil
		},
		DeleteFn: func(_ context.Context, ids []string) error {
			m.deleted = append(m.deleted, ids...)
			m.records = nil
			return nil
		},
	}
}

func store(coll *mock.Collection, created bool) *mock.VectorStore {
	return &mock.VectorStore{
		GetOrCreateCollectionFn: func(_ context.Context, _ string) (siterag.Collection, bool, error) {
			return coll, created, nil
		},
	}
}

func lengthEmbedder() *mock.Embedder {
	return &mock.Embedder{
		EmbedFn: func(_ context.Context, text string) ([]float32, error) {
			return []float32{float32(len(text)), 1}, nil
		},
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

var smallChunks = siterag.ChunkOptions{Size: 10, Overlap: 2, MinSize: 1}

func TestIndexer_Index(t *testing.T) {
	t.Parallel()

	t.Run("stores every chunk with source, position and hash", func(t *testing.T) {
		t.Parallel()

		mem := &memCollection{}
		ix := &index.Indexer{
			Embedder:   lengthEmbedder(),
			Store:      store(mem.mock("docs"), true),
			Collection: "docs",
			Chunk:      smallChunks,
			NewID:      sequentialIDs(),
		}
		sources := []*siterag.SourceText{
			{Name: "a.txt", Text: "abcdefghijklmnop"},
			{Name: "b.txt", Text: "short"},
		}

		result, err := ix.Index(context.Background(), sources)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Sources)
		assert.Equal(t, 3, result.Chunks)
		assert.Equal(t, 3, result.Stored)
		assert.True(t, result.Created)

		require.Len(t, mem.records, 3)
		first := mem.records[0]
		assert.Equal(t, "id-1", first.ID)
		assert.Equal(t, "abcdefghij", first.Text)
		assert.Equal(t, "a.txt", first.Metadata[siterag.MetadataSource])
		assert.Equal(t, "0", first.Metadata[siterag.MetadataPosition])
		assert.NotEmpty(t, first.Metadata[siterag.MetadataHash])
		assert.Equal(t, []float32{10, 1}, first.Vector)

		assert.Equal(t, "ijklmnop", mem.records[1].Text)
		assert.Equal(t, "1", mem.records[1].Metadata[siterag.MetadataPosition])
		assert.Equal(t, "b.txt", mem.records[2].Metadata[siterag.MetadataSource])
	})

	t.Run("counts failed chunks and keeps going", func(t *testing.T) {
		t.Parallel()

		mem := &memCollection{}
		ix := &index.Indexer{
			Embedder: &mock.Embedder{
				EmbedFn: func(_ context.Context, text string) ([]float32, error) {
					if strings.Contains(text, "bad") {
						return nil, errors.New("quota exceeded")
					}
					return []float32{1}, nil
				},
			},
			Store:      store(mem.mock("docs"), true),
			Collection: "docs",
			Chunk:      siterag.ChunkOptions{Size: 100, Overlap: 0},
		}
		sources := []*siterag.SourceText{
			{Name: "1.txt", Text: "good one"},
			{Name: "2.txt", Text: "bad one"},
			{Name: "3.txt", Text: "good two"},
		}

		result, err := ix.Index(context.Background(), sources)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Stored)
		assert.Equal(t, 1, result.Failed)
		assert.Len(t, mem.records, 2)
	})

	t.Run("counts upsert failures", func(t *testing.T) {
		t.Parallel()

		coll := &mock.Collection{
			NameFn: func() string { return "docs" },
			UpsertFn: func(_ context.Context, _ *siterag.Record) error {
				return errors.New("disk full")
			},
		}
		ix := &index.Indexer{
			Embedder:   lengthEmbedder(),
			Store:      store(coll, true),
			Collection: "docs",
			Chunk:      smallChunks,
		}

		result, err := ix.Index(context.Background(), []*siterag.SourceText{{Name: "a.txt", Text: "hello"}})

		require.NoError(t, err)
		assert.Equal(t, 0, result.Stored)
		assert.Equal(t, 1, result.Failed)
	})

	t.Run("rebuild deletes existing records of a reused collection", func(t *testing.T) {
		t.Parallel()

		mem := &memCollection{records: []*siterag.Record{{ID: "old-1"}, {ID: "old-2"}}}
		ix := &index.Indexer{
			Embedder:   lengthEmbedder(),
			Store:      store(mem.mock("docs"), false),
			Collection: "docs",
			Chunk:      smallChunks,
			Mode:       index.ModeRebuild,
			NewID:      sequentialIDs(),
		}

		result, err := ix.Index(context.Background(), []*siterag.SourceText{{Name: "a.txt", Text: "hello"}})

		require.NoError(t, err)
		assert.Equal(t, 2, result.Removed)
		assert.Equal(t, []string{"old-1", "old-2"}, mem.deleted)
		require.Len(t, mem.records, 1)
		assert.Equal(t, "id-1", mem.records[0].ID)
	})

	t.Run("append keeps existing records", func(t *testing.T) {
		t.Parallel()

		mem := &memCollection{records: []*siterag.Record{{ID: "old-1"}}}
		ix := &index.Indexer{
			Embedder:   lengthEmbedder(),
			Store:      store(mem.mock("docs"), false),
			Collection: "docs",
			Chunk:      smallChunks,
		}

		result, err := ix.Index(context.Background(), []*siterag.SourceText{{Name: "a.txt", Text: "hello"}})

		require.NoError(t, err)
		assert.Zero(t, result.Removed)
		assert.Empty(t, mem.deleted)
		assert.Len(t, mem.records, 2)
	})

	t.Run("rebuild of a new collection deletes nothing", func(t *testing.T) {
		t.Parallel()

		coll := (&memCollection{}).mock("docs")
		coll.ListIDsFn = func(context.Context) ([]string, error) {
			t.Fatal("ListIDs must not be called for a new collection")
			return nil, nil
		}
		ix := &index.Indexer{
			Embedder:   lengthEmbedder(),
			Store:      store(coll, true),
			Collection: "docs",
			Chunk:      smallChunks,
			Mode:       index.ModeRebuild,
		}

		_, err := ix.Index(context.Background(), []*siterag.SourceText{{Name: "a.txt", Text: "hello"}})

		require.NoError(t, err)
	})

	t.Run("dedup skips repeated chunk content", func(t *testing.T) {
		t.Parallel()

		mem := &memCollection{}
		ix := &index.Indexer{
			Embedder:   lengthEmbedder(),
			Store:      store(mem.mock("docs"), true),
			Collection: "docs",
			Chunk:      siterag.ChunkOptions{Size: 100, Overlap: 0},
			Dedup:      true,
		}
		sources := []*siterag.SourceText{
			{Name: "a.txt", Text: "shared footer"},
			{Name: "b.txt", Text: "shared footer"},
			{Name: "c.txt", Text: "unique"},
		}

		result, err := ix.Index(context.Background(), sources)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Stored)
		assert.Equal(t, 1, result.Skipped)
	})

	t.Run("without dedup repeated content is stored", func(t *testing.T) {
		t.Parallel()

		mem := &memCollection{}
		ix := &index.Indexer{
			Embedder:   lengthEmbedder(),
			Store:      store(mem.mock("docs"), true),
			Collection: "docs",
			Chunk:      siterag.ChunkOptions{Size: 100, Overlap: 0},
		}
		sources := []*siterag.SourceText{
			{Name: "a.txt", Text: "same"},
			{Name: "b.txt", Text: "same"},
		}

		result, err := ix.Index(context.Background(), sources)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Stored)
	})

	t.Run("totals tokens of stored chunks", func(t *testing.T) {
		t.Parallel()

		mem := &memCollection{}
		ix := &index.Indexer{
			Embedder:   lengthEmbedder(),
			Store:      store(mem.mock("docs"), true),
			Collection: "docs",
			Chunk:      siterag.ChunkOptions{Size: 100, Overlap: 0},
			TokenCounter: &mock.TokenCounter{
				CountTokensFn: func(_ context.Context, text string) (int, error) {
					return len(strings.Fields(text)), nil
				},
			},
		}

		result, err := ix.Index(context.Background(), []*siterag.SourceText{
			{Name: "a.txt", Text: "one two three"},
			{Name: "b.txt", Text: "four five"},
		})

		require.NoError(t, err)
		assert.Equal(t, 5, result.Tokens)
	})

	t.Run("sources without usable chunks store nothing", func(t *testing.T) {
		t.Parallel()

		mem := &memCollection{}
		ix := &index.Indexer{
			Embedder:   lengthEmbedder(),
			Store:      store(mem.mock("docs"), true),
			Collection: "docs",
			Chunk:      siterag.ChunkOptions{Size: 100, Overlap: 10, MinSize: 50},
		}

		result, err := ix.Index(context.Background(), []*siterag.SourceText{{Name: "a.txt", Text: "tiny"}})

		require.NoError(t, err)
		assert.Zero(t, result.Chunks)
		assert.Empty(t, mem.records)
	})

	t.Run("returns not found without sources", func(t *testing.T) {
		t.Parallel()

		ix := &index.Indexer{Collection: "docs", Chunk: smallChunks}
		_, err := ix.Index(context.Background(), nil)

		assert.Equal(t, siterag.ENOTFOUND, siterag.ErrorCode(err))
	})

	t.Run("rejects invalid chunk options before touching the store", func(t *testing.T) {
		t.Parallel()

		ix := &index.Indexer{
			Store:      &mock.VectorStore{},
			Collection: "docs",
			Chunk:      siterag.ChunkOptions{Size: 10, Overlap: 10},
		}
		_, err := ix.Index(context.Background(), []*siterag.SourceText{{Name: "a.txt", Text: "x"}})

		assert.Equal(t, siterag.EINVALID, siterag.ErrorCode(err))
	})

	t.Run("returns store errors", func(t *testing.T) {
		t.Parallel()

		ix := &index.Indexer{
			Store: &mock.VectorStore{
				GetOrCreateCollectionFn: func(_ context.Context, _ string) (siterag.Collection, bool, error) {
					return nil, false, errors.New("connection refused")
				},
			},
			Collection: "docs",
			Chunk:      smallChunks,
		}
		_, err := ix.Index(context.Background(), []*siterag.SourceText{{Name: "a.txt", Text: "x"}})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("stops when the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		ix := &index.Indexer{
			Embedder:   lengthEmbedder(),
			Store:      store((&memCollection{}).mock("docs"), true),
			Collection: "docs",
			Chunk:      smallChunks,
		}

		_, err := ix.Index(ctx, []*siterag.SourceText{{Name: "a.txt", Text: "hello"}})

		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	m, err := index.ParseMode("rebuild")
	require.NoError(t, err)
	assert.Equal(t, index.ModeRebuild, m)

	m, err = index.ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, index.ModeAppend, m)

	_, err = index.ParseMode("replace")
	assert.Equal(t, siterag.EINVALID, siterag.ErrorCode(err))
}
