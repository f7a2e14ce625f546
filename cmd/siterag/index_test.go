package main_test

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/fwojciec/siterag"
	main "github.com/fwojciec/siterag/cmd/siterag"
	"github.com/fwojciec/siterag/index"
	"github.com/fwojciec/siterag/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore returns a VectorStore holding one collection whose records are
// kept in ids. existing reports whether the collection exists up front.
func memStore(ids *[]string, existing bool) *mock.VectorStore {
	coll := &mock.Collection{
		NameFn: func() string { return siterag.DefaultCollection },
		UpsertFn: func(_ context.Context, rec *siterag.Record) error {
			*ids = append(*ids, rec.ID)
			return nil
		},
		ListIDsFn: func(context.Context) ([]string, error) {
			return append([]string(nil), *ids...), nil
		},
		DeleteFn: func(_ context.Context, del []string) error {
			*ids = (*ids)[len(del):]
			return nil
		},
	}
	return &mock.VectorStore{
		GetOrCreateCollectionFn: func(context.Context, string) (siterag.Collection, bool, error) {
			return coll, !existing, nil
		},
	}
}

func newIndexDeps(sources []*siterag.SourceText, store siterag.VectorStore) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	n := 0
	return &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
		Config: siterag.DefaultConfig(),
		Source: &mock.PageSource{
			LoadPagesFn: func(context.Context) ([]*siterag.SourceText, error) {
				if sources == nil {
					return nil, siterag.Errorf(siterag.ENOTFOUND, "no pages found in pages")
				}
				return sources, nil
			},
		},
		Indexer: &index.Indexer{
			Embedder: &mock.Embedder{
				EmbedFn: func(context.Context, string) ([]float32, error) {
					return []float32{1, 0}, nil
				},
			},
			Store: store,
			NewID: func() string { n++; return "id-" + strconv.Itoa(n) },
		},
	}, stdout, stderr
}

func newIndexCmd() *main.IndexCmd {
	return &main.IndexCmd{
		PagesDir:     "pages",
		ChunkSize:    siterag.DefaultChunkSize,
		ChunkOverlap: siterag.DefaultChunkOverlap,
		MinChunkSize: siterag.DefaultMinChunkSize,
	}
}

func TestIndexCmd_Run(t *testing.T) {
	t.Parallel()

	page := strings.Repeat("word ", 60)

	t.Run("indexes every saved page", func(t *testing.T) {
		t.Parallel()

		var ids []string
		sources := []*siterag.SourceText{{Name: "a.txt", Text: page}, {Name: "b.txt", Text: page + "more"}}
		deps, stdout, _ := newIndexDeps(sources, memStore(&ids, false))

		err := newIndexCmd().Run(deps)

		require.NoError(t, err)
		assert.Len(t, ids, 2)
		assert.Contains(t, stdout.String(), "Loaded 2 pages from pages")
		assert.Contains(t, stdout.String(), `Indexed 2 of 2 chunks into "site_documents"`)
	})

	t.Run("rebuild removes existing records", func(t *testing.T) {
		t.Parallel()

		ids := []string{"old-1", "old-2"}
		deps, stdout, _ := newIndexDeps([]*siterag.SourceText{{Name: "a.txt", Text: page}}, memStore(&ids, true))
		cmd := newIndexCmd()
		cmd.Mode = "rebuild"

		require.NoError(t, cmd.Run(deps))

		assert.Equal(t, index.ModeRebuild, deps.Indexer.Mode)
		assert.Equal(t, []string{"id-1"}, ids)
		assert.Contains(t, stdout.String(), "Removed 2 existing chunks")
	})

	t.Run("append keeps existing records", func(t *testing.T) {
		t.Parallel()

		ids := []string{"old-1"}
		deps, _, _ := newIndexDeps([]*siterag.SourceText{{Name: "a.txt", Text: page}}, memStore(&ids, true))

		require.NoError(t, newIndexCmd().Run(deps))

		assert.Equal(t, []string{"old-1", "id-1"}, ids)
	})

	t.Run("dedup skips repeated chunks", func(t *testing.T) {
		t.Parallel()

		var ids []string
		sources := []*siterag.SourceText{{Name: "a.txt", Text: page}, {Name: "b.txt", Text: page}}
		deps, stdout, _ := newIndexDeps(sources, memStore(&ids, false))
		cmd := newIndexCmd()
		cmd.Dedup = true

		require.NoError(t, cmd.Run(deps))

		assert.Len(t, ids, 1)
		assert.Contains(t, stdout.String(), "1 duplicate chunks skipped")
	})

	t.Run("suggests crawling when no pages are saved", func(t *testing.T) {
		t.Parallel()

		var ids []string
		deps, _, stderr := newIndexDeps(nil, memStore(&ids, false))

		err := newIndexCmd().Run(deps)

		require.Error(t, err)
		assert.Equal(t, siterag.ENOTFOUND, siterag.ErrorCode(err))
		assert.Contains(t, stderr.String(), "siterag crawl")
	})

	t.Run("rejects overlap not smaller than chunk size", func(t *testing.T) {
		t.Parallel()

		var ids []string
		deps, _, stderr := newIndexDeps([]*siterag.SourceText{{Name: "a.txt", Text: page}}, memStore(&ids, false))
		cmd := newIndexCmd()
		cmd.ChunkOverlap = cmd.ChunkSize

		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, siterag.EINVALID, siterag.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error:")
		assert.Empty(t, ids)
	})
}
