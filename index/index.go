// Package index turns saved pages into embedded chunks in a vector
// collection.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/siterag"
	"github.com/fwojciec/siterag/bloom"
	"github.com/google/uuid"
)

// dedupFalsePositiveRate is the Bloom filter error rate used for duplicate
// chunk detection. A false positive skips a chunk that was not a duplicate.
const dedupFalsePositiveRate = 0.001

// Mode selects what happens to records already in a reused collection.
type Mode int

const (
	// ModeAppend keeps existing records and adds the new ones.
	ModeAppend Mode = iota
	// ModeRebuild deletes existing records before adding the new ones.
	ModeRebuild
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeAppend:
		return "append"
	case ModeRebuild:
		return "rebuild"
	default:
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// ParseMode maps "append" and "rebuild" to their Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "append", "":
		return ModeAppend, nil
	case "rebuild":
		return ModeRebuild, nil
	}
	return 0, siterag.Errorf(siterag.EINVALID, "unknown index mode %q", s)
}

// Indexer chunks, embeds and stores source texts.
type Indexer struct {
	Embedder     siterag.Embedder
	Store        siterag.VectorStore
	TokenCounter siterag.TokenCounter // optional
	Logger       *slog.Logger

	// Collection names the target collection.
	Collection string
	Chunk      siterag.ChunkOptions
	Mode       Mode
	// Dedup skips chunks whose content was already stored in this run.
	Dedup bool

	// NewID generates record IDs. Defaults to random UUIDs.
	NewID func() string
}

// Result summarizes one indexing run.
type Result struct {
	Collection string
	Created    bool // the collection did not exist before
	Removed    int  // records deleted by ModeRebuild
	Sources    int
	Chunks     int
	Stored     int
	Failed     int
	Skipped    int // duplicate chunks
	Tokens     int
}

// Index stores every chunk of sources in the collection. A chunk that
// fails to embed or store is logged and counted; it never stops the run.
// Returns ENOTFOUND when there are no sources.
func (ix *Indexer) Index(ctx context.Context, sources []*siterag.SourceText) (*Result, error) {
	if len(sources) == 0 {
		return nil, siterag.Errorf(siterag.ENOTFOUND, "no documents to index")
	}
	if ix.Collection == "" {
		return nil, siterag.Errorf(siterag.EINVALID, "collection name required")
	}
	if err := ix.Chunk.Validate(); err != nil {
		return nil, err
	}
	logger := ix.logger()

	coll, created, err := ix.Store.GetOrCreateCollection(ctx, ix.Collection)
	if err != nil {
		return nil, fmt.Errorf("opening collection %q: %w", ix.Collection, err)
	}
	result := &Result{Collection: coll.Name(), Created: created, Sources: len(sources)}
	logger.Info("collection ready", "name", coll.Name(), "created", created, "mode", ix.Mode)

	if !created && ix.Mode == ModeRebuild {
		ids, err := coll.ListIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing existing records: %w", err)
		}
		if err := coll.Delete(ctx, ids); err != nil {
			return nil, fmt.Errorf("deleting existing records: %w", err)
		}
		result.Removed = len(ids)
		logger.Info("collection cleared", "removed", len(ids))
	}

	chunks, err := ix.chunkAll(sources)
	if err != nil {
		return nil, err
	}
	result.Chunks = len(chunks)
	logger.Info("chunked", "sources", len(sources), "chunks", len(chunks))

	var seen *bloom.Filter
	if ix.Dedup {
		seen = bloom.NewFilter(uint(len(chunks)), dedupFalsePositiveRate)
	}

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sum := xxhash.Sum64String(chunk.Content)
		if seen != nil && seen.TestAndAdd(sum) {
			result.Skipped++
			logger.Debug("duplicate chunk skipped", "source", chunk.Source, "position", chunk.Position)
			continue
		}
		chunk.Hash = strconv.FormatUint(sum, 16)

		if err := ix.store(ctx, coll, chunk); err != nil {
			result.Failed++
			logger.Warn("chunk failed", "source", chunk.Source, "position", chunk.Position, "err", err)
			continue
		}
		result.Stored++

		if ix.TokenCounter != nil {
			n, err := ix.TokenCounter.CountTokens(ctx, chunk.Content)
			if err != nil {
				logger.Debug("token count failed", "err", err)
			} else {
				result.Tokens += n
			}
		}

		if (i+1)%100 == 0 {
			logger.Info("indexed so far", "chunks", i+1, "of", len(chunks))
		}
	}

	logger.Info("indexing finished",
		"stored", result.Stored,
		"failed", result.Failed,
		"skipped", result.Skipped,
	)
	return result, nil
}

// chunkAll splits every source into chunks, in source order.
func (ix *Indexer) chunkAll(sources []*siterag.SourceText) ([]*siterag.Chunk, error) {
	var chunks []*siterag.Chunk
	for _, src := range sources {
		texts, err := siterag.ChunkText(src.Text, ix.Chunk)
		if err != nil {
			return nil, err
		}
		for pos, text := range texts {
			chunks = append(chunks, &siterag.Chunk{
				Source:   src.Name,
				Position: pos,
				Content:  text,
			})
		}
	}
	return chunks, nil
}

// store embeds one chunk and upserts it under a fresh ID.
func (ix *Indexer) store(ctx context.Context, coll siterag.Collection, chunk *siterag.Chunk) error {
	vec, err := ix.Embedder.Embed(ctx, chunk.Content)
	if err != nil {
		return fmt.Errorf("embedding: %w", err)
	}

	chunk.ID = ix.newID()
	rec := &siterag.Record{
		ID:   chunk.ID,
		Text: chunk.Content,
		Metadata: map[string]string{
			siterag.MetadataSource:   chunk.Source,
			siterag.MetadataPosition: strconv.Itoa(chunk.Position),
			siterag.MetadataHash:     chunk.Hash,
		},
		Vector: vec,
	}
	if err := coll.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("storing: %w", err)
	}
	return nil
}

func (ix *Indexer) newID() string {
	if ix.NewID != nil {
		return ix.NewID()
	}
	return uuid.NewString()
}

func (ix *Indexer) logger() *slog.Logger {
	if ix.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return ix.Logger
}
