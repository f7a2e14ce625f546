package siterag

import (
	"context"
	"strings"
)

// Chunk represents a window of a source document prepared for embedding and retrieval.
type Chunk struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Position int    `json:"position"`
	Content  string `json:"content"`
	Hash     string `json:"hash,omitempty"`
}

// ChunkOptions configures ChunkText.
type ChunkOptions struct {
	// Size is the window length in characters.
	Size int
	// Overlap is the number of characters shared by consecutive windows.
	Overlap int
	// MinSize drops trimmed windows shorter than this many characters.
	MinSize int
}

// Validate returns an error if the options would never advance the window.
func (o ChunkOptions) Validate() error {
	if o.Size <= 0 {
		return Errorf(EINVALID, "chunk size must be positive, got %d", o.Size)
	}
	if o.Overlap < 0 {
		return Errorf(EINVALID, "chunk overlap must not be negative, got %d", o.Overlap)
	}
	if o.Overlap >= o.Size {
		return Errorf(EINVALID, "chunk overlap (%d) must be smaller than chunk size (%d)", o.Overlap, o.Size)
	}
	if o.MinSize < 0 {
		return Errorf(EINVALID, "minimum chunk size must not be negative, got %d", o.MinSize)
	}
	return nil
}

// ChunkText splits text into windows of opts.Size characters, each starting
// opts.Size-opts.Overlap characters after the previous one. Windows are
// trimmed of surrounding whitespace and dropped when empty or shorter than
// opts.MinSize. Chunks are returned in source order.
func ChunkText(text string, opts ChunkOptions) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	runes := []rune(text)
	step := opts.Size - opts.Overlap

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := min(start+opts.Size, len(runes))
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk == "" || len([]rune(chunk)) < opts.MinSize {
			continue
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// SourceText is a saved page read back for indexing.
type SourceText struct {
	// Name identifies the originating document (e.g., the saved file name).
	Name string
	Text string
}

// PageSource loads previously saved pages.
type PageSource interface {
	// LoadPages returns every saved page.
	// Returns ENOTFOUND if there is nothing to load.
	LoadPages(ctx context.Context) ([]*SourceText, error)
}
