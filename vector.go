package siterag

import (
	"context"
	"math"
)

// Metadata keys attached to stored chunks.
const (
	MetadataSource   = "source"
	MetadataPosition = "position"
	MetadataHash     = "hash"
)

// Record is the unit written to a vector collection.
type Record struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Vector   []float32         `json:"vector"`
}

// Validate returns an error if the record contains invalid fields.
func (r *Record) Validate() error {
	if r.ID == "" {
		return Errorf(EINVALID, "record ID required")
	}
	if r.Text == "" {
		return Errorf(EINVALID, "record text required")
	}
	if len(r.Vector) == 0 {
		return Errorf(EINVALID, "record vector required")
	}
	return nil
}

// Candidate is a record returned by a collection query, in the store's own order.
type Candidate struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Vector   []float32         `json:"vector"`
}

// Source returns the originating document of the candidate, or "unknown".
func (c *Candidate) Source() string {
	if s := c.Metadata[MetadataSource]; s != "" {
		return s
	}
	return "unknown"
}

// ScoredChunk is a candidate with its recomputed similarity to a query.
type ScoredChunk struct {
	Candidate *Candidate `json:"candidate"`
	Score     float64    `json:"score"`
}

// Embedder maps text to a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorStore provides named collections of vectors.
type VectorStore interface {
	// GetOrCreateCollection returns the named collection, creating it when
	// missing. The bool result is true if the collection was created.
	GetOrCreateCollection(ctx context.Context, name string) (Collection, bool, error)

	// FindCollection returns the named collection.
	// Returns ENOTFOUND if the collection does not exist.
	FindCollection(ctx context.Context, name string) (Collection, error)
}

// Collection is a keyed set of records with nearest-neighbor query.
type Collection interface {
	// Name returns the collection's name.
	Name() string

	// Upsert inserts the record or replaces the record with the same ID.
	Upsert(ctx context.Context, rec *Record) error

	// Query returns up to topK records nearest to vector by the store's own
	// metric. Text, metadata and vectors are always populated.
	Query(ctx context.Context, vector []float32, topK int) ([]*Candidate, error)

	// Count returns the number of records.
	Count(ctx context.Context) (int, error)

	// ListIDs returns the IDs of all records.
	ListIDs(ctx context.Context) ([]string, error)

	// Delete removes the records with the given IDs. Unknown IDs are ignored.
	Delete(ctx context.Context, ids []string) error
}

// Retriever finds the chunks most relevant to a query.
type Retriever interface {
	// Retrieve returns candidates ranked by descending score.
	Retrieve(ctx context.Context, query string, topK int) ([]ScoredChunk, error)
}

// scorePrecision is the number of decimal places kept in a similarity score.
// Parallel vectors of different magnitude then score exactly equal.
const scorePrecision = 1e12

// CosineSimilarity returns dot(a, b) / (|a| * |b|) rounded to 12 decimal
// places. It returns 0 when either vector has zero norm or the dimensions
// differ.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return math.Round(dot/math.Sqrt(normA*normB)*scorePrecision) / scorePrecision
}
