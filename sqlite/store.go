package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/siterag"
)

// deleteBatch bounds the number of parameters in one DELETE statement.
const deleteBatch = 500

// Compile-time interface verification.
var (
	_ siterag.VectorStore = (*Store)(nil)
	_ siterag.Collection  = (*Collection)(nil)
)

// Store implements siterag.VectorStore on SQLite. Queries scan every
// vector of the collection, which is fine for the size of a single site.
type Store struct {
	db *DB
}

// NewStore creates a new Store.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// GetOrCreateCollection returns the named collection, creating it if needed.
func (s *Store) GetOrCreateCollection(ctx context.Context, name string) (siterag.Collection, bool, error) {
	if name == "" {
		return nil, false, siterag.Errorf(siterag.EINVALID, "collection name required")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO collections (name, created_at) VALUES (?, ?)`,
		name, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return nil, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}

	c, err := s.find(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return c, n == 1, nil
}

// FindCollection returns the named collection or ENOTFOUND.
func (s *Store) FindCollection(ctx context.Context, name string) (siterag.Collection, error) {
	return s.find(ctx, name)
}

func (s *Store) find(ctx context.Context, name string) (*Collection, error) {
	c := &Collection{db: s.db, name: name}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, dimension FROM collections WHERE name = ?`, name,
	).Scan(&c.id, &c.dim)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, siterag.Errorf(siterag.ENOTFOUND, "collection %q not found", name)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Collection is a named set of records in a Store.
type Collection struct {
	db   *DB
	id   int64
	name string

	mu  sync.Mutex
	dim int // 0 until the first record is stored
}

// Name returns the collection's name.
func (c *Collection) Name() string {
	return c.name
}

// Upsert inserts rec or replaces the record with the same ID. Every vector
// in a collection must have the dimension of the first one stored.
func (c *Collection) Upsert(ctx context.Context, rec *siterag.Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	if err := c.checkDimension(ctx, len(rec.Vector)); err != nil {
		return err
	}

	metadata, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if rec.Metadata == nil {
		metadata = []byte("{}")
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO records (collection_id, id, text, metadata, vector)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (collection_id, id) DO UPDATE SET
			text = excluded.text,
			metadata = excluded.metadata,
			vector = excluded.vector
	`, c.id, rec.ID, rec.Text, string(metadata), encodeVector(rec.Vector))
	return err
}

// checkDimension fixes the collection's dimension on first use and rejects
// vectors of any other length afterwards.
func (c *Collection) checkDimension(ctx context.Context, dim int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dim == 0 {
		if _, err := c.db.ExecContext(ctx,
			`UPDATE collections SET dimension = ? WHERE id = ? AND dimension = 0`, dim, c.id,
		); err != nil {
			return err
		}
		if err := c.db.QueryRowContext(ctx,
			`SELECT dimension FROM collections WHERE id = ?`, c.id,
		).Scan(&c.dim); err != nil {
			return err
		}
	}
	if dim != c.dim {
		return siterag.Errorf(siterag.EINVALID, "vector dimension %d does not match collection dimension %d", dim, c.dim)
	}
	return nil
}

// Query returns up to topK records by descending cosine similarity to
// vector. Records with equal scores keep insertion order.
func (c *Collection) Query(ctx context.Context, vector []float32, topK int) ([]*siterag.Candidate, error) {
	if topK <= 0 {
		return nil, siterag.Errorf(siterag.EINVALID, "topK must be positive, got %d", topK)
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT id, text, metadata, vector
		FROM records
		WHERE collection_id = ?
		ORDER BY seq
	`, c.id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type scored struct {
		cand  *siterag.Candidate
		score float64
	}
	var all []scored
	for rows.Next() {
		var (
			cand     siterag.Candidate
			metadata string
			blob     []byte
		)
		if err := rows.Scan(&cand.ID, &cand.Text, &metadata, &blob); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(metadata), &cand.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata of %s: %w", cand.ID, err)
		}
		if cand.Vector, err = decodeVector(blob); err != nil {
			return nil, fmt.Errorf("decoding vector of %s: %w", cand.ID, err)
		}
		all = append(all, scored{cand: &cand, score: siterag.CosineSimilarity(vector, cand.Vector)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(all, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return 0
	})

	out := make([]*siterag.Candidate, 0, min(topK, len(all)))
	for _, s := range all[:min(topK, len(all))] {
		out = append(out, s.cand)
	}
	return out, nil
}

// Count returns the number of records in the collection.
func (c *Collection) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE collection_id = ?`, c.id,
	).Scan(&n)
	return n, err
}

// ListIDs returns every record ID in insertion order.
func (c *Collection) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id FROM records WHERE collection_id = ? ORDER BY seq`, c.id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes the records with the given IDs.
func (c *Collection) Delete(ctx context.Context, ids []string) error {
	for batch := range slices.Chunk(ids, deleteBatch) {
		args := make([]any, 0, len(batch)+1)
		args = append(args, c.id)
		for _, id := range batch {
			args = append(args, id)
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(batch)), ",")
		if _, err := c.db.ExecContext(ctx,
			`DELETE FROM records WHERE collection_id = ? AND id IN (`+placeholders+`)`, args...,
		); err != nil {
			return err
		}
	}
	return nil
}
