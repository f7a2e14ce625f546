// Package qdrant implements siterag.VectorStore on a Qdrant server.
package qdrant

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/fwojciec/siterag"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// Payload keys of a stored point. Record metadata is stored alongside them
// under its own keys.
const (
	PayloadText = "text"
)

// DefaultPort is Qdrant's gRPC port.
const DefaultPort = 6334

// scrollPage is the number of points fetched per Scroll call.
const scrollPage = 256

// Compile-time interface verification.
var (
	_ siterag.VectorStore = (*Store)(nil)
	_ siterag.Collection  = (*Collection)(nil)
)

// Store implements siterag.VectorStore on Qdrant collections using cosine
// distance.
type Store struct {
	client *qdrant.Client
}

// NewStore creates a new Store.
func NewStore(client *qdrant.Client) *Store {
	return &Store{client: client}
}

// Open connects to the Qdrant server at host:port.
func Open(host string, port int) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}
	return NewStore(client), nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// GetOrCreateCollection returns the named collection. A missing collection
// is reported as created, but the Qdrant collection itself is only created
// on the first Upsert, once the vector dimension is known.
func (s *Store) GetOrCreateCollection(ctx context.Context, name string) (siterag.Collection, bool, error) {
	if name == "" {
		return nil, false, siterag.Errorf(siterag.EINVALID, "collection name required")
	}
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return &Collection{client: s.client, name: name, exists: exists}, !exists, nil
}

// FindCollection returns the named collection or ENOTFOUND.
func (s *Store) FindCollection(ctx context.Context, name string) (siterag.Collection, error) {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, siterag.Errorf(siterag.ENOTFOUND, "collection %q not found", name)
	}
	return &Collection{client: s.client, name: name, exists: true}, nil
}

// Collection is a Qdrant collection.
type Collection struct {
	client *qdrant.Client
	name   string

	mu     sync.Mutex
	exists bool
}

// Name returns the collection's name.
func (c *Collection) Name() string {
	return c.name
}

// Upsert inserts rec or replaces the point with the same ID. Record IDs
// must be UUIDs.
func (c *Collection) Upsert(ctx context.Context, rec *siterag.Record) error {
	point, err := PointFromRecord(rec)
	if err != nil {
		return err
	}
	if err := c.ensure(ctx, uint64(len(rec.Vector))); err != nil {
		return err
	}
	_, err = c.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: c.name,
		Wait:           qdrant.PtrOf(true),
		Points:         []*qdrant.PointStruct{point},
	})
	return err
}

// ensure creates the Qdrant collection with the given dimension if it does
// not exist yet.
func (c *Collection) ensure(ctx context.Context, dim uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exists {
		return nil
	}
	err := c.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: c.name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dim,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %q: %w", c.name, err)
	}
	c.exists = true
	return nil
}

func (c *Collection) created() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exists
}

// Query returns up to topK points nearest to vector with their payloads
// and vectors.
func (c *Collection) Query(ctx context.Context, vector []float32, topK int) ([]*siterag.Candidate, error) {
	if topK <= 0 {
		return nil, siterag.Errorf(siterag.EINVALID, "topK must be positive, got %d", topK)
	}
	if !c.created() {
		return []*siterag.Candidate{}, nil
	}

	points, err := c.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: c.name,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		return nil, err
	}

	out := make([]*siterag.Candidate, 0, len(points))
	for _, p := range points {
		out = append(out, CandidateFromPoint(p.GetId(), p.GetPayload(), p.GetVectors().GetVector().GetData()))
	}
	return out, nil
}

// Count returns the exact number of points in the collection.
func (c *Collection) Count(ctx context.Context) (int, error) {
	if !c.created() {
		return 0, nil
	}
	n, err := c.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: c.name,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ListIDs returns every point ID, scrolling through the collection page
// by page.
func (c *Collection) ListIDs(ctx context.Context) ([]string, error) {
	if !c.created() {
		return nil, nil
	}

	var (
		ids    []string
		offset *qdrant.PointId
	)
	for {
		// Offsets are inclusive: one extra point marks where the next page starts.
		points, err := c.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: c.name,
			Offset:         offset,
			Limit:          qdrant.PtrOf(uint32(scrollPage + 1)),
			WithPayload:    qdrant.NewWithPayload(false),
			WithVectors:    qdrant.NewWithVectors(false),
		})
		if err != nil {
			return nil, err
		}
		page := points
		if len(points) > scrollPage {
			page = points[:scrollPage]
		}
		for _, p := range page {
			ids = append(ids, PointIDString(p.GetId()))
		}
		if len(points) <= scrollPage {
			return ids, nil
		}
		offset = points[scrollPage].GetId()
	}
}

// Delete removes the points with the given IDs.
func (c *Collection) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 || !c.created() {
		return nil
	}
	pointIDs := make([]*qdrant.PointId, 0, len(ids))
	for _, id := range ids {
		pid, err := ParsePointID(id)
		if err != nil {
			return err
		}
		pointIDs = append(pointIDs, pid)
	}
	_, err := c.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: c.name,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrant.NewPointsSelector(pointIDs...),
	})
	return err
}

// ParsePointID converts a record ID into a Qdrant point ID. Qdrant only
// accepts UUIDs and unsigned integers.
func ParsePointID(id string) (*qdrant.PointId, error) {
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		return qdrant.NewIDNum(n), nil
	}
	u, err := uuid.Parse(id)
	if err != nil {
		return nil, siterag.Errorf(siterag.EINVALID, "record ID %q is not a UUID", id)
	}
	return qdrant.NewID(u.String()), nil
}

// PointIDString returns the record ID of a point.
func PointIDString(id *qdrant.PointId) string {
	if u := id.GetUuid(); u != "" {
		return u
	}
	return strconv.FormatUint(id.GetNum(), 10)
}

// PointFromRecord builds the point stored for rec.
func PointFromRecord(rec *siterag.Record) (*qdrant.PointStruct, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	id, err := ParsePointID(rec.ID)
	if err != nil {
		return nil, err
	}
	if _, ok := rec.Metadata[PayloadText]; ok {
		return nil, siterag.Errorf(siterag.EINVALID, "metadata key %q is reserved", PayloadText)
	}

	payload := make(map[string]any, len(rec.Metadata)+1)
	for k, v := range rec.Metadata {
		payload[k] = v
	}
	payload[PayloadText] = rec.Text

	return &qdrant.PointStruct{
		Id:      id,
		Vectors: qdrant.NewVectorsDense(rec.Vector),
		Payload: qdrant.NewValueMap(payload),
	}, nil
}

// CandidateFromPoint rebuilds a candidate from a point's ID, payload and
// vector. Non-string payload values are ignored.
func CandidateFromPoint(id *qdrant.PointId, payload map[string]*qdrant.Value, vector []float32) *siterag.Candidate {
	cand := &siterag.Candidate{
		ID:       PointIDString(id),
		Metadata: make(map[string]string, len(payload)),
		Vector:   vector,
	}
	for k, v := range payload {
		s, ok := v.GetKind().(*qdrant.Value_StringValue)
		if !ok {
			continue
		}
		if k == PayloadText {
			cand.Text = s.StringValue
			continue
		}
		cand.Metadata[k] = s.StringValue
	}
	return cand
}
