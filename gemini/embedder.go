package gemini

import (
	"context"

	"github.com/fwojciec/siterag"
	"google.golang.org/genai"
)

// DefaultEmbeddingModel is the embedding model used when none is configured.
const DefaultEmbeddingModel = "text-embedding-004"

// Task types tell the embedding model which side of retrieval a text is on.
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

var _ siterag.Embedder = (*Embedder)(nil)

// Embedder implements siterag.Embedder with the Gemini embedding API.
// Documents and queries should use separate Embedders whose TaskType
// matches their role.
type Embedder struct {
	client *genai.Client

	Model    string
	TaskType string
}

// NewEmbedder creates an Embedder for the given task type.
func NewEmbedder(client *genai.Client, taskType string) *Embedder {
	return &Embedder{client: client, Model: DefaultEmbeddingModel, TaskType: taskType}
}

// Embed returns the embedding of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, siterag.Errorf(siterag.EINVALID, "text required")
	}
	if e.client == nil {
		return nil, siterag.Errorf(siterag.EINVALID, "gemini client required")
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.Model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{TaskType: e.TaskType},
	)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, siterag.Errorf(siterag.EINTERNAL, "gemini returned no embedding")
	}
	return resp.Embeddings[0].Values, nil
}
