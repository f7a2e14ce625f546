// Package gemini implements embedding, answering and token counting with
// Google Gemini.
package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/siterag"
	"google.golang.org/genai"
)

// DefaultModel is the generation model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

var _ siterag.Asker = (*Asker)(nil)

// Asker answers questions from the chunks a Retriever finds.
type Asker struct {
	client    *genai.Client
	retriever siterag.Retriever

	// Model names the Gemini generation model.
	Model string
	// TopK is the number of chunks retrieved per question.
	TopK int
	// PromptChunks is how many of the best chunks go into the prompt.
	PromptChunks int
}

// NewAsker creates an Asker with default retrieval settings.
func NewAsker(client *genai.Client, retriever siterag.Retriever) *Asker {
	return &Asker{
		client:       client,
		retriever:    retriever,
		Model:        DefaultModel,
		TopK:         siterag.DefaultTopK,
		PromptChunks: siterag.DefaultPromptChunks,
	}
}

// Ask retrieves the chunks closest to question, builds a prompt from the
// best of them and the conversation so far, and returns the model's answer
// with the chunks it was given. With no matching chunks the model still
// answers from an empty context.
func (a *Asker) Ask(ctx context.Context, question string, history []siterag.Turn) (*siterag.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, siterag.Errorf(siterag.EINVALID, "question required")
	}
	if a.PromptChunks <= 0 {
		return nil, siterag.Errorf(siterag.EINVALID, "prompt chunks must be positive, got %d", a.PromptChunks)
	}

	ranked, err := a.retriever.Retrieve(ctx, question, a.TopK)
	if err != nil {
		return nil, err
	}
	used := ranked[:min(a.PromptChunks, len(ranked))]
	prompt := BuildPrompt(siterag.TopContexts(used, len(used)), question, history)

	if a.client == nil {
		return nil, siterag.Errorf(siterag.EINVALID, "gemini client required")
	}
	result, err := a.client.Models.GenerateContent(ctx, a.Model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		BuildConfig(),
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, siterag.Errorf(siterag.EINTERNAL, "gemini returned nil result")
	}

	return &siterag.Answer{
		Text:    strings.TrimSpace(result.Text()),
		Sources: used,
	}, nil
}

// BuildConfig returns the GenerateContentConfig for answer generation.
// The instructions travel in the prompt itself.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.4)
	return &genai.GenerateContentConfig{Temperature: &temp}
}

// BuildPrompt lays out the conversation history, the retrieved context and
// the question for the model.
func BuildPrompt(contexts []string, question string, history []siterag.Turn) string {
	var sb strings.Builder
	sb.WriteString("You are a knowledgeable assistant.\n\nConversation history:\n")
	sb.WriteString(siterag.FormatHistory(history))
	sb.WriteString("\nContext:\n\"\"\"\n")
	sb.WriteString(siterag.FormatContext(contexts))
	sb.WriteString("\n\"\"\"\n\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString(`

Instructions:
- Do NOT mention that the answer is based on the provided context.
- If the context lacks the answer, give your best informed response.

Answer:
`)
	return sb.String()
}
