package siterag

import "strings"

// ContextSeparator separates chunks in prompt context.
const ContextSeparator = "\n\n---\n\n"

// TopContexts returns the text of the first n ranked chunks.
func TopContexts(chunks []ScoredChunk, n int) []string {
	n = min(n, len(chunks))
	if n <= 0 {
		return nil
	}
	texts := make([]string, 0, n)
	for _, c := range chunks[:n] {
		texts = append(texts, c.Candidate.Text)
	}
	return texts
}

// FormatContext joins chunk texts for LLM context.
func FormatContext(texts []string) string {
	return strings.Join(texts, ContextSeparator)
}

// FormatHistory renders earlier turns of a conversation, one line per message.
func FormatHistory(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, t := range turns {
		sb.WriteString("You: ")
		sb.WriteString(t.Question)
		sb.WriteString("\nBot: ")
		sb.WriteString(t.Answer)
		sb.WriteString("\n")
	}
	return sb.String()
}
