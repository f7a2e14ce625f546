package siterag

import "context"

// Turn is one question and its answer in a conversation.
type Turn struct {
	Question string
	Answer   string
}

// Answer is the response to a question together with the chunks it was based on.
type Answer struct {
	Text    string
	Sources []ScoredChunk
}

// Asker answers natural language questions about the indexed site.
type Asker interface {
	// Ask answers question, taking earlier turns of the conversation into account.
	// Returns EINVALID if the question is empty.
	Ask(ctx context.Context, question string, history []Turn) (*Answer, error)
}

// Conversation records the most recent turns of a chat.
// Older turns are dropped once MaxTurns is reached.
type Conversation struct {
	MaxTurns int
	turns    []Turn
}

// NewConversation returns a Conversation keeping at most maxTurns turns.
// A maxTurns of zero keeps no history.
func NewConversation(maxTurns int) *Conversation {
	return &Conversation{MaxTurns: maxTurns}
}

// Add appends a turn, evicting the oldest turns beyond MaxTurns.
func (c *Conversation) Add(question, answer string) {
	if c.MaxTurns <= 0 {
		return
	}
	c.turns = append(c.turns, Turn{Question: question, Answer: answer})
	if over := len(c.turns) - c.MaxTurns; over > 0 {
		c.turns = append([]Turn(nil), c.turns[over:]...)
	}
}

// Turns returns a copy of the retained turns, oldest first.
func (c *Conversation) Turns() []Turn {
	return append([]Turn(nil), c.turns...)
}
