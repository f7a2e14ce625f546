package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/siterag"
)

// Ensure the decorators implement their interfaces.
var (
	_ siterag.Retriever = (*LoggingRetriever)(nil)
	_ siterag.Asker     = (*LoggingAsker)(nil)
)

// LoggingRetriever wraps a Retriever with logging.
type LoggingRetriever struct {
	next   siterag.Retriever
	logger *slog.Logger
}

// NewLoggingRetriever creates a new LoggingRetriever.
func NewLoggingRetriever(next siterag.Retriever, logger *slog.Logger) *LoggingRetriever {
	return &LoggingRetriever{next: next, logger: logger}
}

// Retrieve delegates to the wrapped retriever and logs the best score.
func (r *LoggingRetriever) Retrieve(ctx context.Context, query string, topK int) (chunks []siterag.ScoredChunk, err error) {
	defer func(begin time.Time) {
		var best float64
		if len(chunks) > 0 {
			best = chunks[0].Score
		}
		r.logger.Info("retrieve",
			"topK", topK,
			"count", len(chunks),
			"best", best,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Retrieve(ctx, query, topK)
}

// LoggingAsker wraps an Asker with logging.
type LoggingAsker struct {
	next   siterag.Asker
	logger *slog.Logger
}

// NewLoggingAsker creates a new LoggingAsker.
func NewLoggingAsker(next siterag.Asker, logger *slog.Logger) *LoggingAsker {
	return &LoggingAsker{next: next, logger: logger}
}

// Ask delegates to the wrapped asker and logs the call.
func (a *LoggingAsker) Ask(ctx context.Context, question string, history []siterag.Turn) (answer *siterag.Answer, err error) {
	defer func(begin time.Time) {
		var sources int
		if answer != nil {
			sources = len(answer.Sources)
		}
		a.logger.Info("ask",
			"history", len(history),
			"sources", sources,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return a.next.Ask(ctx, question, history)
}
