package slog

import (
	"log/slog"

	"github.com/fwojciec/siterag"
)

// Ensure LoggingLinkExtractor implements siterag.LinkExtractor.
var _ siterag.LinkExtractor = (*LoggingLinkExtractor)(nil)

// LoggingLinkExtractor wraps a LinkExtractor with debug logging.
type LoggingLinkExtractor struct {
	next   siterag.LinkExtractor
	logger *slog.Logger
}

// NewLoggingLinkExtractor creates a new LoggingLinkExtractor.
func NewLoggingLinkExtractor(next siterag.LinkExtractor, logger *slog.Logger) *LoggingLinkExtractor {
	return &LoggingLinkExtractor{next: next, logger: logger}
}

// ExtractLinks delegates to the wrapped extractor and logs how many
// in-scope links the page yielded.
func (e *LoggingLinkExtractor) ExtractLinks(html, pageURL, baseHost string) (links []string, err error) {
	defer func() {
		e.logger.Debug("links extracted",
			"url", pageURL,
			"count", len(links),
			"err", err,
		)
	}()
	return e.next.ExtractLinks(html, pageURL, baseHost)
}
