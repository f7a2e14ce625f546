package siterag

import (
	"context"
	"strings"
)

// Page represents a fetched page.
type Page struct {
	URL     string
	Title   string
	Content string // title, blank line, main text
}

// PageContent joins a title and main text the way saved pages are laid out.
func PageContent(title, text string) string {
	return strings.TrimSpace(title + "\n\n" + text)
}

// FetchProgress reports progress during page fetching.
type FetchProgress struct {
	URL       string
	Completed int
	Total     int
	Error     error
}

// FetchProgressFunc is called as pages are processed.
type FetchProgressFunc func(FetchProgress)

// PageStore persists pages to storage with atomic semantics.
// Save writes to a temporary location; Commit makes changes permanent;
// Abort discards pending changes.
type PageStore interface {
	Save(ctx context.Context, page *Page) error
	Commit() error
	Abort() error
}
