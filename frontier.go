package siterag

import "context"

// LinkExtractor finds the in-scope links of a fetched page.
type LinkExtractor interface {
	// ExtractLinks resolves every anchor of html against pageURL and returns
	// the normalized URLs whose host equals baseHost. The result has no
	// duplicates and its order carries no meaning.
	ExtractLinks(html, pageURL, baseHost string) ([]string, error)
}

// DomainLimiter provides per-domain rate limiting.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
