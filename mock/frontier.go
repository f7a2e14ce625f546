package mock

import (
	"context"

	"github.com/fwojciec/siterag"
)

var _ siterag.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of siterag.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html, pageURL, baseHost string) ([]string, error)
}

func (e *LinkExtractor) ExtractLinks(html, pageURL, baseHost string) ([]string, error) {
	return e.ExtractLinksFn(html, pageURL, baseHost)
}

var _ siterag.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of siterag.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
