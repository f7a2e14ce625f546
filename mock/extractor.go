package mock

import "github.com/fwojciec/siterag"

var _ siterag.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of siterag.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*siterag.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*siterag.ExtractResult, error) {
	return e.ExtractFn(html)
}
