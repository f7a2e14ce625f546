package mock

import "github.com/fwojciec/siterag"

var _ siterag.Converter = (*Converter)(nil)

// Converter is a mock implementation of siterag.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
