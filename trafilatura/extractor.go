// Package trafilatura extracts the main content of a page with
// go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/siterag"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var _ siterag.Extractor = (*Extractor)(nil)

// Extractor implements siterag.Extractor using go-trafilatura with its
// readability and dom-distiller fallbacks enabled.
type Extractor struct {
	// Precision favours dropping doubtful blocks over keeping them.
	Precision bool
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the title, main content HTML and main content text.
func (e *Extractor) Extract(rawHTML string) (*siterag.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, siterag.Errorf(siterag.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
		IncludeLinks:   true,
	}
	if e.Precision {
		opts.Focus = trafilatura.FavorPrecision
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		var buf bytes.Buffer
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return nil, err
		}
		contentHTML = buf.String()
	}

	return &siterag.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		ContentHTML: contentHTML,
		Text:        lines(result.ContentText),
	}, nil
}

// lines trims every line of s and drops the blank ones.
func lines(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
