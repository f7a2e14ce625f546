// Package readability extracts the main content of a page with
// go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/siterag"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var _ siterag.Extractor = (*Extractor)(nil)

// Extractor implements siterag.Extractor using the Readability algorithm.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the page title, the main content as HTML and the main
// content as plain text with one text node per line.
func (e *Extractor) Extract(rawHTML string) (*siterag.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, siterag.Errorf(siterag.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	return &siterag.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: article.Content,
		Text:        Text(article.Node),
	}, nil
}

// Text joins the trimmed, non-empty text nodes under n with newlines.
// Script and style contents are skipped.
func Text(n *html.Node) string {
	if n == nil {
		return ""
	}
	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if s := strings.TrimSpace(n.Data); s != "" {
				lines = append(lines, s)
			}
			return
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style || n.DataAtom == atom.Noscript {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(lines, "\n")
}
