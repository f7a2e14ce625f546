// Package goquery extracts links from HTML using goquery.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/siterag"
)

var _ siterag.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor implements siterag.LinkExtractor over every a[href] of a page.
type LinkExtractor struct {
	// Exclude lists file extensions whose links are dropped.
	// Defaults to siterag.DefaultExcludedExtensions when nil.
	Exclude []string
}

// NewLinkExtractor creates a LinkExtractor that drops links to the given
// extensions. A nil list selects siterag.DefaultExcludedExtensions.
func NewLinkExtractor(exclude []string) *LinkExtractor {
	return &LinkExtractor{Exclude: exclude}
}

// ExtractLinks resolves each anchor against pageURL and keeps the normalized
// http(s) URLs on exactly baseHost. Subdomains and other ports count as
// other hosts.
func (e *LinkExtractor) ExtractLinks(html, pageURL, baseHost string) ([]string, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, siterag.Errorf(siterag.EINVALID, "invalid page URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, siterag.Errorf(siterag.EINVALID, "failed to parse HTML: %v", err)
	}

	exclude := e.Exclude
	if exclude == nil {
		exclude = siterag.DefaultExcludedExtensions
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if resolved.Host != baseHost || siterag.HasExtension(resolved.Path, exclude) {
			return
		}
		normalized, err := siterag.NormalizeURL(resolved.String())
		if err != nil {
			return
		}
		if _, ok := seen[normalized]; ok {
			return
		}
		seen[normalized] = struct{}{}
		links = append(links, normalized)
	})

	return links, nil
}
