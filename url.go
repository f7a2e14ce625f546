package siterag

import (
	"net/url"
	"path"
	"strings"
)

// NormalizeURL reduces a URL to scheme, host and path. Query string and
// fragment are discarded, so URLs differing only in those are the same page.
// Normalizing an already normalized URL returns it unchanged.
func NormalizeURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", Errorf(EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", Errorf(EINVALID, "URL %q must be absolute", rawURL)
	}
	norm := url.URL{
		Scheme:  u.Scheme,
		Host:    u.Host,
		Path:    u.Path,
		RawPath: u.RawPath,
	}
	return norm.String(), nil
}

// HasExtension reports whether the URL path ends in one of the given file
// extensions. Matching is case-insensitive and extensions are given
// without the leading dot.
func HasExtension(urlPath string, exts []string) bool {
	ext := strings.TrimPrefix(path.Ext(urlPath), ".")
	if ext == "" {
		return false
	}
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
