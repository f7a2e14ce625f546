package readability_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/siterag"
	"github.com/fwojciec/siterag/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Page Title</title></head>
<body>
<nav><a href="/home">Home Nav Link</a><a href="/about">About Nav Link</a></nav>
<article>
<h1>Main Heading</h1>
<p>This is the first important article paragraph text, long enough to be treated as content by the scorer.</p>
<p>This is the second paragraph of the article, which also carries enough words to count as real content.</p>
</article>
<footer><p>Footer copyright text 2024</p></footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := readability.NewExtractor().Extract("  ")

		require.Error(t, err)
		assert.Equal(t, siterag.EINVALID, siterag.ErrorCode(err))
	})

	t.Run("extracts the title", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(articleHTML)

		require.NoError(t, err)
		assert.Equal(t, "Page Title", result.Title)
	})

	t.Run("keeps the article and drops boilerplate", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(articleHTML)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "first important article paragraph")
		assert.Contains(t, result.Text, "first important article paragraph")
		assert.NotContains(t, result.Text, "Home Nav Link")
		assert.NotContains(t, result.Text, "Footer copyright text")
	})

	t.Run("puts each text block on its own line", func(t *testing.T) {
		t.Parallel()

		result, err := readability.NewExtractor().Extract(articleHTML)

		require.NoError(t, err)
		for _, line := range strings.Split(result.Text, "\n") {
			assert.NotEmpty(t, line)
			assert.Equal(t, strings.TrimSpace(line), line)
		}
	})
}

func TestText(t *testing.T) {
	t.Parallel()

	t.Run("joins trimmed text nodes with newlines", func(t *testing.T) {
		t.Parallel()

		doc, err := html.Parse(strings.NewReader(`<div><h1> Title </h1>
<p>First <b>bold</b></p>
<p>   </p>
<script>var x = 1;</script>
<style>p { color: red }</style>
</div>`))
		require.NoError(t, err)

		assert.Equal(t, "Title\nFirst\nbold", readability.Text(doc))
	})

	t.Run("returns empty string for nil node", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, readability.Text(nil))
	})
}
