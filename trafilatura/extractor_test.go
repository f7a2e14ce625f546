package trafilatura_test

import (
	"testing"

	"github.com/fwojciec/siterag"
	"github.com/fwojciec/siterag/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docHTML = `<!DOCTYPE html>
<html>
<head>
<title>Getting Started - My Docs</title>
<meta property="og:title" content="Getting Started Guide">
</head>
<body>
<nav><a href="/">Home</a><a href="/docs" class="main-nav">Docs</a></nav>
<article>
<h1>Documentation</h1>
<p>This is important documentation content that should be extracted by the extractor.</p>
<p>It spans a second paragraph so that the content scorer is confident about it.</p>
<pre><code>func main() { fmt.Println("Hello") }</code></pre>
</article>
<footer>Copyright 2024 Example Corp</footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title from meta tags", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(docHTML)

		require.NoError(t, err)
		assert.NotEmpty(t, result.Title)
	})

	t.Run("extracts main content as HTML and text", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(docHTML)

		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "important documentation content")
		assert.Contains(t, result.Text, "important documentation content")
		assert.NotContains(t, result.Text, "Copyright 2024 Example Corp")
	})

	t.Run("text has no blank lines", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(docHTML)

		require.NoError(t, err)
		assert.NotContains(t, result.Text, "\n\n")
	})

	t.Run("returns error for empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor().Extract("")

		assert.Equal(t, siterag.EINVALID, siterag.ErrorCode(err))
	})
}
