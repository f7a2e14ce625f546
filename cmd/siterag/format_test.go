package main_test

import (
	"testing"

	main "github.com/fwojciec/siterag/cmd/siterag"
	"github.com/stretchr/testify/assert"
)

func TestTruncateURL(t *testing.T) {
	t.Parallel()

	t.Run("shows only the path of a URL", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "/docs/intro", main.TruncateURL("https://example.com/docs/intro", 50))
	})

	t.Run("shows root for a URL without path", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "/", main.TruncateURL("https://example.com", 50))
	})

	t.Run("truncates with ellipsis when longer than max", func(t *testing.T) {
		t.Parallel()

		result := main.TruncateURL("https://example.com/very/long/path/to/documentation", 20)

		assert.Equal(t, ".../to/documentation", result)
		assert.Len(t, result, 20)
	})

	t.Run("returns path unchanged when exactly max length", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "/abc", main.TruncateURL("https://example.com/abc", 4))
	})

	t.Run("returns empty string when maxLen is not positive", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, main.TruncateURL("https://example.com", 0))
		assert.Empty(t, main.TruncateURL("https://example.com", -1))
	})

	t.Run("returns prefix when maxLen is very small", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "/ve", main.TruncateURL("https://example.com/very", 3))
		assert.Equal(t, "a", main.TruncateURL("abc", 1))
	})

	t.Run("keeps strings that are not absolute URLs", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "ab", main.TruncateURL("ab", 3))
	})
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", main.FormatBytes(512))
	assert.Equal(t, "1.5 KB", main.FormatBytes(1536))
	assert.Equal(t, "2.0 MB", main.FormatBytes(2*1024*1024))
}

func TestFormatTokens(t *testing.T) {
	t.Parallel()

	t.Run("formats small token counts", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "~500 tokens", main.FormatTokens(500))
	})

	t.Run("formats large token counts as k", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "~10k tokens", main.FormatTokens(10000))
	})

	t.Run("rounds token counts", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "~2k tokens", main.FormatTokens(1500))
	})
}
