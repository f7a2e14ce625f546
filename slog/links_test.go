package slog_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/siterag/mock"
	sslog "github.com/fwojciec/siterag/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingLinkExtractor_ExtractLinks(t *testing.T) {
	t.Parallel()

	t.Run("logs link count at debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.LinkExtractor{
			ExtractLinksFn: func(html, pageURL, baseHost string) ([]string, error) {
				return []string{"https://example.com/a", "https://example.com/b"}, nil
			},
		}

		links, err := sslog.NewLoggingLinkExtractor(inner, logger).
			ExtractLinks("<html></html>", "https://example.com/", "example.com")

		require.NoError(t, err)
		assert.Len(t, links, 2)
		output := buf.String()
		assert.Contains(t, output, "links extracted")
		assert.Contains(t, output, "url=https://example.com/")
		assert.Contains(t, output, "count=2")
	})

	t.Run("stays quiet at info level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.LinkExtractor{
			ExtractLinksFn: func(html, pageURL, baseHost string) ([]string, error) {
				return nil, nil
			},
		}

		_, err := sslog.NewLoggingLinkExtractor(inner, logger).
			ExtractLinks("", "https://example.com/", "example.com")

		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})
	t.Run("logs and returns the inner error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.LinkExtractor{
			ExtractLinksFn: func(html, pageURL, baseHost string) ([]string, error) {
				return nil, errors.New("bad markup")
			},
		}

		links, err := sslog.NewLoggingLinkExtractor(inner, logger).
			ExtractLinks("<", "https://example.com/broken", "example.com")

		require.EqualError(t, err, "bad markup")
		assert.Nil(t, links)
		output := buf.String()
		assert.Contains(t, output, "url=https://example.com/broken")
		assert.Contains(t, output, "count=0")
		assert.Contains(t, output, `err="bad markup"`)
	})
}
