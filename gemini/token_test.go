package gemini_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/siterag"
	"github.com/fwojciec/siterag/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenCounter(t *testing.T) {
	t.Parallel()

	t.Run("defaults to the tokenizer model", func(t *testing.T) {
		t.Parallel()

		tc, err := gemini.NewTokenCounter("")

		require.NoError(t, err)
		assert.Equal(t, gemini.DefaultTokenizerModel, tc.Model())
	})

	t.Run("rejects models without a local tokenizer", func(t *testing.T) {
		t.Parallel()

		_, err := gemini.NewTokenCounter("not-a-model")

		require.Error(t, err)
		assert.Equal(t, siterag.EINVALID, siterag.ErrorCode(err))
	})
}

func TestTokenCounter_CountTokens(t *testing.T) {
	t.Parallel()

	tc, err := gemini.NewTokenCounter(gemini.DefaultTokenizerModel)
	require.NoError(t, err)

	t.Run("empty chunk has no tokens", func(t *testing.T) {
		t.Parallel()

		count, err := tc.CountTokens(context.Background(), "")

		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("a full chunk has more tokens than a short one", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		short, err := tc.CountTokens(ctx, "Getting started")
		require.NoError(t, err)
		full, err := tc.CountTokens(ctx, strings.Repeat("Install the package and run the server. ", 25))
		require.NoError(t, err)

		assert.Positive(t, short)
		assert.Greater(t, full, short)
	})

	t.Run("stops when the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := tc.CountTokens(ctx, "text")

		assert.ErrorIs(t, err, context.Canceled)
	})
}
