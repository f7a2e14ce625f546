package bloom_test

import (
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/siterag/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_AddAndTest(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)
	a := xxhash.Sum64String("first chunk")
	b := xxhash.Sum64String("second chunk")

	assert.False(t, f.Test(a))

	f.Add(a)

	assert.True(t, f.Test(a))
	assert.False(t, f.Test(b))
}

func TestFilter_TestAndAdd(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)
	h := xxhash.Sum64String("chunk")

	assert.False(t, f.TestAndAdd(h))
	assert.True(t, f.TestAndAdd(h))
	assert.True(t, f.Test(h))
}

func TestFilter_EstimatedCount(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)
	assert.Equal(t, uint(0), f.EstimatedCount())

	f.Add(1)
	f.Add(2)
	f.Add(3)
	f.Add(3)

	count := f.EstimatedCount()
	assert.True(t, count >= 2 && count <= 4, "expected count near 3, got %d", count)
}

func TestFilter_ZeroCapacity(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(0, 0.01)
	f.Add(42)

	assert.True(t, f.Test(42))
}

func TestFilter_FalsePositiveRate(t *testing.T) {
	t.Parallel()

	const (
		numItems   = 10000
		fpRate     = 0.01
		testProbes = 10000
	)

	f := bloom.NewFilter(numItems, fpRate)
	for i := range uint64(numItems) {
		f.Add(i)
	}

	falsePositives := 0
	for i := range uint64(testProbes) {
		if f.Test(numItems + i) {
			falsePositives++
		}
	}

	// Allow up to 2% to account for statistical variance.
	actualRate := float64(falsePositives) / float64(testProbes)
	assert.Less(t, actualRate, 0.02, "false positive rate %f exceeds 2%%", actualRate)
}
