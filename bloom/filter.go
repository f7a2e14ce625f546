// Package bloom provides approximate membership for duplicate chunk
// detection using Bloom filters.
package bloom

import (
	"encoding/binary"

	"github.com/bits-and-blooms/bloom/v3"
)

// Filter is an approximate set of 64-bit content hashes. A hit may be a
// false positive; a miss is always exact.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a Filter sized for n expected items with the given
// false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{f: bloom.NewWithEstimates(max(n, 1), fpRate)}
}

// Add records a hash.
func (f *Filter) Add(h uint64) {
	f.f.Add(key(h))
}

// Test reports whether the hash might have been added.
func (f *Filter) Test(h uint64) bool {
	return f.f.Test(key(h))
}

// TestAndAdd reports whether the hash might have been added, then adds it.
func (f *Filter) TestAndAdd(h uint64) bool {
	return f.f.TestAndAdd(key(h))
}

// EstimatedCount returns the approximate number of distinct hashes added.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}

func key(h uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], h)
	return b[:]
}
