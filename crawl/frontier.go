package crawl

import "github.com/fwojciec/siterag"

// Frontier holds the URLs discovered during one crawl: the set of every URL
// ever seen and the FIFO queue of URLs awaiting fetch. A URL is marked seen
// when first discovered, not when fetched, so it is queued at most once.
//
// Frontier is not safe for concurrent use. The Crawler only mutates it
// between batches.
type Frontier struct {
	seen  map[string]struct{}
	order []string // seen URLs in discovery order
	queue []string
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{seen: make(map[string]struct{})}
}

// Push normalizes the URL and appends it to the queue.
// Returns false if the URL is invalid or has already been seen.
func (f *Frontier) Push(rawURL string) bool {
	u, err := siterag.NormalizeURL(rawURL)
	if err != nil {
		return false
	}
	if _, ok := f.seen[u]; ok {
		return false
	}
	f.seen[u] = struct{}{}
	f.order = append(f.order, u)
	f.queue = append(f.queue, u)
	return true
}

// PopBatch removes and returns up to n URLs from the front of the queue.
func (f *Frontier) PopBatch(n int) []string {
	n = min(n, len(f.queue))
	if n <= 0 {
		return nil
	}
	batch := make([]string, n)
	copy(batch, f.queue[:n])
	f.queue = f.queue[n:]
	return batch
}

// Len returns the number of URLs in the queue.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// SeenCount returns the number of distinct URLs discovered so far.
func (f *Frontier) SeenCount() int {
	return len(f.seen)
}

// URLs returns every seen URL in discovery order.
func (f *Frontier) URLs() []string {
	return append([]string(nil), f.order...)
}
