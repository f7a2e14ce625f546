package siterag

import "time"

// Default configuration values.
const (
	DefaultMaxURLs      = 1000
	DefaultConcurrency  = 10
	DefaultFetchTimeout = 10 * time.Second
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultMinChunkSize = 100
	DefaultTopK         = 20
	DefaultPromptChunks = 3
	DefaultHistoryTurns = 10
	DefaultCollection   = "site_documents"
	DefaultPagesDir     = "./scraped_pages"
)

// DefaultExcludedExtensions lists path extensions of non-text files that
// are never queued for crawling.
var DefaultExcludedExtensions = []string{
	"png", "jpg", "jpeg", "gif", "svg", "zip", "pdf", "docx", "xls", "mp4",
}

// Config holds every tunable of the pipeline. It is constructed once at the
// entry point and handed to each component.
type Config struct {
	// Crawl
	SeedURL            string
	MaxURLs            int
	Concurrency        int
	FetchTimeout       time.Duration
	ExcludedExtensions []string

	// Chunking
	Chunk ChunkOptions

	// Retrieval
	TopK         int
	PromptChunks int
	HistoryTurns int

	// Storage
	Collection string
	PagesDir   string
}

// DefaultConfig returns a Config populated with default values.
// SeedURL has no default.
func DefaultConfig() Config {
	return Config{
		MaxURLs:            DefaultMaxURLs,
		Concurrency:        DefaultConcurrency,
		FetchTimeout:       DefaultFetchTimeout,
		ExcludedExtensions: DefaultExcludedExtensions,
		Chunk: ChunkOptions{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
			MinSize: DefaultMinChunkSize,
		},
		TopK:         DefaultTopK,
		PromptChunks: DefaultPromptChunks,
		HistoryTurns: DefaultHistoryTurns,
		Collection:   DefaultCollection,
		PagesDir:     DefaultPagesDir,
	}
}

// ValidateCrawl returns an error if the crawl settings cannot be used.
func (c *Config) ValidateCrawl() error {
	if c.SeedURL == "" {
		return Errorf(EINVALID, "seed URL required (set SCRAPE_URL or pass it as an argument)")
	}
	if _, err := NormalizeURL(c.SeedURL); err != nil {
		return err
	}
	if c.MaxURLs <= 0 {
		return Errorf(EINVALID, "max URLs must be positive, got %d", c.MaxURLs)
	}
	if c.Concurrency <= 0 {
		return Errorf(EINVALID, "concurrency must be positive, got %d", c.Concurrency)
	}
	if c.FetchTimeout < 0 {
		return Errorf(EINVALID, "fetch timeout must not be negative, got %s", c.FetchTimeout)
	}
	return nil
}

// ValidateIndex returns an error if the chunking and storage settings cannot be used.
func (c *Config) ValidateIndex() error {
	if err := c.Chunk.Validate(); err != nil {
		return err
	}
	if c.Collection == "" {
		return Errorf(EINVALID, "collection name required")
	}
	return nil
}

// ValidateQuery returns an error if the retrieval settings cannot be used.
func (c *Config) ValidateQuery() error {
	if c.TopK <= 0 {
		return Errorf(EINVALID, "top-k must be positive, got %d", c.TopK)
	}
	if c.PromptChunks <= 0 {
		return Errorf(EINVALID, "prompt chunks must be positive, got %d", c.PromptChunks)
	}
	if c.HistoryTurns < 0 {
		return Errorf(EINVALID, "history turns must not be negative, got %d", c.HistoryTurns)
	}
	if c.Collection == "" {
		return Errorf(EINVALID, "collection name required")
	}
	return nil
}
