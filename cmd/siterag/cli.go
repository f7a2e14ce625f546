package main

import (
	"cmp"
	"context"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/siterag"
	"github.com/fwojciec/siterag/crawl"
	"github.com/fwojciec/siterag/index"
	"github.com/fwojciec/siterag/qdrant"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Config carries the global settings; commands apply their flags on top.
	Config siterag.Config

	Crawler *crawl.Crawler
	Pages   siterag.PageStore
	Source  siterag.PageSource
	Indexer *index.Indexer
	Store   siterag.VectorStore

	// NewAsker builds an Asker over a retriever for the opened collection.
	NewAsker func(retriever siterag.Retriever, cfg siterag.Config) siterag.Asker
	// QueryEmbedder embeds questions for retrieval.
	QueryEmbedder siterag.Embedder
}

// Vars returns the kong variables interpolated into flag defaults.
func Vars() kong.Vars {
	return kong.Vars{
		"max_urls":       strconv.Itoa(siterag.DefaultMaxURLs),
		"concurrency":    strconv.Itoa(siterag.DefaultConcurrency),
		"timeout":        siterag.DefaultFetchTimeout.String(),
		"pages_dir":      siterag.DefaultPagesDir,
		"chunk_size":     strconv.Itoa(siterag.DefaultChunkSize),
		"chunk_overlap":  strconv.Itoa(siterag.DefaultChunkOverlap),
		"min_chunk_size": strconv.Itoa(siterag.DefaultMinChunkSize),
		"top_k":          strconv.Itoa(siterag.DefaultTopK),
		"prompt_chunks":  strconv.Itoa(siterag.DefaultPromptChunks),
		"history":        strconv.Itoa(siterag.DefaultHistoryTurns),
		"collection":     siterag.DefaultCollection,
		"db":             defaultDBPath,
		"qdrant_port":    strconv.Itoa(qdrant.DefaultPort),
	}
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB         string `name:"db" env:"SITERAG_DB" default:"${db}" help:"SQLite database path"`
	Store      string `enum:"sqlite,qdrant" env:"SITERAG_STORE" default:"sqlite" help:"Vector store backend (sqlite, qdrant)"`
	QdrantHost string `name:"qdrant-host" env:"QDRANT_HOST" default:"localhost" help:"Qdrant host"`
	QdrantPort int    `name:"qdrant-port" env:"QDRANT_PORT" default:"${qdrant_port}" help:"Qdrant gRPC port"`
	Collection string `env:"COLLECTION_NAME" default:"${collection}" help:"Vector collection name"`
	APIKey     string `name:"api-key" env:"GEMINI_API_KEY,GOOGLE_AI_API_KEY" help:"Gemini API key"`
	Verbose    bool   `short:"v" help:"Log every fetch, embedding and query to stderr"`

	Crawl CrawlCmd `cmd:"" help:"Crawl a site and save its pages as text files"`
	Index IndexCmd `cmd:"" help:"Chunk, embed and store the saved pages"`
	Ask   AskCmd   `cmd:"" help:"Ask a single question about the indexed site"`
	Chat  ChatCmd  `cmd:"" help:"Chat about the indexed site"`
	Stats StatsCmd `cmd:"" help:"Show the size of the vector collection"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL         string        `arg:"" optional:"" help:"Seed URL (defaults to $SCRAPE_URL)"`
	SeedURL     string        `name:"url" env:"SCRAPE_URL" hidden:"" help:"Seed URL"`
	MaxURLs     int           `name:"max-urls" env:"MAX_URLS" default:"${max_urls}" help:"Stop discovery after this many URLs"`
	Concurrency int           `short:"c" env:"CONCURRENCY" default:"${concurrency}" help:"Concurrent fetch limit"`
	Timeout     time.Duration `short:"t" default:"${timeout}" help:"Fetch timeout per page"`
	PagesDir    string        `name:"pages-dir" env:"SCRAPED_PAGES_DIR" default:"${pages_dir}" help:"Directory for saved pages"`
	Browser     bool          `help:"Render pages in a headless browser"`
	Sitemap     bool          `help:"Seed the crawl from the site's sitemaps"`
	Markdown    bool          `help:"Save main content as markdown instead of plain text"`
	Extractor   string        `enum:"readability,trafilatura" default:"readability" help:"Main content extractor (readability, trafilatura)"`
	Retry       bool          `help:"Retry failed fetches with backoff"`
	RPS         float64       `name:"rps" help:"Requests per second per host (0 for unlimited)"`
	Burst       int           `default:"1" help:"Requests per host allowed back to back under --rps"`
	UserAgent   string        `name:"user-agent" env:"SITERAG_USER_AGENT" help:"User-Agent header for plain HTTP fetches"`
}

// config applies the crawl flags to base.
func (c *CrawlCmd) config(base siterag.Config) siterag.Config {
	base.SeedURL = cmp.Or(c.URL, c.SeedURL)
	base.MaxURLs = c.MaxURLs
	base.Concurrency = c.Concurrency
	base.FetchTimeout = c.Timeout
	base.PagesDir = c.PagesDir
	return base
}

// IndexCmd is the "index" subcommand.
type IndexCmd struct {
	PagesDir     string `name:"pages-dir" env:"SCRAPED_PAGES_DIR" default:"${pages_dir}" help:"Directory of saved pages"`
	ChunkSize    int    `name:"chunk-size" env:"CHUNK_SIZE" default:"${chunk_size}" help:"Chunk length in characters"`
	ChunkOverlap int    `name:"chunk-overlap" env:"CHUNK_OVERLAP" default:"${chunk_overlap}" help:"Characters shared by consecutive chunks"`
	MinChunkSize int    `name:"min-chunk-size" env:"MIN_CHUNK_SIZE" default:"${min_chunk_size}" help:"Drop chunks shorter than this"`
	Mode         string `enum:"append,rebuild" default:"append" help:"Keep (append) or delete (rebuild) records already in the collection"`
	Dedup        bool   `help:"Skip chunks whose content was already stored in this run"`
}

// config applies the index flags to base.
func (c *IndexCmd) config(base siterag.Config) siterag.Config {
	base.PagesDir = c.PagesDir
	base.Chunk = siterag.ChunkOptions{
		Size:    c.ChunkSize,
		Overlap: c.ChunkOverlap,
		MinSize: c.MinChunkSize,
	}
	return base
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question     string `arg:"" help:"Question to ask about the site"`
	TopK         int    `name:"top-k" default:"${top_k}" help:"Chunks retrieved per question"`
	PromptChunks int    `name:"prompt-chunks" default:"${prompt_chunks}" help:"Best chunks passed to the model"`
	Sources      bool   `short:"s" help:"Print the sources of the answer"`
}

// config applies the ask flags to base.
func (c *AskCmd) config(base siterag.Config) siterag.Config {
	base.TopK = c.TopK
	base.PromptChunks = c.PromptChunks
	return base
}

// ChatCmd is the "chat" subcommand.
type ChatCmd struct {
	TopK         int `name:"top-k" default:"${top_k}" help:"Chunks retrieved per question"`
	PromptChunks int `name:"prompt-chunks" default:"${prompt_chunks}" help:"Best chunks passed to the model"`
	History      int `default:"${history}" help:"Conversation turns kept in the prompt"`
}

// config applies the chat flags to base.
func (c *ChatCmd) config(base siterag.Config) siterag.Config {
	base.TopK = c.TopK
	base.PromptChunks = c.PromptChunks
	base.HistoryTurns = c.History
	return base
}

// validateCommand checks the settings of the selected command before any
// service is started.
func validateCommand(cli *CLI, cmd string, base siterag.Config) error {
	switch cmd {
	case "crawl":
		cfg := cli.Crawl.config(base)
		if cli.Crawl.Burst <= 0 {
			return siterag.Errorf(siterag.EINVALID, "burst must be positive, got %d", cli.Crawl.Burst)
		}
		return cfg.ValidateCrawl()
	case "index":
		cfg := cli.Index.config(base)
		return cfg.ValidateIndex()
	case "ask":
		cfg := cli.Ask.config(base)
		return cfg.ValidateQuery()
	case "chat":
		cfg := cli.Chat.config(base)
		return cfg.ValidateQuery()
	}
	return nil
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct{}
