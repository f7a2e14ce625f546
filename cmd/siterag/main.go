package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/siterag"
	"github.com/fwojciec/siterag/crawl"
	"github.com/fwojciec/siterag/fs"
	"github.com/fwojciec/siterag/gemini"
	"github.com/fwojciec/siterag/goquery"
	"github.com/fwojciec/siterag/htmltomarkdown"
	shttp "github.com/fwojciec/siterag/http"
	"github.com/fwojciec/siterag/index"
	"github.com/fwojciec/siterag/qdrant"
	"github.com/fwojciec/siterag/readability"
	"github.com/fwojciec/siterag/rod"
	sslog "github.com/fwojciec/siterag/slog"
	"github.com/fwojciec/siterag/sqlite"
	"github.com/fwojciec/siterag/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// defaultDBPath is the SQLite database used when --db and SITERAG_DB are unset.
const defaultDBPath = "siterag.db"

// Main represents the program.
type Main struct {
	// SQLite database, opened when --store is sqlite.
	DB *sqlite.DB

	// Qdrant store, opened when --store is qdrant.
	Qdrant *qdrant.Store

	// Store overrides the configured vector store, for end-to-end testing.
	Store siterag.VectorStore
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	if m.Qdrant != nil {
		return m.Qdrant.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		Config: siterag.DefaultConfig(),
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("siterag"),
		kong.Description("Crawl a website and ask questions about its content"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		Vars(),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'siterag --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	deps.Logger = newLogger(stderr, cli.Verbose)
	deps.Config.Collection = cli.Collection

	if err := validateCommand(cli, cmd, deps.Config); err != nil {
		fmt.Fprintf(stderr, "error: %s\n", siterag.ErrorMessage(err))
		return err
	}

	if cmd == "crawl" {
		crawler, closeFetcher, err := newCrawler(&cli.Crawl, deps.Config, deps.Logger, cli.Verbose, stderr)
		if err != nil {
			return err
		}
		defer closeFetcher()
		deps.Crawler = crawler
		deps.Pages = fs.NewFileStore(cli.Crawl.PagesDir)
		return kongCtx.Run(deps)
	}

	store, err := m.openStore(ctx, cli, stderr)
	if err != nil {
		return err
	}
	defer m.Close()
	deps.Store = store

	if cmd == "stats" {
		return kongCtx.Run(deps)
	}

	client, err := newGeminiClient(ctx, cli.APIKey, stderr)
	if err != nil {
		return err
	}

	if cmd == "index" {
		tokenCounter, err := gemini.NewTokenCounter(gemini.DefaultTokenizerModel)
		if err != nil {
			return fmt.Errorf("failed to create token counter: %w", err)
		}
		var embedder siterag.Embedder = gemini.NewEmbedder(client, gemini.TaskRetrievalDocument)
		if cli.Verbose {
			embedder = sslog.NewLoggingEmbedder(embedder, deps.Logger)
		}
		deps.Source = fs.NewPageSource(cli.Index.PagesDir)
		deps.Indexer = &index.Indexer{
			Embedder:     embedder,
			Store:        store,
			TokenCounter: tokenCounter,
			Logger:       deps.Logger,
		}
	}

	if cmd == "ask" || cmd == "chat" {
		var embedder siterag.Embedder = gemini.NewEmbedder(client, gemini.TaskRetrievalQuery)
		if cli.Verbose {
			embedder = sslog.NewLoggingEmbedder(embedder, deps.Logger)
		}
		deps.QueryEmbedder = embedder
		deps.NewAsker = func(retriever siterag.Retriever, cfg siterag.Config) siterag.Asker {
			if cli.Verbose {
				retriever = sslog.NewLoggingRetriever(retriever, deps.Logger)
			}
			asker := gemini.NewAsker(client, retriever)
			asker.TopK = cfg.TopK
			asker.PromptChunks = cfg.PromptChunks
			if cli.Verbose {
				return sslog.NewLoggingAsker(asker, deps.Logger)
			}
			return asker
		}
	}

	return kongCtx.Run(deps)
}

// openStore opens the vector store selected by --store.
func (m *Main) openStore(ctx context.Context, cli *CLI, stderr io.Writer) (siterag.VectorStore, error) {
	if m.Store != nil {
		return m.Store, nil
	}
	switch cli.Store {
	case "qdrant":
		store, err := qdrant.Open(cli.QdrantHost, cli.QdrantPort)
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Set QDRANT_HOST and QDRANT_PORT to reach your Qdrant server")
			return nil, err
		}
		m.Qdrant = store
		return store, nil
	default:
		m.DB = sqlite.NewDB(cli.DB)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set SITERAG_DB to use a different database path\n")
			return nil, fmt.Errorf("failed to open database at %q: %w", cli.DB, err)
		}
		return sqlite.NewStore(m.DB), nil
	}
}

// newCrawler builds the crawler selected by the crawl flags. The returned
// func releases the fetcher.
func newCrawler(c *CrawlCmd, cfg siterag.Config, logger *slog.Logger, verbose bool, stderr io.Writer) (*crawl.Crawler, func(), error) {
	var fetcher siterag.Fetcher
	if c.Browser {
		f, err := rod.NewFetcher(rod.WithFetchTimeout(c.Timeout))
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return nil, nil, fmt.Errorf("failed to start browser: %w", err)
		}
		fetcher = f
	} else {
		opts := []shttp.Option{shttp.WithTimeout(c.Timeout)}
		if c.UserAgent != "" {
			opts = append(opts, shttp.WithUserAgent(c.UserAgent))
		}
		fetcher = shttp.NewFetcher(opts...)
	}

	var links siterag.LinkExtractor = goquery.NewLinkExtractor(cfg.ExcludedExtensions)
	if verbose {
		fetcher = sslog.NewLoggingFetcher(fetcher, logger)
		links = sslog.NewLoggingLinkExtractor(links, logger)
	}

	crawler := &crawl.Crawler{
		Fetcher:   fetcher,
		Links:     links,
		Extractor: readability.NewExtractor(),
		Logger:    logger,

		ExcludedExtensions: cfg.ExcludedExtensions,
	}
	if c.Extractor == "trafilatura" {
		crawler.Extractor = trafilatura.NewExtractor()
	}
	if c.Markdown {
		crawler.Converter = htmltomarkdown.NewConverter()
	}
	if c.Sitemap {
		var sitemaps siterag.SitemapService = shttp.NewSitemapService(nil)
		if verbose {
			sitemaps = sslog.NewLoggingSitemapService(sitemaps, logger)
		}
		crawler.Sitemaps = sitemaps
	}
	if c.Retry {
		crawler.RetryDelays = crawl.DefaultRetryDelays()
	}
	if c.RPS > 0 {
		crawler.RateLimiter = crawl.NewDomainLimiter(c.RPS, c.Burst)
	}

	return crawler, func() { _ = fetcher.Close() }, nil
}

func newGeminiClient(ctx context.Context, apiKey string, stderr io.Writer) (*genai.Client, error) {
	if apiKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return nil, fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}
	return client, nil
}

// newLogger logs warnings to stderr, or everything when verbose.
func newLogger(stderr io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}
