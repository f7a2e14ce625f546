// Package fs stores crawled pages as plain text files and reads them back
// for indexing.
package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/siterag"
	"github.com/google/uuid"
)

// Ext is the extension of saved page files.
const Ext = ".txt"

var _ siterag.PageStore = (*FileStore)(nil)

// FileStore implements siterag.PageStore with atomic update semantics.
// Pages are written to dir.tmp and replace dir on Commit, so an
// interrupted crawl never leaves a half-written pages directory behind.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore whose committed pages live in dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: filepath.Clean(dir)}
}

func (s *FileStore) tempDir() string {
	return s.dir + ".tmp"
}

// Save writes the page content to a new file with a random name.
// The file holds the content only; the URL is not recorded.
func (s *FileStore) Save(ctx context.Context, page *siterag.Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.tempDir(), 0o755); err != nil {
		return err
	}
	name := strings.ReplaceAll(uuid.NewString(), "-", "") + Ext
	return os.WriteFile(filepath.Join(s.tempDir(), name), []byte(page.Content), 0o644)
}

// Commit replaces the pages directory with everything saved so far.
func (s *FileStore) Commit() error {
	if _, err := os.Stat(s.tempDir()); os.IsNotExist(err) {
		// Nothing saved: commit an empty directory.
		if err := os.MkdirAll(s.tempDir(), 0o755); err != nil {
			return err
		}
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.dir)
}

// Abort discards everything saved since the last commit.
func (s *FileStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}

var _ siterag.PageSource = (*PageSource)(nil)

// PageSource reads committed page files from a directory.
type PageSource struct {
	Dir string
}

// NewPageSource creates a PageSource over dir.
func NewPageSource(dir string) *PageSource {
	return &PageSource{Dir: dir}
}

// LoadPages returns every page file in the directory in name order.
// A missing directory or one without page files is ENOTFOUND.
func (s *PageSource) LoadPages(ctx context.Context) ([]*siterag.SourceText, error) {
	entries, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		return nil, siterag.Errorf(siterag.ENOTFOUND, "pages directory %q does not exist; run crawl first", s.Dir)
	} else if err != nil {
		return nil, err
	}

	var pages []*siterag.SourceText
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || filepath.Ext(e.Name()) != Ext {
			continue
		}
		b, err := os.ReadFile(filepath.Join(s.Dir, e.Name()))
		if err != nil {
			return nil, err
		}
		pages = append(pages, &siterag.SourceText{Name: e.Name(), Text: string(b)})
	}
	if len(pages) == 0 {
		return nil, siterag.Errorf(siterag.ENOTFOUND, "no page files in %q; run crawl first", s.Dir)
	}
	return pages, nil
}
