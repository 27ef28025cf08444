package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/sha1n/mcp-scripture-server/internal/domain"
)

const (
	// LanguagesFilename lists the available languages.
	LanguagesFilename = "languages.json"

	// MetadataFilename holds chapter and verse counts keyed by book id.
	MetadataFilename = "book-metadata.json"

	// ZstdSuffix marks a zstd-compressed variant of a catalog file.
	ZstdSuffix = ".zst"
)

// CatalogFilename returns the file name of a language's catalog.
func CatalogFilename(languageID string) string {
	return "bible-" + languageID + ".json"
}

// DirProvider reads catalog JSON files from a directory. Each file may also
// be stored zstd-compressed with a ".zst" suffix.
type DirProvider struct {
	dir string
}

// NewDirProvider creates a provider rooted at dir.
func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{dir: dir}
}

// Languages returns the languages listed in languages.json.
func (p *DirProvider) Languages(ctx context.Context) ([]domain.Language, error) {
	var languages []domain.Language
	if err := p.readJSON(ctx, LanguagesFilename, &languages); err != nil {
		return nil, err
	}
	return languages, nil
}

// Catalog returns the catalog of a language.
func (p *DirProvider) Catalog(ctx context.Context, languageID string) (*domain.Catalog, error) {
	if err := validLanguageID(languageID); err != nil {
		return nil, err
	}

	var c domain.Catalog
	err := p.readJSON(ctx, CatalogFilename(languageID), &c)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrLanguageNotFound, languageID)
	}
	if err != nil {
		return nil, err
	}
	if c.Language.ID == "" {
		c.Language.ID = languageID
	}
	return &c, nil
}

// Metadata returns the chapter and verse counts of every book.
func (p *DirProvider) Metadata(ctx context.Context) (map[string]domain.BookMetadata, error) {
	var metadata map[string]domain.BookMetadata
	if err := p.readJSON(ctx, MetadataFilename, &metadata); err != nil {
		return nil, err
	}
	if err := validateMetadata(metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}

// Close is a no-op; files are opened per read.
func (p *DirProvider) Close() error {
	return nil
}

// readJSON decodes name, falling back to its zstd-compressed variant.
func (p *DirProvider) readJSON(ctx context.Context, name string, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(p.dir, name)
	f, err := os.Open(path)
	compressed := false
	if errors.Is(err, os.ErrNotExist) {
		path += ZstdSuffix
		f, err = os.Open(path)
		compressed = true
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if compressed {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("failed to open zstd stream %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return nil
}
