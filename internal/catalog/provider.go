// Package catalog loads the per-language book and version catalogs and the
// chapter/verse metadata the resolver clamps against.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/sha1n/mcp-scripture-server/internal/config"
	"github.com/sha1n/mcp-scripture-server/internal/domain"
)

var (
	// ErrLanguageNotFound indicates the provider has no catalog for a language.
	ErrLanguageNotFound = errors.New("language not found")

	// ErrMalformed indicates catalog data that cannot be decoded or breaks
	// the metadata invariants.
	ErrMalformed = errors.New("malformed catalog data")
)

// Provider is a read-only source of catalog data.
type Provider interface {
	Languages(ctx context.Context) ([]domain.Language, error)
	Catalog(ctx context.Context, languageID string) (*domain.Catalog, error)
	Metadata(ctx context.Context) (map[string]domain.BookMetadata, error)
	Close() error
}

var languageIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// validLanguageID guards file and query lookups keyed by language id.
func validLanguageID(id string) error {
	if !languageIDPattern.MatchString(id) {
		return fmt.Errorf("%w: invalid language id %q", ErrLanguageNotFound, id)
	}
	return nil
}

// Open creates the provider selected by the catalog settings.
func Open(settings *config.CatalogSettings) (Provider, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings cannot be nil")
	}

	switch settings.Driver {
	case config.CatalogDriverJSON, "":
		return NewDirProvider(settings.Dir), nil
	case config.CatalogDriverSQLite:
		return OpenSQLite(settings.DSN)
	default:
		return nil, fmt.Errorf("unknown catalog driver: %s", settings.Driver)
	}
}

// validateMetadata checks every entry against the metadata invariants.
func validateMetadata(metadata map[string]domain.BookMetadata) error {
	for id, m := range metadata {
		if !m.Valid() {
			return fmt.Errorf("%w: metadata for book %q has %d chapters and %d verse counts", ErrMalformed, id, m.Chapters, len(m.Verses))
		}
	}
	return nil
}
