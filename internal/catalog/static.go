package catalog

import (
	"context"
	"fmt"

	"github.com/sha1n/mcp-scripture-server/internal/domain"
)

// StaticProvider serves catalogs held in memory.
type StaticProvider struct {
	languages []domain.Language
	catalogs  map[string]*domain.Catalog
	metadata  map[string]domain.BookMetadata
}

// NewStaticProvider creates a provider over the given catalogs. Languages
// are listed in the order of catalogs.
func NewStaticProvider(metadata map[string]domain.BookMetadata, catalogs ...*domain.Catalog) *StaticProvider {
	p := &StaticProvider{
		catalogs: make(map[string]*domain.Catalog, len(catalogs)),
		metadata: metadata,
	}
	for _, c := range catalogs {
		p.languages = append(p.languages, c.Language)
		p.catalogs[c.Language.ID] = c
	}
	return p
}

// Languages returns the languages of the held catalogs.
func (p *StaticProvider) Languages(_ context.Context) ([]domain.Language, error) {
	return p.languages, nil
}

// Catalog returns the held catalog of a language.
func (p *StaticProvider) Catalog(_ context.Context, languageID string) (*domain.Catalog, error) {
	c, ok := p.catalogs[languageID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLanguageNotFound, languageID)
	}
	return c, nil
}

// Metadata returns the held book metadata.
func (p *StaticProvider) Metadata(_ context.Context) (map[string]domain.BookMetadata, error) {
	if err := validateMetadata(p.metadata); err != nil {
		return nil, err
	}
	return p.metadata, nil
}

// Close is a no-op.
func (p *StaticProvider) Close() error {
	return nil
}
