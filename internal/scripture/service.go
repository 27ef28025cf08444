// Package scripture serves scripture references from a catalog provider.
// It caches one catalog snapshot and version index per language and feeds
// them to the reference pipeline as immutable inputs.
package scripture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/sha1n/mcp-scripture-server/internal/catalog"
	"github.com/sha1n/mcp-scripture-server/internal/config"
	"github.com/sha1n/mcp-scripture-server/internal/domain"
	"github.com/sha1n/mcp-scripture-server/internal/reference"
)

var (
	// ErrUnknownVersion indicates a version id the catalog does not carry.
	ErrUnknownVersion = errors.New("unknown version")

	// ErrUnknownBook indicates a book id the catalog does not carry.
	ErrUnknownBook = errors.New("unknown book")
)

// Options overrides the configured preferences for a single search.
// Zero values fall back to the preferences.
type Options struct {
	LanguageID string
	VersionID  int
}

// languageState is the cached snapshot of one language.
type languageState struct {
	catalog *domain.Catalog
	index   bleve.Index
}

// Service resolves queries against catalogs loaded from a provider.
type Service struct {
	settings  *config.Settings
	provider  catalog.Provider
	resolver  *reference.Resolver
	languages map[string]*languageState
	metadata  map[string]domain.BookMetadata
	mu        sync.RWMutex
}

// NewService creates a new scripture service. The service owns the
// provider and closes it on Close.
func NewService(settings *config.Settings, provider catalog.Provider) (*Service, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings cannot be nil")
	}
	if provider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	return &Service{
		settings:  settings,
		provider:  provider,
		resolver:  reference.NewResolver(settings.Reference.BaseURL),
		languages: make(map[string]*languageState),
	}, nil
}

// Search resolves a free-text query into ranked references. A query that
// does not parse, or names nothing in the catalog, yields no references
// and no error.
func (s *Service) Search(ctx context.Context, query string, opts Options) ([]domain.Reference, error) {
	lang := s.languageID(opts.LanguageID)

	state, err := s.load(ctx, lang)
	if err != nil {
		return nil, err
	}
	metadata, err := s.bookMetadata(ctx)
	if err != nil {
		return nil, err
	}

	refs, ok := s.resolver.Search(reference.Query{
		Text:               query,
		Catalog:            state.catalog,
		Metadata:           metadata,
		PreferredVersionID: s.preferredVersionID(state.catalog, opts.VersionID),
	})
	if !ok {
		slog.DebugContext(ctx, "Query did not parse", "query", query)
		return nil, nil
	}
	slog.DebugContext(ctx, "Query resolved", "query", query, "language", lang, "results", len(refs))
	return refs, nil
}

// Lookup resolves a canonical reference id or a reference URL. Chapter
// and verses are clamped to the book like Search does.
func (s *Service) Lookup(ctx context.Context, idOrURL, languageID string) (domain.Reference, error) {
	id, err := reference.ParseID(reference.IDFromURL(idOrURL))
	if err != nil {
		return domain.Reference{}, err
	}

	state, err := s.load(ctx, s.languageID(languageID))
	if err != nil {
		return domain.Reference{}, err
	}
	metadata, err := s.bookMetadata(ctx)
	if err != nil {
		return domain.Reference{}, err
	}

	version, ok := state.catalog.VersionByID(id.VersionID)
	if !ok {
		return domain.Reference{}, fmt.Errorf("%w: %d", ErrUnknownVersion, id.VersionID)
	}
	book, ok := state.catalog.BookByID(id.Book)
	if !ok {
		return domain.Reference{}, fmt.Errorf("%w: %s", ErrUnknownBook, id.Book)
	}

	params := domain.SearchParams{
		Book:     book.ID,
		Chapter:  &id.Chapter,
		Verse:    id.Verse,
		EndVerse: id.EndVerse,
	}
	match := domain.BookMatch{Book: book, Metadata: metadata[book.ID]}
	refs := s.resolver.Resolve([]domain.BookMatch{match}, params, &version)
	if len(refs) == 0 {
		return domain.Reference{}, fmt.Errorf("%w: no chapter data for %s", ErrUnknownBook, id.Book)
	}
	return refs[0], nil
}

// Versions returns the versions of a language in catalog order.
func (s *Service) Versions(ctx context.Context, languageID string) ([]domain.Version, error) {
	state, err := s.load(ctx, s.languageID(languageID))
	if err != nil {
		return nil, err
	}
	return state.catalog.Versions, nil
}

// SearchVersions full-text searches the names of a language's versions.
// At most max_results versions are returned, best match first.
func (s *Service) SearchVersions(ctx context.Context, languageID, query string) ([]domain.Version, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	state, err := s.load(ctx, s.languageID(languageID))
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if state.index == nil {
		return nil, fmt.Errorf("version index is closed")
	}

	ids, err := searchVersionIndex(state.index, query, s.settings.MaxResults)
	if err != nil {
		return nil, err
	}

	versions := make([]domain.Version, 0, len(ids))
	for _, id := range ids {
		if v, ok := state.catalog.VersionByID(id); ok {
			versions = append(versions, v)
		}
	}
	return versions, nil
}

// Languages returns the languages the provider offers.
func (s *Service) Languages(ctx context.Context) ([]domain.Language, error) {
	return s.provider.Languages(ctx)
}

// DefaultVersion returns the version used when a query names none.
func (s *Service) DefaultVersion(ctx context.Context, languageID string) (domain.Version, error) {
	state, err := s.load(ctx, s.languageID(languageID))
	if err != nil {
		return domain.Version{}, err
	}

	id := s.preferredVersionID(state.catalog, 0)
	v, ok := state.catalog.VersionByID(id)
	if !ok {
		return domain.Version{}, fmt.Errorf("%w: %d", ErrUnknownVersion, id)
	}
	return v, nil
}

// Settings returns the service settings.
func (s *Service) Settings() *config.Settings {
	return s.settings
}

// Close releases all indexes and the provider.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for lang, state := range s.languages {
		if state.index == nil {
			continue
		}
		if err := state.index.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s index: %w", lang, err))
		}
		state.index = nil
	}
	s.languages = make(map[string]*languageState)

	if err := s.provider.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close provider: %w", err))
	}
	return errors.Join(errs...)
}

// languageID applies the preferred language to an empty id.
func (s *Service) languageID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return s.settings.Preferences.Language
	}
	return id
}

// preferredVersionID picks the explicit version, then the configured one
// when the catalog carries it, then the catalog default.
func (s *Service) preferredVersionID(c *domain.Catalog, explicit int) int {
	if explicit != 0 {
		return explicit
	}
	if pref := s.settings.Preferences.Version; pref != 0 {
		if _, ok := c.VersionByID(pref); ok {
			return pref
		}
	}
	return c.DefaultVersion
}

// load returns the cached state of a language, loading it on first use.
func (s *Service) load(ctx context.Context, lang string) (*languageState, error) {
	s.mu.RLock()
	state, ok := s.languages[lang]
	s.mu.RUnlock()
	if ok {
		return state, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.languages[lang]; ok {
		return state, nil
	}

	c, err := s.provider.Catalog(ctx, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	index, err := BuildVersionIndex(c)
	if err != nil {
		return nil, fmt.Errorf("failed to index versions: %w", err)
	}

	state = &languageState{catalog: c, index: index}
	s.languages[lang] = state
	slog.InfoContext(ctx, "Catalog loaded", "language", lang, "books", len(c.Books), "versions", len(c.Versions))
	return state, nil
}

// bookMetadata returns the cached book metadata, loading it on first use.
func (s *Service) bookMetadata(ctx context.Context) (map[string]domain.BookMetadata, error) {
	s.mu.RLock()
	metadata := s.metadata
	s.mu.RUnlock()
	if metadata != nil {
		return metadata, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.metadata != nil {
		return s.metadata, nil
	}

	metadata, err := s.provider.Metadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load book metadata: %w", err)
	}

	s.metadata = metadata
	slog.InfoContext(ctx, "Book metadata loaded", "books", len(metadata))
	return metadata, nil
}
