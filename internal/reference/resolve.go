package reference

import (
	"strconv"
	"strings"

	"github.com/sha1n/mcp-scripture-server/internal/domain"
)

// DefaultBaseURL is the prefix of the canonical reference URL.
const DefaultBaseURL = "https://www.bible.com/bible/"

// Resolver builds canonical references. It holds no mutable state and is
// safe for concurrent use.
type Resolver struct {
	baseURL string
}

// NewResolver creates a resolver producing URLs under baseURL.
// An empty baseURL selects DefaultBaseURL.
func NewResolver(baseURL string) *Resolver {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Resolver{baseURL: baseURL}
}

// Query is the input of a full search.
type Query struct {
	// Text is the raw query as typed.
	Text string

	Catalog  *domain.Catalog
	Metadata map[string]domain.BookMetadata

	// PreferredVersionID is used when the query names no version.
	PreferredVersionID int
}

// Search runs the whole pipeline: normalize, parse, match books and the
// version, then resolve. It reports false when the query does not parse;
// a parsed query that names nothing in the catalog yields no references.
func (r *Resolver) Search(q Query) ([]domain.Reference, bool) {
	params, ok := Parse(Normalize(q.Text))
	if !ok {
		return nil, false
	}
	if q.Catalog == nil {
		return nil, true
	}

	var version domain.Version
	if params.Version != "" {
		version, ok = MatchVersion(q.Catalog.Versions, params.Version)
	} else {
		version, ok = q.Catalog.VersionByID(q.PreferredVersionID)
	}
	if !ok {
		return nil, true
	}

	matches := MatchBooks(q.Catalog.Books, params.Book, q.Metadata)
	return r.Resolve(matches, params, &version), true
}

// Resolve turns book matches into references, in match order, clamping
// chapter and verses to the book's metadata. A nil version yields nothing.
// Matches whose metadata cannot bound the chapter are skipped.
func (r *Resolver) Resolve(matches []domain.BookMatch, params domain.SearchParams, version *domain.Version) []domain.Reference {
	if version == nil {
		return nil
	}

	refs := make([]domain.Reference, 0, len(matches))
	for _, m := range matches {
		if m.Metadata.Chapters < 1 {
			continue
		}
		chapter := 1
		if params.Chapter != nil {
			chapter = *params.Chapter
		}
		chapter = min(chapter, m.Metadata.Chapters)

		lastVerse, ok := m.Metadata.VerseCount(chapter)
		if !ok {
			continue
		}

		var verse, endVerse *int
		if params.Verse != nil {
			verse = intPtr(min(*params.Verse, lastVerse))
			if params.EndVerse != nil {
				endVerse = intPtr(min(*params.EndVerse, lastVerse))
			}
		}

		refs = append(refs, r.Build(m.Book, chapter, verse, endVerse, *version))
	}
	return refs
}

// Build assembles a reference from already-clamped parts.
func (r *Resolver) Build(book domain.Book, chapter int, verse, endVerse *int, version domain.Version) domain.Reference {
	passage := strconv.Itoa(chapter)
	id := strconv.Itoa(version.ID) + "/" + strings.ToUpper(book.ID) + "." + passage
	name := book.Name + " " + passage

	if verse != nil {
		id += "." + strconv.Itoa(*verse)
		name += ":" + strconv.Itoa(*verse)
		if endVerse != nil {
			id += "-" + strconv.Itoa(*endVerse)
			name += "-" + strconv.Itoa(*endVerse)
		}
	} else {
		endVerse = nil
	}

	return domain.Reference{
		ID:       id,
		Name:     name,
		URL:      r.baseURL + id,
		Book:     book,
		Chapter:  chapter,
		Verse:    verse,
		EndVerse: endVerse,
		Version:  version,
	}
}
