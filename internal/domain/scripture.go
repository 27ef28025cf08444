package domain

import "strings"

// Book is a catalog entry for a single book of the Bible.
type Book struct {
	// ID is the stable catalog key, lower-case in catalog files.
	// Example: "jhn", "1co"
	ID string `json:"id"`

	// Name is the localized display name.
	// Example: "John", "1 Corinthians"
	Name string `json:"name"`
}

// BookMetadata holds the chapter and verse counts of a book.
type BookMetadata struct {
	// Chapters is the number of chapters in the book.
	Chapters int `json:"chapters"`

	// Verses holds the verse count of each chapter, in chapter order.
	Verses []int `json:"verses"`
}

// VerseCount returns the number of verses in the given 1-based chapter.
func (m BookMetadata) VerseCount(chapter int) (int, bool) {
	if chapter < 1 || chapter > m.Chapters || chapter > len(m.Verses) {
		return 0, false
	}
	return m.Verses[chapter-1], true
}

// Valid reports whether the metadata satisfies the catalog invariants.
func (m BookMetadata) Valid() bool {
	if m.Chapters < 1 || len(m.Verses) != m.Chapters {
		return false
	}
	for _, n := range m.Verses {
		if n < 1 {
			return false
		}
	}
	return true
}

// Version is a named Bible translation.
type Version struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

// Language selects which catalog snapshot is active.
type Language struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Catalog is the per-language snapshot of books and versions.
// It is read-only once loaded.
type Catalog struct {
	Books          []Book    `json:"books"`
	Versions       []Version `json:"versions"`
	DefaultVersion int       `json:"default_version"`
	Language       Language  `json:"language"`
}

// VersionByID looks up a version by its numeric id.
func (c *Catalog) VersionByID(id int) (Version, bool) {
	for _, v := range c.Versions {
		if v.ID == id {
			return v, true
		}
	}
	return Version{}, false
}

// BookByID looks up a book by id, ignoring case.
func (c *Catalog) BookByID(id string) (Book, bool) {
	for _, b := range c.Books {
		if strings.EqualFold(b.ID, id) {
			return b, true
		}
	}
	return Book{}, false
}

// SearchParams is the result of parsing a normalized query.
type SearchParams struct {
	// Book is the book fragment, never empty.
	Book string `json:"book"`

	Chapter  *int `json:"chapter,omitempty"`
	Verse    *int `json:"verse,omitempty"`
	EndVerse *int `json:"end_verse,omitempty"`

	// Version is the normalized version fragment, empty when absent.
	Version string `json:"version,omitempty"`
}

// BookMatch is a book that matched a book fragment.
// Lower Priority values rank first.
type BookMatch struct {
	Book     Book
	Priority int
	Metadata BookMetadata
}

// Reference is a fully resolved, canonical scripture reference.
type Reference struct {
	// ID has the form "{version}/{BOOK}.{chapter}[.{verse}[-{endVerse}]]".
	ID string `json:"id"`

	// Name is the display form, e.g. "John 3:16-17".
	Name string `json:"name"`

	URL      string  `json:"url"`
	Book     Book    `json:"book"`
	Chapter  int     `json:"chapter"`
	Verse    *int    `json:"verse,omitempty"`
	EndVerse *int    `json:"end_verse,omitempty"`
	Version  Version `json:"version"`
}

// Equal reports whether two references denote the same passage.
func (r Reference) Equal(other Reference) bool {
	return r.ID == other.ID
}

// String returns the display name followed by the version abbreviation.
func (r Reference) String() string {
	return r.Name + " (" + r.Version.Name + ")"
}

// VersionDocument is a version as stored in the version search index.
type VersionDocument struct {
	ID        string `json:"id"`
	VersionID int    `json:"version_id"`
	Name      string `json:"name"`
	FullName  string `json:"full_name"`
	Language  string `json:"language"`
}

// Bleve field name constants for version documents.
const (
	VersionFieldID        = "id"
	VersionFieldVersionID = "version_id"
	VersionFieldName      = "name"
	VersionFieldFullName  = "full_name"
	VersionFieldLanguage  = "language"
)
