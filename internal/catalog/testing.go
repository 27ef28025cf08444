package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/sha1n/mcp-scripture-server/internal/domain"
)

// SampleMetadata returns chapter and verse counts for the sample books.
// This is exported for use in tests of other packages.
func SampleMetadata() map[string]domain.BookMetadata {
	uniform := func(chapters, verses int) domain.BookMetadata {
		m := domain.BookMetadata{Chapters: chapters, Verses: make([]int, chapters)}
		for i := range m.Verses {
			m.Verses[i] = verses
		}
		return m
	}

	john := uniform(21, 25)
	john.Verses[2] = 36
	corinthians := uniform(16, 40)
	corinthians.Verses[12] = 13

	return map[string]domain.BookMetadata{
		"gen": uniform(50, 31),
		"jos": uniform(24, 30),
		"job": uniform(42, 22),
		"psa": uniform(150, 10),
		"sng": uniform(8, 17),
		"jhn": john,
		"1co": corinthians,
		"1jn": uniform(5, 21),
	}
}

// SampleCatalogs returns an English and a Spanish catalog.
func SampleCatalogs() []*domain.Catalog {
	return []*domain.Catalog{
		{
			Books: []domain.Book{
				{ID: "gen", Name: "Genesis"},
				{ID: "jos", Name: "Joshua"},
				{ID: "job", Name: "Job"},
				{ID: "psa", Name: "Psalms"},
				{ID: "sng", Name: "Song of Solomon"},
				{ID: "jhn", Name: "John"},
				{ID: "1co", Name: "1 Corinthians"},
				{ID: "1jn", Name: "1 John"},
			},
			Versions: []domain.Version{
				{ID: 113, Name: "NIVUK", FullName: "New International Version (Anglicised)"},
				{ID: 111, Name: "NIV", FullName: "New International Version"},
				{ID: 1, Name: "KJV", FullName: "King James Version"},
				{ID: 59, Name: "ESV", FullName: "English Standard Version"},
			},
			DefaultVersion: 111,
			Language:       domain.Language{ID: "eng", Name: "English"},
		},
		{
			Books: []domain.Book{
				{ID: "gen", Name: "Génesis"},
				{ID: "psa", Name: "Salmos"},
				{ID: "jhn", Name: "Juan"},
				{ID: "1jn", Name: "1 Juan"},
			},
			Versions: []domain.Version{
				{ID: 149, Name: "RVR1960", FullName: "Biblia Reina Valera 1960"},
				{ID: 128, Name: "NVI", FullName: "Nueva Versión Internacional"},
			},
			DefaultVersion: 149,
			Language:       domain.Language{ID: "spa", Name: "Español"},
		},
	}
}

// NewSampleProvider returns an in-memory provider over the sample data.
func NewSampleProvider() *StaticProvider {
	return NewStaticProvider(SampleMetadata(), SampleCatalogs()...)
}

// WriteSampleDir lays out the sample data as a catalog directory. When
// compressed is set, the Spanish catalog is written zstd-compressed.
func WriteSampleDir(t testing.TB, dir string, compressed bool) {
	t.Helper()

	catalogs := SampleCatalogs()
	languages := make([]domain.Language, 0, len(catalogs))
	for _, c := range catalogs {
		languages = append(languages, c.Language)
	}

	writeJSONFile(t, filepath.Join(dir, LanguagesFilename), languages, false)
	writeJSONFile(t, filepath.Join(dir, MetadataFilename), SampleMetadata(), false)
	for _, c := range catalogs {
		zst := compressed && c.Language.ID == "spa"
		writeJSONFile(t, filepath.Join(dir, CatalogFilename(c.Language.ID)), c, zst)
	}
}

func writeJSONFile(t testing.TB, path string, v any, compressed bool) {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal %s: %v", path, err)
	}

	if compressed {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			t.Fatalf("Failed to create zstd writer: %v", err)
		}
		data = enc.EncodeAll(data, nil)
		_ = enc.Close()
		path += ZstdSuffix
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}
