package reference

import "github.com/sha1n/mcp-scripture-server/internal/domain"

func uniformMetadata(chapters, verses int) domain.BookMetadata {
	m := domain.BookMetadata{Chapters: chapters, Verses: make([]int, chapters)}
	for i := range m.Verses {
		m.Verses[i] = verses
	}
	return m
}

func testBooks() []domain.Book {
	return []domain.Book{
		{ID: "gen", Name: "Genesis"},
		{ID: "exo", Name: "Exodus"},
		{ID: "jos", Name: "Joshua"},
		{ID: "job", Name: "Job"},
		{ID: "psa", Name: "Psalms"},
		{ID: "sng", Name: "Song of Solomon"},
		{ID: "jon", Name: "Jonah"},
		{ID: "jhn", Name: "John"},
		{ID: "1co", Name: "1 Corinthians"},
		{ID: "1jn", Name: "1 John"},
	}
}

func testMetadata() map[string]domain.BookMetadata {
	john := uniformMetadata(21, 25)
	john.Verses[2] = 36
	corinthians := uniformMetadata(16, 40)
	corinthians.Verses[12] = 13

	return map[string]domain.BookMetadata{
		"gen": uniformMetadata(50, 31),
		"exo": uniformMetadata(40, 30),
		"jos": uniformMetadata(24, 30),
		"job": uniformMetadata(42, 22),
		"psa": uniformMetadata(150, 10),
		"sng": uniformMetadata(8, 17),
		"jon": uniformMetadata(4, 11),
		"jhn": john,
		"1co": corinthians,
		"1jn": uniformMetadata(5, 21),
	}
}

func testVersions() []domain.Version {
	return []domain.Version{
		{ID: 113, Name: "NIVUK", FullName: "New International Version (Anglicised)"},
		{ID: 111, Name: "NIV", FullName: "New International Version"},
		{ID: 1, Name: "KJV", FullName: "King James Version"},
		{ID: 59, Name: "ESV", FullName: "English Standard Version"},
		{ID: 1588, Name: "AMP", FullName: "Amplified Bible"},
	}
}

func testCatalog() *domain.Catalog {
	return &domain.Catalog{
		Books:          testBooks(),
		Versions:       testVersions(),
		DefaultVersion: 111,
		Language:       domain.Language{ID: "eng", Name: "English"},
	}
}
