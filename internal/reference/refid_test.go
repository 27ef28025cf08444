package reference

import (
	"errors"
	"testing"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in       string
		version  int
		book     string
		chapter  int
		verse    any
		endVerse any
		abbr     string
	}{
		{"111/JHN.3.16", 111, "JHN", 3, 16, nil, ""},
		{"111/JHN.3.16-18", 111, "JHN", 3, 16, 18, ""},
		{"1/1CO.13", 1, "1CO", 13, nil, nil, ""},
		{"111/jhn.3.16.NIV", 111, "JHN", 3, 16, nil, "NIV"},
		{"111/JHN.3.NIV", 111, "JHN", 3, nil, nil, "NIV"},
		{"59/GEN", 59, "GEN", 1, nil, nil, ""},
		{" 111/PSA.0.0 ", 111, "PSA", 1, 1, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, err := ParseID(tt.in)
			if err != nil {
				t.Fatalf("ParseID(%q) failed: %v", tt.in, err)
			}
			if id.VersionID != tt.version || id.Book != tt.book || id.Chapter != tt.chapter {
				t.Errorf("ParseID(%q) = %+v", tt.in, id)
			}
			if optInt(id.Verse) != tt.verse || optInt(id.EndVerse) != tt.endVerse {
				t.Errorf("ParseID(%q) verses = %v-%v, want %v-%v", tt.in, optInt(id.Verse), optInt(id.EndVerse), tt.verse, tt.endVerse)
			}
			if id.VersionAbbr != tt.abbr {
				t.Errorf("VersionAbbr = %q, want %q", id.VersionAbbr, tt.abbr)
			}
		})
	}
}

func TestParseID_Invalid(t *testing.T) {
	inputs := []string{"", "JHN.3.16", "111", "111/", "111/JHN.3.16-", "abc/JHN.3"}

	for _, in := range inputs {
		_, err := ParseID(in)
		if err == nil {
			t.Errorf("ParseID(%q) expected error", in)
			continue
		}
		if !errors.Is(err, ErrInvalidID) {
			t.Errorf("ParseID(%q) error %v is not ErrInvalidID", in, err)
		}
	}
}

func TestIDFromURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.bible.com/bible/111/JHN.3.16.NIV", "111/JHN.3.16.NIV"},
		{"https://www.bible.com/bible/111/JHN.3.16/", "111/JHN.3.16"},
		{"/bible/59/GEN.1", "59/GEN.1"},
		{"111/JHN.3.16", "111/JHN.3.16"},
		{"JHN", "JHN"},
	}

	for _, tt := range tests {
		if got := IDFromURL(tt.in); got != tt.want {
			t.Errorf("IDFromURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseID_RoundTrip(t *testing.T) {
	for _, ref := range search("1co 13 4 7 niv", 111) {
		id, err := ParseID(IDFromURL(ref.URL))
		if err != nil {
			t.Fatalf("ParseID(%q) failed: %v", ref.URL, err)
		}
		if id.Book != "1CO" || id.Chapter != 13 || optInt(id.Verse) != 4 || optInt(id.EndVerse) != 7 {
			t.Errorf("Round trip mismatch: %+v", id)
		}
	}
}
