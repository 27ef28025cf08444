package scripture

import (
	"context"
	"testing"

	"github.com/sha1n/mcp-scripture-server/internal/catalog"
	"github.com/sha1n/mcp-scripture-server/internal/domain"
)

func TestCreateIndexMapping(t *testing.T) {
	m := CreateIndexMapping()
	if m == nil {
		t.Fatal("Expected non-nil mapping")
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Mapping validation failed: %v", err)
	}
}

func TestNewVersionDocument(t *testing.T) {
	doc := NewVersionDocument(domain.Version{ID: 111, Name: "NIV", FullName: "New International Version"}, "eng")

	if doc.ID != "111" || doc.VersionID != 111 {
		t.Errorf("Unexpected ids: %+v", doc)
	}
	if doc.Name != "NIV" || doc.FullName != "New International Version" || doc.Language != "eng" {
		t.Errorf("Unexpected fields: %+v", doc)
	}
}

func TestBuildVersionIndex(t *testing.T) {
	c := catalog.SampleCatalogs()[0]

	index, err := BuildVersionIndex(c)
	if err != nil {
		t.Fatalf("BuildVersionIndex failed: %v", err)
	}
	defer func() { _ = index.Close() }()

	count, err := index.DocCount()
	if err != nil {
		t.Fatalf("DocCount failed: %v", err)
	}
	if count != uint64(len(c.Versions)) {
		t.Errorf("Expected %d documents, got %d", len(c.Versions), count)
	}
}

func TestBuildVersionIndex_LargeCatalog(t *testing.T) {
	c := &domain.Catalog{Language: domain.Language{ID: "eng"}}
	for i := 1; i <= MaxBatchSize*2+5; i++ {
		c.Versions = append(c.Versions, domain.Version{ID: i, Name: "V", FullName: "Version"})
	}

	index, err := BuildVersionIndex(c)
	if err != nil {
		t.Fatalf("BuildVersionIndex failed: %v", err)
	}
	defer func() { _ = index.Close() }()

	count, err := index.DocCount()
	if err != nil {
		t.Fatalf("DocCount failed: %v", err)
	}
	if count != uint64(len(c.Versions)) {
		t.Errorf("Expected %d documents, got %d", len(c.Versions), count)
	}
}

func TestService_SearchVersions(t *testing.T) {
	svc := newTestService(t, testSettings())
	ctx := context.Background()

	tests := []struct {
		name     string
		language string
		query    string
		want     []string
		first    string
	}{
		{name: "full name words", query: "king james", want: []string{"KJV"}, first: "KJV"},
		{name: "abbreviation", query: "esv", want: []string{"ESV"}, first: "ESV"},
		{name: "full name prefix", query: "inter", want: []string{"NIVUK", "NIV"}},
		{name: "abbreviation prefix", query: "niv", want: []string{"NIVUK", "NIV"}, first: "NIV"},
		{name: "other language", language: "spa", query: "reina", want: []string{"RVR1960"}, first: "RVR1960"},
		{name: "no match", query: "vulgate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			versions, err := svc.SearchVersions(ctx, tt.language, tt.query)
			if err != nil {
				t.Fatalf("SearchVersions failed: %v", err)
			}

			got := make(map[string]bool)
			for _, v := range versions {
				got[v.Name] = true
			}
			if len(got) != len(tt.want) {
				t.Errorf("SearchVersions(%q) = %+v, want %v", tt.query, versions, tt.want)
			}
			for _, name := range tt.want {
				if !got[name] {
					t.Errorf("Expected %s in results %+v", name, versions)
				}
			}
			if tt.first != "" && (len(versions) == 0 || versions[0].Name != tt.first) {
				t.Errorf("Expected %s first, got %+v", tt.first, versions)
			}
		})
	}
}

func TestService_SearchVersions_MaxResults(t *testing.T) {
	settings := testSettings()
	settings.MaxResults = 1
	svc := newTestService(t, settings)

	versions, err := svc.SearchVersions(context.Background(), "", "version")
	if err != nil {
		t.Fatalf("SearchVersions failed: %v", err)
	}
	if len(versions) != 1 {
		t.Errorf("Expected 1 result, got %d", len(versions))
	}
}

func TestService_SearchVersions_EmptyQuery(t *testing.T) {
	svc := newTestService(t, testSettings())

	versions, err := svc.SearchVersions(context.Background(), "", "   ")
	if err != nil {
		t.Fatalf("SearchVersions failed: %v", err)
	}
	if versions != nil {
		t.Errorf("Expected nil, got %+v", versions)
	}
}
