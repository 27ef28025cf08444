package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDirProvider_Languages(t *testing.T) {
	dir := t.TempDir()
	WriteSampleDir(t, dir, false)

	p := NewDirProvider(dir)
	languages, err := p.Languages(context.Background())
	if err != nil {
		t.Fatalf("Languages failed: %v", err)
	}
	if len(languages) != 2 || languages[0].ID != "eng" || languages[1].ID != "spa" {
		t.Errorf("Unexpected languages: %+v", languages)
	}
}

func TestDirProvider_Catalog(t *testing.T) {
	dir := t.TempDir()
	WriteSampleDir(t, dir, false)

	p := NewDirProvider(dir)
	c, err := p.Catalog(context.Background(), "eng")
	if err != nil {
		t.Fatalf("Catalog failed: %v", err)
	}

	if len(c.Books) != 8 || c.Books[0].Name != "Genesis" {
		t.Errorf("Unexpected books: %+v", c.Books)
	}
	if len(c.Versions) != 4 || c.Versions[1].Name != "NIV" {
		t.Errorf("Unexpected versions: %+v", c.Versions)
	}
	if c.DefaultVersion != 111 {
		t.Errorf("DefaultVersion = %d, want 111", c.DefaultVersion)
	}
	if c.Versions[0].FullName != "New International Version (Anglicised)" {
		t.Errorf("FullName not decoded: %q", c.Versions[0].FullName)
	}
}

func TestDirProvider_CompressedCatalog(t *testing.T) {
	dir := t.TempDir()
	WriteSampleDir(t, dir, true)

	if _, err := os.Stat(filepath.Join(dir, CatalogFilename("spa")+ZstdSuffix)); err != nil {
		t.Fatalf("Expected compressed catalog on disk: %v", err)
	}

	p := NewDirProvider(dir)
	c, err := p.Catalog(context.Background(), "spa")
	if err != nil {
		t.Fatalf("Catalog failed: %v", err)
	}
	if c.Language.Name != "Español" || c.Books[0].Name != "Génesis" {
		t.Errorf("Unexpected catalog: %+v", c)
	}
}

func TestDirProvider_LanguageNotFound(t *testing.T) {
	dir := t.TempDir()
	WriteSampleDir(t, dir, false)

	p := NewDirProvider(dir)
	for _, lang := range []string{"deu", "../eng", ""} {
		_, err := p.Catalog(context.Background(), lang)
		if !errors.Is(err, ErrLanguageNotFound) {
			t.Errorf("Catalog(%q) error = %v, want ErrLanguageNotFound", lang, err)
		}
	}
}

func TestDirProvider_Malformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, CatalogFilename("eng")), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, MetadataFilename), []byte(`{"gen":{"chapters":2,"verses":[31]}}`), 0644); err != nil {
		t.Fatal(err)
	}

	p := NewDirProvider(dir)
	if _, err := p.Catalog(context.Background(), "eng"); !errors.Is(err, ErrMalformed) {
		t.Errorf("Catalog error = %v, want ErrMalformed", err)
	}
	if _, err := p.Metadata(context.Background()); !errors.Is(err, ErrMalformed) {
		t.Errorf("Metadata error = %v, want ErrMalformed", err)
	}
}

func TestDirProvider_MissingFiles(t *testing.T) {
	p := NewDirProvider(t.TempDir())

	if _, err := p.Languages(context.Background()); err == nil {
		t.Error("Expected error for missing languages file")
	}
	if _, err := p.Metadata(context.Background()); err == nil {
		t.Error("Expected error for missing metadata file")
	}
}

func TestDirProvider_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	WriteSampleDir(t, dir, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewDirProvider(dir).Metadata(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}
