package app

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sha1n/mcp-scripture-server/internal/catalog"
	"github.com/sha1n/mcp-scripture-server/internal/domain"
	"github.com/spf13/cobra"
)

// runCommand executes a subcommand under a root carrying the shared flags
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := &cobra.Command{Use: "scripture-mcp", SilenceUsage: true, SilenceErrors: true}
	RegisterFlags(root.PersistentFlags())
	root.AddCommand(NewCommands()...)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func sampleCatalogDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	catalog.WriteSampleDir(t, dir, true)
	return dir
}

func TestResolveCommand(t *testing.T) {
	dir := sampleCatalogDir(t)

	out, err := runCommand(t, "resolve", "--catalog-dir", dir, "john", "3", "16")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 references, got: %q", out)
	}
	if lines[0] != "1. John 3:16 (NIV)  https://www.bible.com/bible/111/JHN.3.16" {
		t.Errorf("Unexpected first line: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2. 1 John 3:16 (NIV)") {
		t.Errorf("Unexpected second line: %q", lines[1])
	}
}

func TestResolveCommand_Preferences(t *testing.T) {
	dir := sampleCatalogDir(t)

	out, err := runCommand(t, "resolve", "-d", dir, "-l", "spa", "--version-id", "128", "salmos 23")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !strings.Contains(out, "Salmos 23 (NVI)  https://www.bible.com/bible/128/PSA.23") {
		t.Errorf("Unexpected output: %q", out)
	}
}

func TestResolveCommand_JSON(t *testing.T) {
	dir := sampleCatalogDir(t)

	out, err := runCommand(t, "resolve", "-d", dir, "--json", "1 Co 13:4-7 kjv")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	var refs []domain.Reference
	if err := json.Unmarshal([]byte(out), &refs); err != nil {
		t.Fatalf("Invalid JSON output %q: %v", out, err)
	}
	if len(refs) != 1 || refs[0].ID != "1/1CO.13.4-7" {
		t.Errorf("Unexpected references: %+v", refs)
	}
	if refs[0].Verse == nil || *refs[0].Verse != 4 || refs[0].EndVerse == nil || *refs[0].EndVerse != 7 {
		t.Errorf("Unexpected verses: %+v", refs[0])
	}
}

func TestResolveCommand_NoResults(t *testing.T) {
	dir := sampleCatalogDir(t)

	out, err := runCommand(t, "resolve", "-d", dir, "revelation")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if strings.TrimSpace(out) != "No references found" {
		t.Errorf("Unexpected output: %q", out)
	}

	out, err = runCommand(t, "resolve", "-d", dir, "--json", "revelation")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("Expected empty JSON array, got: %q", out)
	}
}

func TestResolveCommand_RequiresQuery(t *testing.T) {
	if _, err := runCommand(t, "resolve"); err == nil {
		t.Error("Expected error without query")
	}
}

func TestResolveCommand_InvalidConfig(t *testing.T) {
	_, err := runCommand(t, "resolve", "--catalog-driver", "xml", "john")
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("Expected invalid configuration error, got: %v", err)
	}
}

func TestLookupCommand(t *testing.T) {
	dir := sampleCatalogDir(t)

	out, err := runCommand(t, "lookup", "-d", dir, "https://www.bible.com/bible/1/1CO.13.4-7.KJV")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if strings.TrimSpace(out) != "1 Corinthians 13:4-7 (KJV)  https://www.bible.com/bible/1/1CO.13.4-7" {
		t.Errorf("Unexpected output: %q", out)
	}
}

func TestLookupCommand_Invalid(t *testing.T) {
	dir := sampleCatalogDir(t)

	if _, err := runCommand(t, "lookup", "-d", dir, "not-a-reference"); err == nil {
		t.Error("Expected error for invalid reference")
	}
}

func TestVersionsCommand(t *testing.T) {
	dir := sampleCatalogDir(t)

	out, err := runCommand(t, "versions", "-d", dir)
	if err != nil {
		t.Fatalf("versions failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 versions, got: %q", out)
	}
	for _, line := range lines {
		isDefault := strings.HasPrefix(line, "*")
		if isDefault != strings.Contains(line, " NIV ") {
			t.Errorf("Unexpected default marker in line %q", line)
		}
	}
}

func TestVersionsCommand_Query(t *testing.T) {
	dir := sampleCatalogDir(t)

	out, err := runCommand(t, "versions", "-d", dir, "--query", "king james", "--json")
	if err != nil {
		t.Fatalf("versions failed: %v", err)
	}

	var versions []domain.Version
	if err := json.Unmarshal([]byte(out), &versions); err != nil {
		t.Fatalf("Invalid JSON output %q: %v", out, err)
	}
	if len(versions) != 1 || versions[0].Name != "KJV" {
		t.Errorf("Unexpected versions: %+v", versions)
	}
}

func TestLanguagesCommand(t *testing.T) {
	dir := sampleCatalogDir(t)

	out, err := runCommand(t, "languages", "-d", dir)
	if err != nil {
		t.Fatalf("languages failed: %v", err)
	}
	if out != "eng\tEnglish\nspa\tEspañol\n" {
		t.Errorf("Unexpected output: %q", out)
	}
}

func TestExportSQLiteCommand(t *testing.T) {
	dir := sampleCatalogDir(t)
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	out, err := runCommand(t, "export-sqlite", "-d", dir, "--out", dbPath)
	if err != nil {
		t.Fatalf("export-sqlite failed: %v", err)
	}
	if !strings.Contains(out, dbPath) {
		t.Errorf("Unexpected output: %q", out)
	}

	out, err = runCommand(t, "resolve", "--catalog-driver", "sqlite", "--catalog-dsn", dbPath, "-l", "spa", "juan 3 16")
	if err != nil {
		t.Fatalf("resolve from sqlite failed: %v", err)
	}
	if !strings.Contains(out, "1. Juan 3:16 (RVR1960)  https://www.bible.com/bible/149/JHN.3.16") {
		t.Errorf("Unexpected output: %q", out)
	}
}

func TestExportSQLiteCommand_RequiresOut(t *testing.T) {
	dir := sampleCatalogDir(t)

	if _, err := runCommand(t, "export-sqlite", "-d", dir); err == nil {
		t.Error("Expected error without --out")
	}
}
