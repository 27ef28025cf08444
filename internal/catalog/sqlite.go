package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/sha1n/mcp-scripture-server/internal/domain"
	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS languages (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		language_id TEXT    NOT NULL,
		position    INTEGER NOT NULL,
		id          TEXT    NOT NULL,
		name        TEXT    NOT NULL,
		PRIMARY KEY (language_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS versions (
		language_id TEXT    NOT NULL,
		position    INTEGER NOT NULL,
		id          INTEGER NOT NULL,
		name        TEXT    NOT NULL,
		full_name   TEXT,
		is_default  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (language_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS book_metadata (
		book_id     TEXT    NOT NULL,
		chapter     INTEGER NOT NULL,
		verse_count INTEGER NOT NULL,
		PRIMARY KEY (book_id, chapter)
	)`,
}

// SQLiteProvider reads catalogs from a SQLite database.
type SQLiteProvider struct {
	db *sql.DB
}

// OpenSQLite opens an existing catalog database.
func OpenSQLite(path string) (*SQLiteProvider, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite catalog path cannot be empty")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open sqlite catalog: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite catalog: %w", err)
	}
	return &SQLiteProvider{db: db}, nil
}

// Languages returns all languages ordered by id.
func (p *SQLiteProvider) Languages(ctx context.Context) ([]domain.Language, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, name FROM languages ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query languages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var languages []domain.Language
	for rows.Next() {
		var l domain.Language
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("failed to scan language: %w", err)
		}
		languages = append(languages, l)
	}
	return languages, rows.Err()
}

// Catalog returns the catalog of a language with books and versions in
// their stored order.
func (p *SQLiteProvider) Catalog(ctx context.Context, languageID string) (*domain.Catalog, error) {
	c := &domain.Catalog{}
	err := p.db.QueryRowContext(ctx, `SELECT id, name FROM languages WHERE id = ?`, languageID).
		Scan(&c.Language.ID, &c.Language.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrLanguageNotFound, languageID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query language: %w", err)
	}

	books, err := p.db.QueryContext(ctx, `SELECT id, name FROM books WHERE language_id = ? ORDER BY position`, languageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer func() { _ = books.Close() }()
	for books.Next() {
		var b domain.Book
		if err := books.Scan(&b.ID, &b.Name); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		c.Books = append(c.Books, b)
	}
	if err := books.Err(); err != nil {
		return nil, err
	}

	versions, err := p.db.QueryContext(ctx, `SELECT id, name, full_name, is_default FROM versions WHERE language_id = ? ORDER BY position`, languageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer func() { _ = versions.Close() }()
	for versions.Next() {
		var (
			v         domain.Version
			fullName  sql.NullString
			isDefault bool
		)
		if err := versions.Scan(&v.ID, &v.Name, &fullName, &isDefault); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		v.FullName = fullName.String
		if isDefault {
			c.DefaultVersion = v.ID
		}
		c.Versions = append(c.Versions, v)
	}
	if err := versions.Err(); err != nil {
		return nil, err
	}

	return c, nil
}

// Metadata returns the chapter and verse counts of every book.
func (p *SQLiteProvider) Metadata(ctx context.Context) (map[string]domain.BookMetadata, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT book_id, chapter, verse_count FROM book_metadata ORDER BY book_id, chapter`)
	if err != nil {
		return nil, fmt.Errorf("failed to query book metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	metadata := make(map[string]domain.BookMetadata)
	for rows.Next() {
		var (
			bookID            string
			chapter, verseCnt int
		)
		if err := rows.Scan(&bookID, &chapter, &verseCnt); err != nil {
			return nil, fmt.Errorf("failed to scan book metadata: %w", err)
		}
		m := metadata[bookID]
		if chapter != m.Chapters+1 {
			return nil, fmt.Errorf("%w: book %q skips from chapter %d to %d", ErrMalformed, bookID, m.Chapters, chapter)
		}
		m.Chapters = chapter
		m.Verses = append(m.Verses, verseCnt)
		metadata[bookID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := validateMetadata(metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}

// Close closes the database.
func (p *SQLiteProvider) Close() error {
	return p.db.Close()
}

// ExportSQLite copies every language catalog and the book metadata of src
// into a SQLite database at path, replacing its previous content.
// Languages listed without a catalog are skipped.
func ExportSQLite(ctx context.Context, src Provider, path string) (err error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite catalog: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	languages, err := src.Languages(ctx)
	if err != nil {
		return fmt.Errorf("failed to load languages: %w", err)
	}
	metadata, err := src.Metadata(ctx)
	if err != nil {
		return fmt.Errorf("failed to load book metadata: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"languages", "books", "versions", "book_metadata"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, lang := range languages {
		c, err := src.Catalog(ctx, lang.ID)
		if errors.Is(err, ErrLanguageNotFound) {
			slog.Warn("Skipping language without catalog", "language", lang.ID)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to load catalog %s: %w", lang.ID, err)
		}
		if err := insertCatalog(ctx, tx, lang, c); err != nil {
			return err
		}
	}

	for bookID, m := range metadata {
		for i, n := range m.Verses {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO book_metadata (book_id, chapter, verse_count) VALUES (?, ?, ?)`,
				bookID, i+1, n); err != nil {
				return fmt.Errorf("failed to insert metadata for %s: %w", bookID, err)
			}
		}
	}

	return tx.Commit()
}

func insertCatalog(ctx context.Context, tx *sql.Tx, lang domain.Language, c *domain.Catalog) error {
	if _, err := tx.ExecContext(ctx, `INSERT INTO languages (id, name) VALUES (?, ?)`, lang.ID, lang.Name); err != nil {
		return fmt.Errorf("failed to insert language %s: %w", lang.ID, err)
	}
	for i, b := range c.Books {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO books (language_id, position, id, name) VALUES (?, ?, ?, ?)`,
			lang.ID, i, b.ID, b.Name); err != nil {
			return fmt.Errorf("failed to insert book %s: %w", b.ID, err)
		}
	}
	for i, v := range c.Versions {
		isDefault := 0
		if v.ID == c.DefaultVersion {
			isDefault = 1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO versions (language_id, position, id, name, full_name, is_default) VALUES (?, ?, ?, ?, ?, ?)`,
			lang.ID, i, v.ID, v.Name, v.FullName, isDefault); err != nil {
			return fmt.Errorf("failed to insert version %d: %w", v.ID, err)
		}
	}
	return nil
}
