// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/scrap-export/pkg/types"
)

const (
	indexDir    = "index"
	catalogFile = "catalog.db"
)

// CatalogEntry summarizes one stored scrap and where it was last exported.
type CatalogEntry struct {
	Slug     string `json:"slug" yaml:"slug"`
	Title    string `json:"title" yaml:"title"`
	Created  string `json:"created" yaml:"created"`
	Updated  string `json:"updated" yaml:"updated"`
	Comments int    `json:"comments" yaml:"comments"`
	Closed   bool   `json:"closed" yaml:"closed"`
	Archived bool   `json:"archived" yaml:"archived"`

	// RecordModTime is the record file's modification time (RFC3339Nano)
	// when the entry was written.
	RecordModTime string `json:"record_mod_time" yaml:"record_mod_time"`

	// OutputFile is the document file name of the last export, if any.
	OutputFile string `json:"output_file,omitempty" yaml:"output_file,omitempty"`
}

// Catalog is the SQLite index at <store dir>/index/catalog.db.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens or creates the catalog database and its schema.
func OpenCatalog(cfg types.StoreConfig) (*Catalog, error) {
	dbDir := filepath.Join(cfg.Dir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating index directory: %v", ErrNotWritable, err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dbDir, catalogFile)+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	db.SetMaxOpenConns(1)

	c := &Catalog{db: db}
	if err := c.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating catalog schema: %w", err)
	}
	return c, nil
}

// Close releases the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS scraps (
			slug TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			created TEXT,
			updated TEXT,
			comments INTEGER NOT NULL DEFAULT 0,
			closed INTEGER NOT NULL DEFAULT 0,
			archived INTEGER NOT NULL DEFAULT 0,
			record_mod_time TEXT,
			output_file TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scraps_updated ON scraps(updated)`,
	}
	for _, stmt := range statements {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Upsert inserts or replaces the entry for e.Slug.
func (c *Catalog) Upsert(ctx context.Context, e CatalogEntry) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO scraps (slug, title, created, updated, comments, closed, archived, record_mod_time, output_file)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(slug) DO UPDATE SET
			title=excluded.title, created=excluded.created, updated=excluded.updated,
			comments=excluded.comments, closed=excluded.closed, archived=excluded.archived,
			record_mod_time=excluded.record_mod_time, output_file=excluded.output_file`,
		e.Slug, e.Title, e.Created, e.Updated, e.Comments,
		boolInt(e.Closed), boolInt(e.Archived), e.RecordModTime, e.OutputFile,
	)
	if err != nil {
		return fmt.Errorf("upserting %s: %w", e.Slug, err)
	}
	return nil
}

// Get returns the entry for slug, or ErrNotFound.
func (c *Catalog) Get(ctx context.Context, slug string) (CatalogEntry, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT slug, title, created, updated, comments, closed, archived, record_mod_time, output_file
		 FROM scraps WHERE slug = ?`, slug)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return CatalogEntry{}, fmt.Errorf("%w: catalog entry %s", ErrNotFound, slug)
	}
	if err != nil {
		return CatalogEntry{}, fmt.Errorf("reading catalog entry %s: %w", slug, err)
	}
	return e, nil
}

// List returns every entry, most recently updated first.
func (c *Catalog) List(ctx context.Context) ([]CatalogEntry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT slug, title, created, updated, comments, closed, archived, record_mod_time, output_file
		 FROM scraps ORDER BY updated DESC, slug ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing catalog: %w", err)
	}
	defer rows.Close()

	var entries []CatalogEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning catalog row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes the entry for slug. Deleting a missing entry is not an error.
func (c *Catalog) Delete(ctx context.Context, slug string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM scraps WHERE slug = ?`, slug); err != nil {
		return fmt.Errorf("deleting %s: %w", slug, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (CatalogEntry, error) {
	var e CatalogEntry
	var created, updated, modTime, output sql.NullString
	var closed, archived int
	err := r.Scan(&e.Slug, &e.Title, &created, &updated, &e.Comments,
		&closed, &archived, &modTime, &output)
	if err != nil {
		return CatalogEntry{}, err
	}
	e.Created = created.String
	e.Updated = updated.String
	e.RecordModTime = modTime.String
	e.OutputFile = output.String
	e.Closed = closed != 0
	e.Archived = archived != 0
	return e, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// FormatModTime renders a record modification time the way the catalog
// stores it.
func FormatModTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
