// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists scrap records as one JSON file per slug and keeps a
// SQLite catalog of what has been stored and exported.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/scrap-export/pkg/types"
)

const recordExt = ".json"

var (
	// ErrNotFound is returned when the store directory or a record is missing.
	ErrNotFound = errors.New("not found")

	// ErrNotWritable is returned when a record cannot be persisted.
	ErrNotWritable = errors.New("store not writable")

	// ErrMalformedRecord is returned when stored or fetched bytes do not
	// decode into a valid scrap.
	ErrMalformedRecord = errors.New("malformed scrap record")

	// ErrInvalidSlug is returned for slugs that cannot be used as file names.
	ErrInvalidSlug = errors.New("invalid slug")
)

// Entry is a stored record together with its key and file modification time.
type Entry struct {
	Slug    string
	Scrap   *types.Scrap
	ModTime time.Time
}

// Store reads and writes scrap records under a single directory.
type Store struct {
	dir string
}

// New returns a Store rooted at cfg.Dir. The directory is created lazily on
// the first write.
func New(cfg types.StoreConfig) *Store {
	return &Store{dir: cfg.Dir}
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the record file path for slug.
func (s *Store) Path(slug string) string {
	return filepath.Join(s.dir, slug+recordExt)
}

// Put marshals scrap and writes it under slug, replacing any previous record.
func (s *Store) Put(slug string, scrap *types.Scrap) error {
	if scrap == nil {
		return fmt.Errorf("%w: %s: nil record", ErrMalformedRecord, slug)
	}
	data, err := json.Marshal(scrap)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedRecord, slug, err)
	}
	return s.write(slug, data)
}

// PutRaw writes data verbatim under slug after checking that it decodes into
// a valid scrap. Nothing is written for malformed data.
func (s *Store) PutRaw(slug string, data []byte) error {
	if _, err := Decode(data); err != nil {
		return fmt.Errorf("%s: %w", slug, err)
	}
	return s.write(slug, data)
}

// write stores data through a temporary file renamed into place, so readers
// never observe a partial record.
func (s *Store) write(slug string, data []byte) error {
	if err := ValidateSlug(slug); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", ErrNotWritable, s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, ".put-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", ErrNotWritable, err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: writing %s: %v", ErrNotWritable, slug, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: closing %s: %v", ErrNotWritable, slug, closeErr)
	}

	if err := os.Rename(tmpPath, s.Path(slug)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: renaming %s: %v", ErrNotWritable, slug, err)
	}
	return nil
}

// Has reports whether a record exists for slug.
func (s *Store) Has(slug string) bool {
	if ValidateSlug(slug) != nil {
		return false
	}
	info, err := os.Stat(s.Path(slug))
	return err == nil && info.Mode().IsRegular()
}

// Get reads and decodes the record for slug.
func (s *Store) Get(slug string) (*types.Scrap, error) {
	e, err := s.Read(slug)
	if err != nil {
		return nil, err
	}
	return e.Scrap, nil
}

// Read returns the record for slug with its modification time.
func (s *Store) Read(slug string) (Entry, error) {
	if err := ValidateSlug(slug); err != nil {
		return Entry{}, err
	}
	path := s.Path(slug)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, fmt.Errorf("%w: record %s", ErrNotFound, slug)
		}
		return Entry{}, fmt.Errorf("reading %s: %w", slug, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, fmt.Errorf("reading %s: %w", slug, err)
	}

	scrap, err := Decode(data)
	if err != nil {
		return Entry{}, fmt.Errorf("%s: %w", slug, err)
	}
	return Entry{Slug: slug, Scrap: scrap, ModTime: info.ModTime()}, nil
}

// Slugs returns the sorted slugs of every stored record.
func (s *Store) Slugs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: store directory %s", ErrNotFound, s.dir)
		}
		return nil, fmt.Errorf("reading store directory %s: %w", s.dir, err)
	}

	var slugs []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, recordExt) {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(name, recordExt))
	}
	sort.Strings(slugs)
	return slugs, nil
}

// ListAll returns every stored record. Any unreadable or malformed record
// aborts the listing.
func (s *Store) ListAll() ([]Entry, error) {
	slugs, err := s.Slugs()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(slugs))
	for _, slug := range slugs {
		e, err := s.Read(slug)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ValidateSlug rejects slugs that would escape the store directory or
// collide with its bookkeeping files.
func ValidateSlug(slug string) error {
	switch {
	case slug == "", slug == ".", slug == "..":
		return fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	case strings.ContainsAny(slug, `/\`+"\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidSlug, slug)
	case strings.HasPrefix(slug, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidSlug, slug)
	}
	return nil
}
