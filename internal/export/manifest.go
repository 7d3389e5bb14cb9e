// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scrap-export/internal/render"
	"github.com/pdiddy/scrap-export/internal/store"
)

// ManifestFile is written to the output directory after every export.
const ManifestFile = "manifest.yaml"

// ManifestEntry describes one exported document.
type ManifestEntry struct {
	Slug     string `json:"slug" yaml:"slug"`
	Title    string `json:"title" yaml:"title"`
	File     string `json:"file" yaml:"file"`
	Created  string `json:"created" yaml:"created"`
	Updated  string `json:"updated" yaml:"updated"`
	Comments int    `json:"comments" yaml:"comments"`
}

// Manifest is the on-disk form of manifest.yaml.
type Manifest struct {
	Documents []ManifestEntry `yaml:"documents"`
}

func manifestEntry(j job) ManifestEntry {
	s := j.entry.Scrap
	return ManifestEntry{
		Slug:     j.entry.Slug,
		Title:    s.Title,
		File:     j.file,
		Created:  render.Created(s),
		Updated:  render.Updated(s),
		Comments: s.CommentCount(),
	}
}

func catalogEntry(e store.Entry, modTime string) store.CatalogEntry {
	s := e.Scrap
	return store.CatalogEntry{
		Slug:          e.Slug,
		Title:         s.Title,
		Created:       render.Created(s),
		Updated:       render.Updated(s),
		Comments:      s.CommentCount(),
		Closed:        s.Closed,
		Archived:      s.Archived,
		RecordModTime: modTime,
	}
}

// WriteManifest writes docs to dir/manifest.yaml.
func WriteManifest(dir string, docs []ManifestEntry) error {
	if docs == nil {
		docs = []ManifestEntry{}
	}
	data, err := yaml.Marshal(Manifest{Documents: docs})
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := writeAtomic(filepath.Join(dir, ManifestFile), data); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// ReadManifest loads dir/manifest.yaml.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// Index brings the catalog up to date with the store without rendering.
// Entries keep the output file of their last export; entries whose record
// is gone are removed. Malformed records are reported to w and skipped.
func Index(ctx context.Context, st *store.Store, cat *store.Catalog, w io.Writer) (int, error) {
	slugs, err := st.Slugs()
	if err != nil {
		return 0, err
	}

	present := make(map[string]bool, len(slugs))
	indexed := 0
	for _, slug := range slugs {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}
		present[slug] = true

		e, err := st.Read(slug)
		if err != nil {
			fmt.Fprintf(w, "warning: %v\n", err)
			continue
		}

		entry := catalogEntry(e, store.FormatModTime(e.ModTime))
		prev, err := cat.Get(ctx, slug)
		switch {
		case err == nil:
			if prev.RecordModTime == entry.RecordModTime {
				indexed++
				continue
			}
			entry.OutputFile = prev.OutputFile
			// A changed record must be rendered again.
			entry.RecordModTime = ""
		case !errors.Is(err, store.ErrNotFound):
			return indexed, err
		}
		if err := cat.Upsert(ctx, entry); err != nil {
			return indexed, err
		}
		indexed++
	}

	entries, err := cat.List(ctx)
	if err != nil {
		return indexed, err
	}
	for _, e := range entries {
		if !present[e.Slug] {
			if err := cat.Delete(ctx, e.Slug); err != nil {
				return indexed, err
			}
		}
	}
	return indexed, nil
}
