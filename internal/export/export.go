// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders every stored scrap into a document file and keeps
// the catalog and the output manifest in step with what was written.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/scrap-export/internal/render"
	"github.com/pdiddy/scrap-export/internal/store"
	"github.com/pdiddy/scrap-export/pkg/types"
)

const (
	defaultWorkers = 4
	markdownExt    = ".md"
)

// Converter turns a rendered Markdown document into another format.
type Converter interface {
	// Convert returns the converted document bytes.
	Convert(markdown string) ([]byte, error)

	// Ext returns the file extension of converted documents, with the dot.
	Ext() string
}

// Options configures a Run.
type Options struct {
	types.ExportConfig

	// Catalog, when set, enables skipping unchanged records and is updated
	// with every written document.
	Catalog *store.Catalog

	// Converter, when set, replaces the Markdown output.
	Converter Converter
}

// Result holds the outcome of an export run.
type Result struct {
	Rendered int
	Skipped  int
	Failed   int

	// Errors maps a failed slug to its error.
	Errors map[string]error

	// Documents lists every document present after the run, sorted by slug.
	Documents []ManifestEntry
}

// HasFailures reports whether any record failed.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// job is one record with its assigned output file name.
type job struct {
	entry store.Entry
	file  string
}

// Run exports every record in st into opts.OutputDir. File names are
// assigned in slug order so collisions resolve the same way on every run;
// rendering and writing then fan out over opts.Workers goroutines. A failing
// record is reported and counted without stopping the others.
func Run(ctx context.Context, st *store.Store, opts Options, w io.Writer) (Result, error) {
	slugs, err := st.Slugs()
	if err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("%w: creating output directory %s: %v", store.ErrNotWritable, opts.OutputDir, err)
	}

	result := Result{Errors: make(map[string]error)}
	var mu sync.Mutex
	fail := func(slug string, err error) {
		mu.Lock()
		defer mu.Unlock()
		result.Failed++
		result.Errors[slug] = err
		fmt.Fprintf(w, "failed:   %s (%v)\n", slug, err)
	}

	ext := markdownExt
	if opts.Converter != nil {
		ext = opts.Converter.Ext()
	}

	names := newNamer()
	var jobs []job
	taken := make(map[string]bool)
	for _, slug := range slugs {
		e, err := st.Read(slug)
		if err != nil {
			fail(slug, err)
			continue
		}
		if len(e.Scrap.Comments) == 0 {
			fail(slug, render.ErrEmptyThread)
			continue
		}
		j := job{entry: e, file: names.assign(e.Scrap.Title, slug) + ext}
		taken[strings.ToLower(j.file)] = true
		jobs = append(jobs, j)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, j := range jobs {
		j := j
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			skipped, err := exportOne(gctx, j, opts, taken)
			if err != nil {
				fail(j.entry.Slug, err)
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			if skipped {
				result.Skipped++
				fmt.Fprintf(w, "skipped:  %s (unchanged)\n", j.entry.Slug)
			} else {
				result.Rendered++
				fmt.Fprintf(w, "rendered: %s -> %s\n", j.entry.Slug, j.file)
			}
			result.Documents = append(result.Documents, manifestEntry(j))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	sort.Slice(result.Documents, func(a, b int) bool {
		return result.Documents[a].Slug < result.Documents[b].Slug
	})
	if err := WriteManifest(opts.OutputDir, result.Documents); err != nil {
		return result, err
	}

	fmt.Fprintf(w, "\nrendered: %d, skipped: %d, failed: %d (total: %d)\n",
		result.Rendered, result.Skipped, result.Failed, len(slugs))
	return result, nil
}

// exportOne renders and writes a single document. It reports skipped when
// the catalog shows the same record already exported to the same file.
// taken holds every lower-cased file name assigned in this run and is only
// read here.
func exportOne(ctx context.Context, j job, opts Options, taken map[string]bool) (skipped bool, err error) {
	outPath := filepath.Join(opts.OutputDir, j.file)
	modTime := store.FormatModTime(j.entry.ModTime)

	var prev store.CatalogEntry
	if opts.Catalog != nil {
		prev, err = opts.Catalog.Get(ctx, j.entry.Slug)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return false, err
		}
		if !opts.Force && prev.RecordModTime == modTime && prev.OutputFile == j.file && fileExists(outPath) {
			return true, nil
		}
	}

	doc, err := render.Render(j.entry.Scrap)
	if err != nil {
		return false, err
	}

	data := []byte(doc)
	if opts.Converter != nil {
		if data, err = opts.Converter.Convert(doc); err != nil {
			return false, err
		}
	}

	if err := writeAtomic(outPath, data); err != nil {
		return false, err
	}

	if opts.Catalog == nil {
		return false, nil
	}
	if stale(prev.OutputFile, j.file, taken) {
		removeStale(opts.OutputDir, prev.OutputFile)
	}
	entry := catalogEntry(j.entry, modTime)
	entry.OutputFile = j.file
	return false, opts.Catalog.Upsert(ctx, entry)
}

// namer hands out unique base names. Names are compared case-insensitively
// so the output also works on case-insensitive filesystems.
type namer struct {
	used map[string]bool
}

func newNamer() *namer {
	return &namer{used: make(map[string]bool)}
}

func (n *namer) assign(title, slug string) string {
	name := render.SafeFilename(title)
	for i := 1; n.used[strings.ToLower(name)]; i++ {
		suffix := "-" + slug
		if i > 1 {
			suffix = fmt.Sprintf("-%s-%d", slug, i)
		}
		name = render.SafeFilenameWithSuffix(title, suffix)
	}
	n.used[strings.ToLower(name)] = true
	return name
}

// stale reports whether prev, the file a record was last exported to, should
// be removed now that the record is written to file. Names are folded the way
// namer folds them, so a case-only rename never deletes the new document on a
// case-insensitive filesystem. Documents of another format are left alone.
func stale(prev, file string, taken map[string]bool) bool {
	switch {
	case prev == "", strings.EqualFold(prev, file):
		return false
	case !strings.EqualFold(filepath.Ext(prev), filepath.Ext(file)):
		return false
	}
	return !taken[strings.ToLower(prev)]
}

// removeStale deletes a document left behind by an earlier export under a
// different name. Only plain file names inside dir are touched.
func removeStale(dir, file string) {
	if file != filepath.Base(file) {
		return
	}
	os.Remove(filepath.Join(dir, file))
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: creating temp file: %v", store.ErrNotWritable, err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil || closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: writing %s: %v", store.ErrNotWritable, filepath.Base(path), errors.Join(writeErr, closeErr))
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: renaming %s: %v", store.ErrNotWritable, filepath.Base(path), err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
