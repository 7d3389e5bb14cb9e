// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/scrap-export/internal/store"
)

const defaultConcurrency = 4

// BatchResult holds the outcome of a fetch run.
type BatchResult struct {
	Found   int
	Fetched int
	Skipped int
	Failed  int

	// Errors maps a failed slug to its error.
	Errors map[string]error
}

// HasFailures reports whether any scrap failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// FetchAll lists every scrap, downloads the ones not yet stored (all of them
// with cfg.Refresh) and writes each into st. Individual failures are counted
// and reported to w; only a listing failure or cancellation aborts the run.
func FetchAll(ctx context.Context, c *Client, st *store.Store, w io.Writer) (BatchResult, error) {
	slugs, err := c.ListSlugs(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{Found: len(slugs), Errors: make(map[string]error)}
	fmt.Fprintf(w, "found %d scraps\n", len(slugs))

	var pending []string
	for _, slug := range slugs {
		if !c.cfg.Refresh && st.Has(slug) {
			result.Skipped++
			continue
		}
		pending = append(pending, slug)
	}
	if result.Skipped > 0 {
		fmt.Fprintf(w, "skipped %d already stored\n", result.Skipped)
	}

	limit := c.cfg.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}

	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, slug := range pending {
		slug := slug
		g.Go(func() error {
			err := fetchOne(gctx, c, st, slug)
			if gctx.Err() != nil {
				return gctx.Err()
			}

			mu.Lock()
			defer mu.Unlock()
			done++
			if err != nil {
				result.Failed++
				result.Errors[slug] = err
				fmt.Fprintf(w, "%d / %d failed %s: %v\n", done, len(pending), slug, err)
				return nil
			}
			result.Fetched++
			fmt.Fprintf(w, "%d / %d wrote %s\n", done, len(pending), slug)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	fmt.Fprintf(w, "\nfetched: %d, skipped: %d, failed: %d (total: %d)\n",
		result.Fetched, result.Skipped, result.Failed, result.Found)
	return result, nil
}

func fetchOne(ctx context.Context, c *Client, st *store.Store, slug string) error {
	if err := store.ValidateSlug(slug); err != nil {
		return err
	}
	blob, err := c.FetchBlob(ctx, slug)
	if err != nil {
		return err
	}
	return st.PutRaw(slug, blob)
}
