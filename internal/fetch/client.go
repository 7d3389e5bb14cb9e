// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads a user's scraps from the Zenn API.
//
// The list endpoint is paginated: page numbers start at 0 and the response's
// next_page is null on the last page. Each scrap's content is served as
// blob.json, which is stored verbatim.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/scrap-export/internal/httputil"
	"github.com/pdiddy/scrap-export/pkg/types"
)

const (
	// DefaultBaseURL is the Zenn API root.
	DefaultBaseURL = "https://zenn.dev/api"

	// maxPages stops a server that never reports a last page.
	maxPages = 10000

	errBodyExcerpt = 200
)

// ErrUnauthorized is returned when the API rejects the session cookie.
var ErrUnauthorized = errors.New("unauthorized: check the session cookie")

// Client talks to the scrap API with a session cookie.
type Client struct {
	http    *http.Client
	cfg     types.FetchConfig
	limiter *rate.Limiter
}

// NewClient returns a Client using httpClient for transport. Requests are
// spaced by cfg.RequestInterval; zero disables pacing.
func NewClient(httpClient *http.Client, cfg types.FetchConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	limit := rate.Inf
	if cfg.RequestInterval > 0 {
		limit = rate.Every(cfg.RequestInterval)
	}
	return &Client{
		http:    httpClient,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// scrapPage is one page of GET /me/scraps.
type scrapPage struct {
	Scraps []struct {
		Slug string `json:"slug"`
	} `json:"scraps"`
	NextPage json.RawMessage `json:"next_page"`
}

func (p *scrapPage) last() bool {
	v := bytes.TrimSpace(p.NextPage)
	return len(v) == 0 || bytes.Equal(v, []byte("null"))
}

// ListSlugs walks every page of the signed-in user's scraps and returns the
// slugs in API order without duplicates.
func (c *Client) ListSlugs(ctx context.Context) ([]string, error) {
	var slugs []string
	seen := make(map[string]bool)

	for page := 0; page < maxPages; page++ {
		u := fmt.Sprintf("%s/me/scraps?page=%d", c.cfg.BaseURL, page)
		body, err := c.get(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("listing scraps page %d: %w", page, err)
		}

		var p scrapPage
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("parsing scraps page %d: %w", page, err)
		}
		for _, s := range p.Scraps {
			if s.Slug == "" || seen[s.Slug] {
				continue
			}
			seen[s.Slug] = true
			slugs = append(slugs, s.Slug)
		}

		if p.last() || len(p.Scraps) == 0 {
			return slugs, nil
		}
	}
	return nil, fmt.Errorf("listing scraps: gave up after %d pages", maxPages)
}

// FetchBlob returns the raw blob.json bytes for slug.
func (c *Client) FetchBlob(ctx context.Context, slug string) ([]byte, error) {
	u := fmt.Sprintf("%s/scraps/%s/blob.json", c.cfg.BaseURL, url.PathEscape(slug))
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetching scrap %s: %w", slug, err)
	}
	return body, nil
}

// get performs an authenticated GET and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if c.cfg.Cookie != "" {
		req.Header.Set("Cookie", strings.TrimSpace(c.cfg.Cookie))
	}

	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w (HTTP %d)", ErrUnauthorized, resp.StatusCode)
	default:
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyExcerpt))
		return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, u, strings.TrimSpace(string(excerpt)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

// DefaultHTTPClient returns the transport used when the caller has no
// special needs.
func DefaultHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
