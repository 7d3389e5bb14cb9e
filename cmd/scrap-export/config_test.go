// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scrap-export/internal/secrets"
	"github.com/pdiddy/scrap-export/internal/store"
	"github.com/pdiddy/scrap-export/pkg/types"
)

func TestLoadConfig_FromYAML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
fetch:
  base_url: http://localhost:8080/api
  concurrency: 2
  request_interval: 250ms
  timeout: 5s
store:
  dir: data/scraps
export:
  output_dir: out
  workers: 8
  force: true
  format: html
`)))

	cfg := loadConfig(v)
	assert.Equal(t, "http://localhost:8080/api", cfg.Fetch.BaseURL)
	assert.Equal(t, 2, cfg.Fetch.Concurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.Fetch.RequestInterval)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, types.StoreConfig{Dir: "data/scraps"}, cfg.Store)
	assert.Equal(t, types.ExportConfig{OutputDir: "out", Workers: 8, Force: true, Format: "html"}, cfg.Export)
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := loadConfig(viper.GetViper())
	assert.Equal(t, defaultStoreDir, cfg.Store.Dir)
	assert.Equal(t, defaultOutputDir, cfg.Export.OutputDir)
	assert.Equal(t, types.FormatMarkdown, cfg.Export.Format)
	assert.Equal(t, defaultRequestInterval, cfg.Fetch.RequestInterval)
	assert.Equal(t, "scrap-export/"+version, cfg.Fetch.UserAgent)
}

func TestResolveCookie(t *testing.T) {
	dir := t.TempDir()

	got, err := resolveCookie("flag=1", dir)
	require.NoError(t, err)
	assert.Equal(t, "flag=1", got)

	got, err = resolveCookie("", dir)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, os.WriteFile(filepath.Join(dir, secrets.KeyZennCookie), []byte("file=1\n"), 0o600))
	got, err = resolveCookie("", dir)
	require.NoError(t, err)
	assert.Equal(t, "file=1", got)
}

func TestWriteEntries(t *testing.T) {
	entries := []store.CatalogEntry{
		{Slug: "abc", Title: "Hi", Updated: "2023-02-01T00:00:00", Comments: 3, OutputFile: "Hi.md"},
	}

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeEntries(&buf, entries, "table"))
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "SLUG"))
		assert.Contains(t, lines[1], "abc")
		assert.Contains(t, lines[1], "Hi.md")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeEntries(&buf, entries, "json"))
		var got []store.CatalogEntry
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, entries, got)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeEntries(&buf, entries, "yaml"))
		var got []store.CatalogEntry
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, entries, got)
	})

	t.Run("empty json is an array", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeEntries(&buf, nil, "json"))
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Error(t, writeEntries(&bytes.Buffer{}, entries, "csv"))
	})
}
