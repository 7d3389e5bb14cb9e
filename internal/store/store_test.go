// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scrap-export/pkg/types"
)

const sampleBlob = `{"title":"Rust memo","closed":false,"archived":false,"comments":[` +
	`{"author":"x","created_at":"2023-01-01T00:00:00","body_markdown":"## H\ntext","children":[` +
	`{"author":"y","created_at":"2023-02-01T00:00:00","body_markdown":"first","children":null},` +
	`{"author":"z","created_at":"2023-01-15T00:00:00","body_markdown":"second","children":[]}]}]}`

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(types.StoreConfig{Dir: filepath.Join(t.TempDir(), "scraps")})
}

func TestPutGet_RoundTripPreservesOrder(t *testing.T) {
	s := newTestStore(t)
	scrap := &types.Scrap{
		Title: "ordered",
		Comments: []types.Comment{
			{Author: "a", CreatedAt: "2023-01-03T00:00:00", Children: []types.Comment{
				{Author: "c", CreatedAt: "2023-01-05T00:00:00"},
				{Author: "b", CreatedAt: "2023-01-04T00:00:00"},
			}},
			{Author: "d", CreatedAt: "2023-01-01T00:00:00"},
		},
	}
	require.NoError(t, s.Put("abc123", scrap))

	got, err := s.Get("abc123")
	require.NoError(t, err)
	assert.Equal(t, scrap, got)
}

func TestPutRaw_ByteFaithful(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.PutRaw("rust-memo", []byte(sampleBlob)))

	data, err := os.ReadFile(s.Path("rust-memo"))
	require.NoError(t, err)
	assert.Equal(t, sampleBlob, string(data))

	got, err := s.Get("rust-memo")
	require.NoError(t, err)
	assert.Equal(t, "Rust memo", got.Title)
	require.Len(t, got.Comments, 1)
	require.Len(t, got.Comments[0].Children, 2)
	assert.Equal(t, "y", got.Comments[0].Children[0].Author)
	assert.Equal(t, "z", got.Comments[0].Children[1].Author)
	assert.False(t, got.Comments[0].Children[0].HasChildren())
	assert.False(t, got.Comments[0].Children[1].HasChildren())
	assert.Equal(t, 3, got.CommentCount())
}

func TestPutRaw_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "<html>login required</html>"},
		{"truncated", `{"title":"x","comments":[`},
		{"null", "null"},
		{"array", "[]"},
		{"wrong comment type", `{"title":"x","comments":"nope"}`},
		{"missing timestamp", `{"title":"x","comments":[{"author":"a","body_markdown":"b"}]}`},
		{"missing nested timestamp", `{"title":"x","comments":[{"author":"a","created_at":"2023","children":[{"author":"b"}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			err := s.PutRaw("bad", []byte(tt.data))
			assert.ErrorIs(t, err, ErrMalformedRecord)
			assert.False(t, s.Has("bad"))
		})
	}
}

func TestDecode_EmptyCommentsIsNotMalformed(t *testing.T) {
	scrap, err := Decode([]byte(`{"title":"empty","comments":[]}`))
	require.NoError(t, err)
	assert.Empty(t, scrap.Comments)
}

func TestGet_Errors(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, os.MkdirAll(s.Dir(), 0o755))
	require.NoError(t, os.WriteFile(s.Path("broken"), []byte("{"), 0o644))
	_, err = s.Get("broken")
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = s.Get("../escape")
	assert.ErrorIs(t, err, ErrInvalidSlug)
}

func TestValidateSlug(t *testing.T) {
	for _, slug := range []string{"", ".", "..", "a/b", `a\b`, ".hidden", "nul\x00"} {
		assert.ErrorIs(t, ValidateSlug(slug), ErrInvalidSlug, "slug %q", slug)
	}
	for _, slug := range []string{"abc123", "3f2a9c1e0d", "my-scrap_1"} {
		assert.NoError(t, ValidateSlug(slug), "slug %q", slug)
	}
}

func TestListAll(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.PutRaw("b", []byte(sampleBlob)))
	require.NoError(t, s.Put("a", &types.Scrap{Title: "A", Comments: []types.Comment{{Author: "x", CreatedAt: "2024-01-01T00:00:00"}}}))

	// Non-record files and the catalog directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), ".put-1.tmp"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(s.Dir(), indexDir), 0o755))

	slugs, err := s.Slugs()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, slugs)

	entries, err := s.ListAll()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "A", entries[0].Scrap.Title)
	assert.Equal(t, "Rust memo", entries[1].Scrap.Title)
	assert.False(t, entries[0].ModTime.IsZero())
}

func TestListAll_MissingDirectory(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ListAll()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAll_MalformedRecordAborts(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.PutRaw("good", []byte(sampleBlob)))
	require.NoError(t, os.WriteFile(s.Path("bad"), []byte("not json"), 0o644))

	_, err := s.ListAll()
	assert.ErrorIs(t, err, ErrMalformedRecord)
	assert.Contains(t, err.Error(), "bad")
}

func TestPut_NotWritable(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	s := New(types.StoreConfig{Dir: dir})
	err := s.PutRaw("x", []byte(sampleBlob))
	assert.ErrorIs(t, err, ErrNotWritable)
}

func TestPut_DestinationIsAFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	s := New(types.StoreConfig{Dir: file})
	err := s.PutRaw("x", []byte(sampleBlob))
	assert.ErrorIs(t, err, ErrNotWritable)
}
