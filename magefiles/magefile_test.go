//go:build mage

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCountDocWords_SkipsExportOutput(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "DESIGN.md"), "one two three")
	writeFile(t, filepath.Join(root, "notes.txt"), "not counted")
	writeFile(t, filepath.Join(root, exportDir, "Hi.md"), "exported words are not docs")

	n, err := countDocWords(root)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCountFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), exportDir)
	n, err := countFiles(dir)
	require.NoError(t, err)
	assert.Zero(t, n)

	writeFile(t, filepath.Join(dir, "Hi.md"), "x")
	writeFile(t, filepath.Join(dir, "Bye.html"), "x")
	writeFile(t, filepath.Join(dir, "manifest.yaml"), "documents: []")
	writeFile(t, filepath.Join(dir, ".export-1.tmp"), "x")
	n, err = countFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
