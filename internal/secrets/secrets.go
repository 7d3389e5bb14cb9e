// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads credentials from a directory of plain-text files.
// Each file holds one secret: the file name is the key and the trimmed
// contents are the value.
//
// Supported key files: zenn-cookie.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// KeyZennCookie names the file holding the Zenn session cookie.
const KeyZennCookie = "zenn-cookie"

// DefaultDir is the secrets directory used when none is configured.
const DefaultDir = ".secrets"

// Lookup reads the single secret file dir/key and returns its trimmed
// contents, or "" when the file or directory is absent.
func Lookup(dir, key string) (string, error) {
	if key == "" || strings.HasPrefix(key, ".") || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid secret key %q", key)
	}
	data, err := os.ReadFile(filepath.Join(dir, key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading secret %s: %w", key, err)
	}
	return strings.TrimSpace(string(data)), nil
}
