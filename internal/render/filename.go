// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	maxFilenameBytes = 200
	untitled         = "untitled"
)

// reservedNames are device names Windows refuses as file names regardless of
// extension.
var reservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// SafeFilename maps an arbitrary title to a name that is valid on common
// filesystems. The result has no extension.
func SafeFilename(title string) string {
	return SafeFilenameWithSuffix(title, "")
}

// SafeFilenameWithSuffix is SafeFilename with suffix appended. The title is
// shortened as needed so the suffix always survives the length limit.
func SafeFilenameWithSuffix(title, suffix string) string {
	suffix = truncateBytes(sanitize(suffix), maxFilenameBytes/2)
	suffix = strings.TrimRight(suffix, ". ")

	name := strings.TrimSpace(sanitize(title))
	name = strings.TrimRight(name, ". ")
	name = truncateBytes(name, maxFilenameBytes-len(suffix))
	name = strings.TrimRight(name, ". ")
	if name == "" {
		name = untitled
	}
	name += suffix

	if reservedNames[strings.ToUpper(name)] {
		name = "_" + name
	}
	return name
}

// sanitize composes s to NFC and replaces characters that are invalid in
// file names on Windows or Unix with '_'.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if unicode.IsControl(r) || r == utf8.RuneError {
			return '_'
		}
		return r
	}, norm.NFC.String(s))
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
