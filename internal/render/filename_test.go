// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "Go memo", "Go memo"},
		{"path separators", "a/b\\c", "a_b_c"},
		{"windows specials", `what? "x" <y> | z*: done`, `what_ _x_ _y_ _ z__ done`},
		{"control characters", "tab\there\nnewline", "tab_here_newline"},
		{"surrounding spaces and dots", "  notes...  ", "notes"},
		{"empty", "", "untitled"},
		{"only dots", "..", "untitled"},
		{"reserved device name", "con", "_con"},
		{"reserved name with suffix is fine", "CONSOLE", "CONSOLE"},
		{"japanese", "Rustのメモ", "Rustのメモ"},
		{"decomposed kana is composed", "\u30ab\u3099", "\u30ac"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeFilename(tt.title))
		})
	}
}

func TestSafeFilename_Truncates(t *testing.T) {
	title := strings.Repeat("あ", 100) // 300 bytes
	got := SafeFilename(title)
	assert.LessOrEqual(t, len(got), maxFilenameBytes)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("あ", 66), got)
}

func TestSafeFilenameWithSuffix(t *testing.T) {
	assert.Equal(t, "memo-abc", SafeFilenameWithSuffix("memo", "-abc"))
	assert.Equal(t, "untitled-abc", SafeFilenameWithSuffix("  ", "-abc"))
	assert.Equal(t, "a_b-x_y", SafeFilenameWithSuffix("a/b", "-x/y"))

	long := SafeFilenameWithSuffix(strings.Repeat("x", 300), "-slug")
	assert.Len(t, long, maxFilenameBytes)
	assert.True(t, strings.HasSuffix(long, "-slug"))
}
