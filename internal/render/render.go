// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns a scrap's comment tree into a single Markdown document.
//
// The document starts with a delimited metadata block (created date and last
// update timestamp) followed by a depth-first transcript of the comments. Each
// comment gets a heading whose level follows its depth in the tree, and the
// headings inside its body are pushed below that level so the whole document
// keeps one consistent outline.
package render

import (
	"errors"
	"strings"

	"github.com/pdiddy/scrap-export/pkg/types"
)

const (
	headingChar = '#'
	delimiter   = "----"
)

// ErrEmptyThread is returned when a scrap has no comments. Such a scrap has
// no created or updated date and is never rendered.
var ErrEmptyThread = errors.New("scrap has no comments")

// Render produces the Markdown document for s. Render is pure and safe to
// call concurrently for distinct scraps.
func Render(s *types.Scrap) (string, error) {
	if s == nil || len(s.Comments) == 0 {
		return "", ErrEmptyThread
	}

	var b strings.Builder
	b.WriteString(delimiter + "\n")
	b.WriteString("created: " + Created(s) + "\n")
	b.WriteString("updated: " + Updated(s) + "\n")
	b.WriteString(delimiter + "\n\n")

	for i := range s.Comments {
		writeComment(&b, &s.Comments[i], 0)
	}
	return b.String(), nil
}

// writeComment emits c and then its replies, pre-order.
func writeComment(b *strings.Builder, c *types.Comment, depth int) {
	writeMarker(b, depth+1)
	b.WriteString(c.CreatedAt)
	b.WriteString(" by ")
	b.WriteString(c.Author)
	b.WriteString(":\n\n")
	b.WriteString(ShiftHeadings(c.Body, depth+1))
	b.WriteString("\n\n")

	for i := range c.Children {
		writeComment(b, &c.Children[i], depth+1)
	}
}

// writeMarker writes a heading marker of the given level followed by a space.
func writeMarker(b *strings.Builder, level int) {
	for i := 0; i < level; i++ {
		b.WriteByte(headingChar)
	}
	b.WriteByte(' ')
}

// ShiftHeadings deepens every Markdown heading line in body by shift levels.
// A heading line is a run of one or more '#' followed by a space; the text
// after that space is kept verbatim. Lines are split and rejoined on '\n', so
// the line count and order never change.
func ShiftHeadings(body string, shift int) string {
	lines := strings.Split(body, "\n")
	var b strings.Builder
	b.Grow(len(body) + len(lines)*shift)
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		level, rest, ok := parseHeading(line)
		if !ok {
			b.WriteString(line)
			continue
		}
		writeMarker(&b, level+shift)
		b.WriteString(rest)
	}
	return b.String()
}

// parseHeading reports the heading level of line and the content following
// the separating space. "#Title" and "#" are not headings.
func parseHeading(line string) (level int, rest string, ok bool) {
	for level < len(line) && line[level] == headingChar {
		level++
	}
	if level == 0 || level >= len(line) || line[level] != ' ' {
		return 0, "", false
	}
	return level, line[level+1:], true
}

// Created returns the date part (before the first 'T') of the first
// top-level comment's timestamp, or "" for an empty scrap.
func Created(s *types.Scrap) string {
	if len(s.Comments) == 0 {
		return ""
	}
	ts := s.Comments[0].CreatedAt
	if i := strings.IndexByte(ts, 'T'); i >= 0 {
		return ts[:i]
	}
	return ts
}

// Updated returns the lexically greatest comment timestamp in the tree.
func Updated(s *types.Scrap) string {
	var latest string
	var walk func([]types.Comment)
	walk = func(cs []types.Comment) {
		for i := range cs {
			if cs[i].CreatedAt > latest {
				latest = cs[i].CreatedAt
			}
			walk(cs[i].Children)
		}
	}
	walk(s.Comments)
	return latest
}
