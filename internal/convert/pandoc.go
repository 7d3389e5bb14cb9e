// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns rendered Markdown documents into other formats by
// piping them through the pandoc container image.
package convert

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/scrap-export/internal/container"
	"github.com/pdiddy/scrap-export/pkg/types"
)

// ImagePandoc is the container image used for conversion.
const ImagePandoc = "pandoc/core:3.5"

// ErrUnsupportedFormat is returned for formats pandoc cannot write.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// extensions maps supported pandoc output formats to file extensions.
var extensions = map[types.DocumentFormat]string{
	"html":     ".html",
	"docx":     ".docx",
	"odt":      ".odt",
	"epub":     ".epub",
	"rst":      ".rst",
	"asciidoc": ".adoc",
	"org":      ".org",
	"latex":    ".tex",
	"plain":    ".txt",
	"gfm":      ".md",
}

// PandocConverter converts Markdown by running pandoc in a container. It
// depends on a container.Runtime (docker or podman) injected at
// construction time.
type PandocConverter struct {
	runtime container.Runtime
	format  types.DocumentFormat
	ext     string
}

// NewPandocConverter creates a converter writing format. It verifies that
// the format is supported and that the pandoc image exists locally.
func NewPandocConverter(rt container.Runtime, format types.DocumentFormat) (*PandocConverter, error) {
	ext, ok := extensions[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, format, strings.Join(SupportedFormats(), ", "))
	}
	if err := rt.ImageExists(ImagePandoc); err != nil {
		return nil, fmt.Errorf("pandoc image not available in %s: %w", rt.Name(), err)
	}
	return &PandocConverter{runtime: rt, format: format, ext: ext}, nil
}

// Convert pipes markdown through pandoc and returns the converted document.
func (p *PandocConverter) Convert(markdown string) ([]byte, error) {
	args := []string{"-f", "markdown", "-t", string(p.format), "-o", "-"}
	var out bytes.Buffer
	if err := p.runtime.Run(ImagePandoc, args, strings.NewReader(markdown), &out); err != nil {
		return nil, fmt.Errorf("converting to %s with pandoc: %w", p.format, err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("pandoc produced empty %s output", p.format)
	}
	return out.Bytes(), nil
}

// Ext returns the file extension for the converter's format.
func (p *PandocConverter) Ext() string { return p.ext }

// SupportedFormats lists the formats NewPandocConverter accepts, sorted.
func SupportedFormats() []string {
	names := make([]string, 0, len(extensions))
	for f := range extensions {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}
