// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "scrap-export/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds the retries on HTTP 429 responses (0 = default).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// FetchConfig holds settings for the fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the API root, e.g. "https://zenn.dev/api".
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Cookie is the session cookie sent with every API request.
	Cookie string `json:"-" yaml:"-"`

	// Concurrency is the number of scraps downloaded in parallel (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// RequestInterval is the minimum spacing between API requests (default 1s).
	RequestInterval time.Duration `json:"request_interval" yaml:"request_interval"`

	// Refresh re-downloads scraps that are already stored.
	Refresh bool `json:"refresh" yaml:"refresh"`
}

// StoreConfig names the directory holding one JSON record per scrap.
type StoreConfig struct {
	// Dir is the store directory (contains <slug>.json and index/).
	Dir string `json:"dir" yaml:"dir"`
}

// ExportConfig holds settings for the export stage.
type ExportConfig struct {
	// OutputDir receives one Markdown document per scrap plus manifest.yaml.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Workers is the number of documents rendered in parallel (default 4).
	Workers int `json:"workers" yaml:"workers"`

	// Force re-renders documents whose record has not changed.
	Force bool `json:"force" yaml:"force"`

	// Format is the document format: "markdown" (default) or any pandoc
	// output format such as "html", "docx" or "epub".
	Format DocumentFormat `json:"format" yaml:"format"`
}

// DocumentFormat names the output format of exported documents.
type DocumentFormat string

// FormatMarkdown writes the rendered Markdown as is.
const FormatMarkdown DocumentFormat = "markdown"

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Fetch  FetchConfig  `json:"fetch" yaml:"fetch"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Export ExportConfig `json:"export" yaml:"export"`
}
