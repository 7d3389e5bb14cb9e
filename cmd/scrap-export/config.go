// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scrap-export/internal/fetch"
	"github.com/pdiddy/scrap-export/internal/secrets"
	"github.com/pdiddy/scrap-export/pkg/types"
)

const (
	defaultStoreDir        = "scraps"
	defaultOutputDir       = "docs"
	defaultTimeout         = 60 * time.Second
	defaultRequestInterval = 1 * time.Second
	defaultWorkers         = 4
	defaultConcurrency     = 4
)

func init() {
	viper.SetDefault("store.dir", defaultStoreDir)
	viper.SetDefault("fetch.base_url", fetch.DefaultBaseURL)
	viper.SetDefault("fetch.timeout", defaultTimeout)
	viper.SetDefault("fetch.user_agent", userAgent())
	viper.SetDefault("fetch.concurrency", defaultConcurrency)
	viper.SetDefault("fetch.request_interval", defaultRequestInterval)
	viper.SetDefault("export.output_dir", defaultOutputDir)
	viper.SetDefault("export.workers", defaultWorkers)
	viper.SetDefault("export.format", string(types.FormatMarkdown))
}

// userAgent identifies this build to the API.
func userAgent() string {
	return "scrap-export/" + version
}

// bindFlags binds the named flags of cmd to viper keys. Binding happens when
// the command runs so commands sharing a flag name do not overwrite each
// other's binding.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for flag, key := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}

// loadConfig assembles the pipeline configuration from flags, environment,
// config file and defaults, in that order of precedence.
func loadConfig(v *viper.Viper) types.PipelineConfig {
	return types.PipelineConfig{
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:    v.GetDuration("fetch.timeout"),
				UserAgent:  v.GetString("fetch.user_agent"),
				MaxRetries: v.GetInt("fetch.max_retries"),
			},
			BaseURL:         v.GetString("fetch.base_url"),
			Cookie:          v.GetString("fetch.cookie"),
			Concurrency:     v.GetInt("fetch.concurrency"),
			RequestInterval: v.GetDuration("fetch.request_interval"),
			Refresh:         v.GetBool("fetch.refresh"),
		},
		Store: types.StoreConfig{
			Dir: v.GetString("store.dir"),
		},
		Export: types.ExportConfig{
			OutputDir: v.GetString("export.output_dir"),
			Workers:   v.GetInt("export.workers"),
			Force:     v.GetBool("export.force"),
			Format:    types.DocumentFormat(v.GetString("export.format")),
		},
	}
}

// resolveCookie falls back to the secrets directory when no cookie was
// configured.
func resolveCookie(cookie, secretsDir string) (string, error) {
	if cookie != "" {
		return cookie, nil
	}
	v, err := secrets.Lookup(secretsDir, secrets.KeyZennCookie)
	if err != nil {
		return "", err
	}
	if v != "" {
		fmt.Fprintf(os.Stderr, "Loaded secrets: [%s]\n", secrets.KeyZennCookie)
	}
	return v, nil
}
