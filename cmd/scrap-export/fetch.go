// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scrap-export/internal/fetch"
	"github.com/pdiddy/scrap-export/internal/secrets"
	"github.com/pdiddy/scrap-export/internal/store"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download your scraps into the local store",
	Long: `Fetch lists every scrap of the signed-in user and stores each one as
<store-dir>/<slug>.json, byte for byte as the API returned it. Scraps
already in the store are skipped unless --refresh is given.

The session cookie is read from --cookie, SCRAP_EXPORT_COOKIE (also from a
.env file), or .secrets/zenn-cookie.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"cookie":      "fetch.cookie",
			"base-url":    "fetch.base_url",
			"concurrency": "fetch.concurrency",
			"interval":    "fetch.request_interval",
			"timeout":     "fetch.timeout",
			"refresh":     "fetch.refresh",
		})
	},
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("cookie", "", "session cookie sent to the API")
	fetchCmd.Flags().String("base-url", fetch.DefaultBaseURL, "API root")
	fetchCmd.Flags().Int("concurrency", defaultConcurrency, "scraps downloaded in parallel")
	fetchCmd.Flags().Duration("interval", defaultRequestInterval, "minimum spacing between API requests")
	fetchCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	fetchCmd.Flags().Bool("refresh", false, "download scraps that are already stored")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(viper.GetViper())

	cookie, err := resolveCookie(cfg.Fetch.Cookie, secrets.DefaultDir)
	if err != nil {
		return err
	}
	if cookie == "" {
		return fmt.Errorf("no session cookie: pass --cookie, set %s_COOKIE, or write %s/%s",
			envPrefix, secrets.DefaultDir, secrets.KeyZennCookie)
	}
	cfg.Fetch.Cookie = cookie

	client := fetch.NewClient(fetch.DefaultHTTPClient(cfg.Fetch.Timeout), cfg.Fetch)
	result, err := fetch.FetchAll(cmd.Context(), client, store.New(cfg.Store), os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d scrap(s) failed to download", result.Failed)
	}
	return nil
}
