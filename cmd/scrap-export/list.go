// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scrap-export/internal/export"
	"github.com/pdiddy/scrap-export/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the scraps in the local store",
	Long: `List refreshes the catalog from the store and prints one line per scrap,
most recently updated first.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().String("format", "table", "output format: table, yaml, or json")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	cfg := loadConfig(viper.GetViper())

	cat, err := store.OpenCatalog(cfg.Store)
	if err != nil {
		return err
	}
	defer cat.Close()

	if _, err := export.Index(cmd.Context(), store.New(cfg.Store), cat, os.Stderr); err != nil {
		return err
	}
	entries, err := cat.List(cmd.Context())
	if err != nil {
		return err
	}
	return writeEntries(os.Stdout, entries, format)
}

func writeEntries(w io.Writer, entries []store.CatalogEntry, format string) error {
	if entries == nil {
		entries = []store.CatalogEntry{}
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SLUG\tUPDATED\tCOMMENTS\tTITLE\tFILE")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", e.Slug, e.Updated, e.Comments, e.Title, e.OutputFile)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q (want table, yaml, or json)", format)
	}
}
