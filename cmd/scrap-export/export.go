// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scrap-export/internal/container"
	"github.com/pdiddy/scrap-export/internal/convert"
	"github.com/pdiddy/scrap-export/internal/export"
	"github.com/pdiddy/scrap-export/internal/store"
	"github.com/pdiddy/scrap-export/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render stored scraps as documents",
	Long: `Export renders every scrap in the store into one document in
--output-dir and writes manifest.yaml listing them. Documents whose record
has not changed since the last export are skipped unless --force is given.
When a scrap's title changes, its previous document in the same format is
removed; documents written in other formats are kept.

With --format other than markdown the rendered Markdown is converted with
pandoc running in docker or podman.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{
			"output-dir": "export.output_dir",
			"workers":    "export.workers",
			"force":      "export.force",
			"format":     "export.format",
		})
	},
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("output-dir", defaultOutputDir, "directory receiving the documents")
	exportCmd.Flags().Int("workers", defaultWorkers, "documents rendered in parallel")
	exportCmd.Flags().Bool("force", false, "render documents whose record has not changed")
	exportCmd.Flags().String("format", string(types.FormatMarkdown), "document format: markdown or a pandoc output format")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(viper.GetViper())

	opts := export.Options{ExportConfig: cfg.Export}
	if cfg.Export.Format != "" && cfg.Export.Format != types.FormatMarkdown {
		rt, err := container.DetectRuntime()
		if err != nil {
			return err
		}
		conv, err := convert.NewPandocConverter(rt, cfg.Export.Format)
		if err != nil {
			return err
		}
		opts.Converter = conv
	}

	cat, err := store.OpenCatalog(cfg.Store)
	if err != nil {
		return err
	}
	defer cat.Close()
	opts.Catalog = cat

	result, err := export.Run(cmd.Context(), store.New(cfg.Store), opts, os.Stdout)
	if err != nil {
		return err
	}
	if result.HasFailures() {
		return fmt.Errorf("%d scrap(s) failed to export", result.Failed)
	}
	return nil
}
