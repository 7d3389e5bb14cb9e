// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scrap-export CLI. It downloads a
// user's Zenn scraps into a local store and renders them as documents.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

const envPrefix = "SCRAP_EXPORT"

// rootCmd is the base command for the scrap-export CLI.
var rootCmd = &cobra.Command{
	Use:   "scrap-export",
	Short: "Export Zenn scraps to Markdown documents",
	Long: `scrap-export keeps a local copy of your Zenn scraps and renders each one
as a Markdown document with the comment thread laid out as nested headings.

fetch downloads scrap records into the store, export renders the store into
documents, and list shows what the store holds.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scrap-export.yaml or ~/.config/scrap-export/scrap-export.yaml)")
	rootCmd.PersistentFlags().String("store-dir", defaultStoreDir, "directory holding one JSON record per scrap")
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "warning: reading .env:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scrap-export")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scrap-export"))
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("fetch.cookie", envPrefix+"_COOKIE", envPrefix+"_FETCH_COOKIE")
	_ = viper.BindPFlag("store.dir", rootCmd.PersistentFlags().Lookup("store-dir"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
