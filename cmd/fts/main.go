// Package main provides the fts CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// configPath names an explicit config file; empty means defaults plus
// an optional fts.yaml in the working directory.
var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fts",
	Short: "Full-text search pipeline for scientific articles",
	Long: `fts crawls a scientific article library, drives each article through
a status-based processing pipeline (parsing, text cleanup and
translation, lemmatization), and serves TF-IDF cosine search with
optional embedding-based query expansion over the result.

All commands output JSON by default for easy integration with other
tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.Version = Version
}
