package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/john-neg/full-text-search/internal/index"
)

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexInfoCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the TF-IDF vector index",
}

// IndexBuildResult is the response for the index build command.
type IndexBuildResult struct {
	Status           string  `json:"status"`
	DocumentsIndexed int     `json:"documents_indexed"`
	VocabularySize   int     `json:"vocabulary_size"`
	DurationSeconds  float64 `json:"duration_seconds"`
	IndexSizeBytes   int64   `json:"index_size_bytes"`
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build or rebuild the vector index",
	Long: `Vectorize every fully processed record over the built vocabulary and
persist the index atomically. Run 'fts vocab build' first.`,
	RunE: runIndexBuild,
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	vocabulary, err := readWordList(cfg.VocabularyPath())
	if err != nil {
		exitWithError(ExitConfigError, "no vocabulary at %s; run 'fts vocab build' first", cfg.VocabularyPath())
	}
	if len(vocabulary) == 0 {
		exitWithError(ExitDataError, "vocabulary %s is empty", cfg.VocabularyPath())
	}

	gw, closeStore := mustOpenGateway(cfg)
	defer closeStore()

	idx, stats, err := index.NewBuilder(gw).Build(context.Background(), vocabulary)
	if err != nil {
		exitWithError(ExitError, "building index: %v", err)
	}
	if idx.Len() == 0 {
		exitWithError(ExitDataError, "no fully processed records to index")
	}

	if err := idx.Save(cfg.IndexPath()); err != nil {
		exitWithError(ExitError, "saving index: %v", err)
	}

	size, err := index.IndexSize(cfg.IndexPath())
	if err != nil {
		size = 0
	}

	if humanOutput {
		outputHuman("Build complete:\n")
		outputHuman("  Documents indexed: %d\n", stats.DocumentsIndexed)
		outputHuman("  Vocabulary: %d words\n", stats.VocabularySize)
		outputHuman("  Time elapsed: %s\n", formatDuration(stats.Duration))
		outputHuman("  Index size: %s\n", formatBytes(size))
	} else {
		outputJSON(IndexBuildResult{
			Status:           "complete",
			DocumentsIndexed: stats.DocumentsIndexed,
			VocabularySize:   stats.VocabularySize,
			DurationSeconds:  stats.Duration.Seconds(),
			IndexSizeBytes:   size,
		})
	}
	return nil
}

// IndexInfoResult is the response for the index info command.
type IndexInfoResult struct {
	Documents      int    `json:"documents"`
	VocabularySize int    `json:"vocabulary_size"`
	Version        int    `json:"version"`
	IndexSizeBytes int64  `json:"index_size_bytes"`
	Path           string `json:"path"`
}

var indexInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show vector index details",
	RunE:  runIndexInfo,
}

func runIndexInfo(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	idx, err := index.LoadIndex(cfg.IndexPath())
	if err != nil {
		if errors.Is(err, index.ErrIndexNotFound) {
			exitWithError(ExitConfigError, "no index at %s; run 'fts index build' first", cfg.IndexPath())
		}
		exitWithError(ExitError, "loading index: %v", err)
	}

	size, err := index.IndexSize(cfg.IndexPath())
	if err != nil {
		size = 0
	}

	if humanOutput {
		outputHuman("Documents: %d\n", idx.Len())
		outputHuman("Vocabulary: %d words\n", len(idx.Vectorizer.IDF))
		outputHuman("Version: %d\n", idx.Version)
		outputHuman("Size: %s\n", formatBytes(size))
	} else {
		outputJSON(IndexInfoResult{
			Documents:      idx.Len(),
			VocabularySize: len(idx.Vectorizer.IDF),
			Version:        idx.Version,
			IndexSizeBytes: size,
			Path:           cfg.IndexPath(),
		})
	}
	return nil
}
