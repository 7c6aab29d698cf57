package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/john-neg/full-text-search/internal/index"
)

var (
	vocabSize int
	vocabSeed string
)

func init() {
	rootCmd.AddCommand(vocabCmd)
	vocabCmd.AddCommand(vocabBuildCmd)

	vocabBuildCmd.Flags().IntVar(&vocabSize, "size", 0, "Vocabulary size (0 = configured default)")
	vocabBuildCmd.Flags().StringVar(&vocabSeed, "seed", "", "Seed word list file, one word per line, ranked first")
}

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Manage the index vocabulary",
}

// VocabBuildResult is the response for the vocab build command.
type VocabBuildResult struct {
	Status       string `json:"status"`
	Words        int    `json:"words"`
	SeedWords    int    `json:"seed_words"`
	CorpusSize   int    `json:"corpus_size"`
	UniqueLemmas int    `json:"unique_lemmas"`
	Path         string `json:"path"`
}

var vocabBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the vocabulary from the lemmatized corpus",
	Long: `Collect the most frequent lemmas across all fully processed records
into the fixed vocabulary the vector index is built over. An optional
seed list is ranked ahead of corpus words.`,
	RunE: runVocabBuild,
}

func runVocabBuild(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	gw, closeStore := mustOpenGateway(cfg)
	defer closeStore()

	_, texts, err := index.NewBuilder(gw).Corpus(context.Background())
	if err != nil {
		exitWithError(ExitError, "reading corpus: %v", err)
	}
	if len(texts) == 0 {
		exitWithError(ExitDataError, "no fully processed records; run the pipeline first")
	}

	size := vocabSize
	if size <= 0 {
		size = cfg.VocabularySize
	}

	var seed []string
	if vocabSeed != "" {
		seed, err = readWordList(vocabSeed)
		if err != nil {
			exitWithError(ExitDataError, "reading seed list: %v", err)
		}
	}

	counts := index.CountLemmas(texts)
	words := index.MergeVocabulary(seed, index.TopWords(counts, size))
	if len(words) > size {
		words = words[:size]
	}

	if err := writeWordList(cfg.VocabularyPath(), words); err != nil {
		exitWithError(ExitError, "writing vocabulary: %v", err)
	}

	if humanOutput {
		outputHuman("Vocabulary: %d words (%d seeded, %d unique lemmas in %d documents)\n",
			len(words), len(seed), len(counts), len(texts))
	} else {
		outputJSON(VocabBuildResult{
			Status:       "complete",
			Words:        len(words),
			SeedWords:    len(seed),
			CorpusSize:   len(texts),
			UniqueLemmas: len(counts),
			Path:         cfg.VocabularyPath(),
		})
	}
	return nil
}

// readWordList reads a one-word-per-line file, skipping blanks.
func readWordList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var words []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			words = append(words, line)
		}
	}
	return words, nil
}

func writeWordList(path string, words []string) error {
	var builder strings.Builder
	for _, w := range words {
		builder.WriteString(w)
		builder.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(builder.String()), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
