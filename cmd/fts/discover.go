package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/john-neg/full-text-search/internal/source"
)

func init() {
	rootCmd.AddCommand(discoverCmd)
}

// DiscoverResult is the response for the discover command.
type DiscoverResult struct {
	Status   string `json:"status"`
	Category string `json:"category"`
	Added    int    `json:"added"`
}

var discoverCmd = &cobra.Command{
	Use:   "discover <category>",
	Short: "Discover article links in a source category",
	Long: `Walk a source category's pagination and create a waiting record for
every article slug not seen before. Discovery resumes near where the
previous run stopped, based on the stored record count.

The run halts with exit code 4 if the source presents an anti-bot
challenge; wait before re-running.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	category := args[0]
	cfg := mustLoadConfig()
	logger := newLogger(cfg)

	gw, closeStore := mustOpenGateway(cfg)
	defer closeStore()

	ctrl, _ := newController(cfg, gw, logger)
	added, err := ctrl.Discover(context.Background(), category)
	if err != nil {
		if errors.Is(err, source.ErrBlocked) {
			exitWithError(ExitBlocked, "source blocked the run after %d new records", added)
		}
		exitWithError(ExitError, "discovering %s: %v", category, err)
	}

	if humanOutput {
		outputHuman("Discovered %d new articles in %s\n", added, category)
	} else {
		outputJSON(DiscoverResult{Status: "complete", Category: category, Added: added})
	}
	return nil
}
