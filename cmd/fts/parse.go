package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/john-neg/full-text-search/internal/source"
)

var parseMax int

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().IntVar(&parseMax, "max", 0, "Stop after this many records (0 = until the queue is empty)")
}

// ParseResult is the response for the parse command.
type ParseResult struct {
	Status  string `json:"status"`
	Handled int    `json:"handled"`
}

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Fetch article fields for waiting records",
	Long: `Claim waiting records one at a time and fetch their article fields
from the source. Removed articles are status-marked delete, transient
timeouts go back to the queue, and pages missing expected markup are
marked error for operator triage.

The run halts with exit code 4 on an anti-bot challenge; affected
records return to the queue first.`,
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)

	gw, closeStore := mustOpenGateway(cfg)
	defer closeStore()

	ctrl, _ := newController(cfg, gw, logger)
	ctx := context.Background()

	handled := 0
	for parseMax <= 0 || handled < parseMax {
		ok, err := ctrl.ParseNext(ctx)
		if err != nil {
			if errors.Is(err, source.ErrBlocked) {
				exitWithError(ExitBlocked, "source blocked the run after %d records", handled)
			}
			exitWithError(ExitError, "parsing: %v", err)
		}
		if !ok {
			break
		}
		handled++
	}

	if humanOutput {
		outputHuman("Parsed %d records\n", handled)
	} else {
		outputJSON(ParseResult{Status: "complete", Handled: handled})
	}
	return nil
}
