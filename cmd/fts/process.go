package main

import (
	"context"

	"github.com/spf13/cobra"
)

var processMax int

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().IntVar(&processMax, "max", 0, "Stop after this many records (0 = whole snapshot)")
}

// ProcessResult is the response for the process command.
type ProcessResult struct {
	Status    string `json:"status"`
	Processed int    `json:"processed"`
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Clean and translate parsed records",
	Long: `Run the cleanup and translation stage over parsed records: keyword
filtering and translation, abstract translation, OCR letter fix-up and
text cleanup. Records without a citation reference, or in a language
other than the target, are left waiting.`,
	RunE: runProcess,
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	logger := newLogger(cfg)

	gw, closeStore := mustOpenGateway(cfg)
	defer closeStore()

	ctrl, cache := newController(cfg, gw, logger)
	processed, err := ctrl.ProcessAll(context.Background(), processMax)
	saveCache(cfg, cache, logger)
	if err != nil {
		exitWithError(ExitError, "processing: %v", err)
	}

	if humanOutput {
		outputHuman("Processed %d records (%d cached translations)\n", processed, cache.Len())
	} else {
		outputJSON(ProcessResult{Status: "complete", Processed: processed})
	}
	return nil
}
