package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/john-neg/full-text-search/internal/document"
	"github.com/john-neg/full-text-search/internal/store"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

// StageCounts holds per-status record counts for one pipeline stage.
type StageCounts struct {
	Waiting    int `json:"waiting"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Error      int `json:"error"`
	Delete     int `json:"delete,omitempty"`
}

// PipelineStatus is the response for the status command.
type PipelineStatus struct {
	Total         int         `json:"total"`
	Parsing       StageCounts `json:"parsing"`
	Processing    StageCounts `json:"processing"`
	Lemmatization StageCounts `json:"lemmatization"`
	Searchable    int         `json:"searchable"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-stage pipeline counts",
	Long: `Report how many records sit in each status of each pipeline stage.
Error counts point at records needing operator triage; in_progress
counts on an idle pipeline indicate an interrupted run.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	gw, closeStore := mustOpenGateway(cfg)
	defer closeStore()

	ctx := context.Background()
	st := PipelineStatus{}

	var err error
	if st.Total, err = gw.Count(ctx, store.Filter{}); err != nil {
		exitWithError(ExitError, "counting records: %v", err)
	}
	if st.Searchable, err = gw.Count(ctx, store.FullyProcessed()); err != nil {
		exitWithError(ExitError, "counting records: %v", err)
	}

	count := func(f store.Filter) int {
		n, err := gw.Count(ctx, f)
		if err != nil {
			exitWithError(ExitError, "counting records: %v", err)
		}
		return n
	}
	stage := func(filter func(document.Status) store.Filter) StageCounts {
		return StageCounts{
			Waiting:    count(filter(document.StatusWaiting)),
			InProgress: count(filter(document.StatusInProgress)),
			Completed:  count(filter(document.StatusCompleted)),
			Error:      count(filter(document.StatusError)),
			Delete:     count(filter(document.StatusDelete)),
		}
	}

	st.Parsing = stage(func(s document.Status) store.Filter {
		return store.Filter{ParseStatus: s}
	})
	st.Processing = stage(func(s document.Status) store.Filter {
		return store.Filter{ProcessStatus: s}
	})
	st.Lemmatization = stage(func(s document.Status) store.Filter {
		return store.Filter{LemmaStatus: s}
	})

	if humanOutput {
		outputHuman("Records: %d (%d searchable)\n\n", st.Total, st.Searchable)
		printStage := func(name string, c StageCounts) {
			outputHuman("%-14s waiting %-6d in_progress %-6d completed %-6d error %-6d delete %d\n",
				name, c.Waiting, c.InProgress, c.Completed, c.Error, c.Delete)
		}
		printStage("parsing", st.Parsing)
		printStage("processing", st.Processing)
		printStage("lemmatization", st.Lemmatization)
	} else {
		outputJSON(st)
	}
	return nil
}
