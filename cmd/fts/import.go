package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/john-neg/full-text-search/internal/language"
	"github.com/john-neg/full-text-search/internal/pdfimport"
	"github.com/john-neg/full-text-search/internal/store"
)

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.AddCommand(importPDFCmd)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import article content from local files",
}

// ImportPDFResult is the response for the import pdf command.
type ImportPDFResult struct {
	Status string `json:"status"`
	Slug   string `json:"slug"`
	File   string `json:"file"`
}

var importPDFCmd = &cobra.Command{
	Use:   "pdf <slug> <file>",
	Short: "Attach a PDF's text as an article body",
	Long: `Extract the plain text of a PDF into an existing article record, for
articles whose source page carries no machine-readable full text. The
record's processing and lemmatization restart from waiting.`,
	Args: cobra.ExactArgs(2),
	RunE: runImportPDF,
}

func runImportPDF(cmd *cobra.Command, args []string) error {
	slug, file := args[0], args[1]
	cfg := mustLoadConfig()

	gw, closeStore := mustOpenGateway(cfg)
	defer closeStore()

	im := pdfimport.NewImporter(gw, language.NewLinguaDetector())
	if err := im.Attach(context.Background(), slug, file); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			exitWithError(ExitDataError, "no record with slug %s; run 'fts discover' first", slug)
		case errors.Is(err, pdfimport.ErrNoTextExtracted):
			exitWithError(ExitDataError, "%s has no extractable text (scanned without OCR?)", file)
		default:
			exitWithError(ExitError, "importing %s: %v", file, err)
		}
	}

	if humanOutput {
		outputHuman("Imported %s into %s\n", file, slug)
	} else {
		outputJSON(ImportPDFResult{Status: "complete", Slug: slug, File: file})
	}
	return nil
}
