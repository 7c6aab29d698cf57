// Package pdfimport fills an article record's body from a local PDF,
// for articles whose source page offers no machine-readable full text.
package pdfimport

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/john-neg/full-text-search/internal/document"
	"github.com/john-neg/full-text-search/internal/language"
	"github.com/john-neg/full-text-search/internal/store"
)

// ErrNoTextExtracted means the PDF yielded no text, typically a
// scanned image without an OCR layer.
var ErrNoTextExtracted = errors.New("no text extracted from pdf")

// ExtractBody extracts the plain text of up to maxPages pages
// (maxPages <= 0 means all).
func ExtractBody(path string, maxPages int) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	body := strings.TrimSpace(builder.String())
	if body == "" {
		return "", ErrNoTextExtracted
	}
	return body, nil
}

// Importer attaches PDF bodies to stored article records.
type Importer struct {
	store    store.DocumentStore
	detector language.Detector
}

// NewImporter creates an importer over the store.
func NewImporter(st store.DocumentStore, det language.Detector) *Importer {
	return &Importer{store: st, detector: det}
}

// Attach extracts the PDF's text into the record identified by slug,
// re-detects the record language, and marks parsing completed so the
// downstream stages pick the record up. Processing and lemmatization
// statuses are reset to waiting: a replaced body invalidates their
// results.
func (im *Importer) Attach(ctx context.Context, slug, path string) error {
	doc, err := im.store.Get(ctx, store.Filter{Slug: slug})
	if err != nil {
		return fmt.Errorf("looking up %s: %w", slug, err)
	}

	body, err := ExtractBody(path, 0)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", path, err)
	}

	return im.store.Update(ctx, doc.ID, store.Fields{
		"body":                 body,
		"language":             im.detector.Detect(body),
		"parse_status":         document.StatusCompleted,
		"processing_status":    document.StatusWaiting,
		"lemmatization_status": document.StatusWaiting,
	})
}
