package pdfimport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/john-neg/full-text-search/internal/document"
	"github.com/john-neg/full-text-search/internal/store"
)

type staticDetector struct{}

func (staticDetector) Detect(text string) string { return "russian" }

func TestAttach(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(filepath.Join(t.TempDir(), "articles.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	im := NewImporter(st, staticDetector{})

	t.Run("unknown slug", func(t *testing.T) {
		err := im.Attach(ctx, "missing", "whatever.pdf")
		if !errors.Is(err, store.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("unreadable file", func(t *testing.T) {
		if _, err := st.Create(ctx, document.New("graphs-1")); err != nil {
			t.Fatalf("Create: %v", err)
		}
		err := im.Attach(ctx, "graphs-1", filepath.Join(t.TempDir(), "absent.pdf"))
		if err == nil {
			t.Fatal("expected an error for a missing file")
		}
		// The record must be untouched.
		doc, getErr := st.Get(ctx, store.Filter{Slug: "graphs-1"})
		if getErr != nil {
			t.Fatalf("Get: %v", getErr)
		}
		if doc.ParseStatus != document.StatusWaiting || doc.Text != "" {
			t.Errorf("record modified after failed import: %+v", doc)
		}
	})

	t.Run("garbage file is not a pdf", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fake.pdf")
		if err := os.WriteFile(path, []byte("not a pdf"), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if err := im.Attach(ctx, "graphs-1", path); err == nil {
			t.Fatal("expected an error for a non-pdf file")
		}
	})
}
