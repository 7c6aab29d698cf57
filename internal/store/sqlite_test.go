package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/john-neg/full-text-search/internal/document"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "articles.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := document.New("teoriya-grafov")
	id, err := s.Create(ctx, doc)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id == "" {
		t.Fatal("Create should return a store id")
	}

	t.Run("get by slug", func(t *testing.T) {
		got, err := s.Get(ctx, Filter{Slug: "teoriya-grafov"})
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.ParseStatus != document.StatusWaiting {
			t.Errorf("new record should be waiting, got %s", got.ParseStatus)
		}
	})

	t.Run("get by id", func(t *testing.T) {
		got, err := s.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if got.ArticleSlug != "teoriya-grafov" {
			t.Errorf("unexpected slug %q", got.ArticleSlug)
		}
	})

	t.Run("missing document", func(t *testing.T) {
		if _, err := s.Get(ctx, Filter{Slug: "nope"}); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate slug", func(t *testing.T) {
		if _, err := s.Create(ctx, document.New("teoriya-grafov")); !errors.Is(err, ErrDuplicateSlug) {
			t.Errorf("expected ErrDuplicateSlug, got %v", err)
		}
	})
}

func TestUpdate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := document.New("slug-1")
	id, err := s.Create(ctx, doc)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err = s.Update(ctx, id, Fields{
		"title":        "Теория множеств",
		"keywords":     []string{"множество", "теория"},
		"lemmas":       map[string]string{"title": "теория множество"},
		"parse_status": document.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := s.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Теория множеств" {
		t.Errorf("title not updated: %q", got.Title)
	}
	if len(got.Keywords) != 2 || got.Keywords[0] != "множество" {
		t.Errorf("keywords not updated: %v", got.Keywords)
	}
	if got.Lemmas["title"] != "теория множество" {
		t.Errorf("lemmas not updated: %v", got.Lemmas)
	}
	if got.ParseStatus != document.StatusCompleted {
		t.Errorf("status not updated: %s", got.ParseStatus)
	}

	if err := s.Update(ctx, "99999", Fields{"title": "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("updating a missing document should be ErrNotFound, got %v", err)
	}
}

func TestListAndCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, slug := range []string{"a", "b", "c"} {
		if _, err := s.Create(ctx, document.New(slug)); err != nil {
			t.Fatalf("Create %s failed: %v", slug, err)
		}
	}
	// Complete record "b" through every stage.
	b, _ := s.Get(ctx, Filter{Slug: "b"})
	err := s.Update(ctx, b.ID, Fields{
		"parse_status":         document.StatusCompleted,
		"processing_status":    document.StatusCompleted,
		"lemmatization_status": document.StatusCompleted,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	waiting, err := s.List(ctx, Filter{ParseStatus: document.StatusWaiting})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(waiting) != 2 {
		t.Errorf("expected 2 waiting records, got %d", len(waiting))
	}
	// Creation order is preserved.
	if waiting[0].ArticleSlug != "a" || waiting[1].ArticleSlug != "c" {
		t.Errorf("unexpected list order: %s, %s", waiting[0].ArticleSlug, waiting[1].ArticleSlug)
	}

	n, err := s.Count(ctx, FullyProcessed())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 fully processed record, got %d", n)
	}
}

func TestClaimNext(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	t.Run("no candidates", func(t *testing.T) {
		if _, err := s.ClaimNext(ctx, StageParse); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	if _, err := s.Create(ctx, document.New("first")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := s.Create(ctx, document.New("second")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("claims oldest waiting record", func(t *testing.T) {
		doc, err := s.ClaimNext(ctx, StageParse)
		if err != nil {
			t.Fatalf("ClaimNext failed: %v", err)
		}
		if doc.ArticleSlug != "first" {
			t.Errorf("expected oldest record, got %q", doc.ArticleSlug)
		}
		if doc.ParseStatus != document.StatusInProgress {
			t.Errorf("claimed record should be in_progress, got %s", doc.ParseStatus)
		}
	})

	t.Run("claimed record is not offered again", func(t *testing.T) {
		doc, err := s.ClaimNext(ctx, StageParse)
		if err != nil {
			t.Fatalf("ClaimNext failed: %v", err)
		}
		if doc.ArticleSlug != "second" {
			t.Errorf("expected second record, got %q", doc.ArticleSlug)
		}
	})

	t.Run("lemmatize stage requires both prior stages", func(t *testing.T) {
		second, _ := s.Get(ctx, Filter{Slug: "second"})
		err := s.Update(ctx, second.ID, Fields{
			"parse_status": document.StatusCompleted,
		})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		if _, err := s.ClaimNext(ctx, StageLemmatize); !errors.Is(err, ErrNotFound) {
			t.Errorf("record without completed processing must not be claimed, got %v", err)
		}

		err = s.Update(ctx, second.ID, Fields{
			"processing_status": document.StatusCompleted,
		})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		doc, err := s.ClaimNext(ctx, StageLemmatize)
		if err != nil {
			t.Fatalf("ClaimNext failed: %v", err)
		}
		if doc.LemmaStatus != document.StatusInProgress {
			t.Errorf("expected in_progress, got %s", doc.LemmaStatus)
		}
	})
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, document.New("gone"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.GetByID(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete should be ErrNotFound, got %v", err)
	}
}
