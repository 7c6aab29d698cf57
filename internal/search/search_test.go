package search

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/john-neg/full-text-search/internal/document"
	"github.com/john-neg/full-text-search/internal/embedding"
	"github.com/john-neg/full-text-search/internal/index"
	"github.com/john-neg/full-text-search/internal/store"
	"github.com/john-neg/full-text-search/internal/translate"
)

type splitLemmatizer struct{}

func (splitLemmatizer) Lemmatize(ctx context.Context, text string) ([]string, error) {
	return strings.Fields(text), nil
}

type cyrillicDetector struct{}

func (cyrillicDetector) Detect(text string) string {
	if text == "" {
		return ""
	}
	for _, r := range text {
		if r >= 'а' && r <= 'я' || r >= 'А' && r <= 'Я' {
			return "russian"
		}
	}
	return "english"
}

type wordTranslator struct {
	words map[string]string
}

func (t wordTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	if out, ok := t.words[strings.ToLower(text)]; ok {
		return out, nil
	}
	return "", fmt.Errorf("no translation for %q", text)
}

func (t wordTranslator) Name() string { return "test" }

// newEngine seeds three fully processed articles, builds an index over
// them, and wires an engine with fake linguistics.
func newEngine(t *testing.T, model embedding.Model) (*Engine, *store.SQLite) {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(filepath.Join(t.TempDir(), "articles.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	seed := func(slug, lemmas, reference string) {
		doc := document.New(slug)
		doc.ParseStatus = document.StatusCompleted
		doc.ProcessStatus = document.StatusCompleted
		doc.LemmaStatus = document.StatusCompleted
		doc.Reference = reference
		doc.Lemmas = map[string]string{"text": lemmas}
		if _, err := st.Create(ctx, doc); err != nil {
			t.Fatalf("Create %s: %v", slug, err)
		}
	}
	seed("graphs", "граф вершина ребро",
		"Иванов И.И. Теория графов URL: https://example.org/graphs")
	seed("trees", "дерево вершина", "Петров П.П. Деревья")
	seed("cats", "кошка усы", "Сидоров С.С. Кошки")

	idx, _, err := index.NewBuilder(st).Build(ctx,
		[]string{"граф", "вершина", "ребро", "дерево", "кошка", "усы", "сеть"})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var expander *embedding.Expander
	if model != nil {
		expander = embedding.NewExpander(model, idx.Vectorizer.Vocabulary)
	}
	cache := translate.NewCache(wordTranslator{words: map[string]string{
		"graph": "граф",
	}}, "russian")

	return NewEngine(st, idx, expander, splitLemmatizer{}, cache,
		cyrillicDetector{}, "russian", nil), st
}

func TestPrepareQuery(t *testing.T) {
	ctx := context.Background()
	e, _ := newEngine(t, nil)

	t.Run("cleans and lemmatizes", func(t *testing.T) {
		got, err := e.PrepareQuery(ctx, "  Граф, вершина!  ")
		if err != nil {
			t.Fatalf("PrepareQuery: %v", err)
		}
		want := []string{"граф", "вершина"}
		if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("tokens = %v, want %v", got, want)
		}
	})

	t.Run("translates foreign tokens before filtering", func(t *testing.T) {
		got, err := e.PrepareQuery(ctx, "graph вершина")
		if err != nil {
			t.Fatalf("PrepareQuery: %v", err)
		}
		if len(got) != 2 || got[0] != "граф" {
			t.Errorf("tokens = %v, want [граф вершина]", got)
		}
	})

	t.Run("stopword-only query is empty", func(t *testing.T) {
		_, err := e.PrepareQuery(ctx, "и на по")
		if err != ErrEmptyQuery {
			t.Errorf("err = %v, want ErrEmptyQuery", err)
		}
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks and hydrates documents", func(t *testing.T) {
		e, _ := newEngine(t, nil)
		res, err := e.Search(ctx, "граф ребро", false, 10)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if res.Total != 3 {
			t.Errorf("Total = %d, want 3", res.Total)
		}
		if len(res.Hits) == 0 {
			t.Fatal("no hits")
		}
		top := res.Hits[0]
		if top.Document.ArticleSlug != "graphs" {
			t.Errorf("top hit = %s, want graphs", top.Document.ArticleSlug)
		}
		if top.Citation != "Иванов И.И. Теория графов" {
			t.Errorf("citation = %q", top.Citation)
		}
		if top.URL != "https://example.org/graphs" {
			t.Errorf("url = %q", top.URL)
		}
	})

	t.Run("zero-score documents never surface", func(t *testing.T) {
		e, _ := newEngine(t, nil)
		res, err := e.Search(ctx, "усы", false, 10)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		for _, hit := range res.Hits {
			if hit.Document.ArticleSlug != "cats" {
				t.Errorf("unexpected hit %s with score %v",
					hit.Document.ArticleSlug, hit.Score)
			}
		}
	})

	t.Run("unmatched query still reports the corpus total", func(t *testing.T) {
		e, _ := newEngine(t, nil)
		res, err := e.Search(ctx, "палеонтология", false, 10)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(res.Hits) != 0 {
			t.Errorf("hits = %v, want none", res.Hits)
		}
		if res.Total != 3 {
			t.Errorf("Total = %d, want 3", res.Total)
		}
	})

	t.Run("expansion pulls in neighbor matches", func(t *testing.T) {
		model := embedding.NewVectorModel(map[string][]float32{
			"граф":   {1, 0},
			"дерево": {0.8, 0.6},
			"кошка":  {0, 1},
		})
		e, _ := newEngine(t, model)

		plain, err := e.Search(ctx, "граф", false, 10)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		expanded, err := e.Search(ctx, "граф", true, 10)
		if err != nil {
			t.Fatalf("Search expanded: %v", err)
		}
		if len(expanded.Hits) <= len(plain.Hits) {
			t.Errorf("expanded hits = %d, plain hits = %d, want more",
				len(expanded.Hits), len(plain.Hits))
		}
		found := false
		for _, hit := range expanded.Hits {
			if hit.Document.ArticleSlug == "trees" {
				found = true
			}
		}
		if !found {
			t.Error("expansion should surface the trees document")
		}
	})
}

func TestSplitReference(t *testing.T) {
	tests := []struct {
		name     string
		ref      string
		citation string
		url      string
	}{
		{"with url", "Иванов И.И. Графы URL: https://example.org/x",
			"Иванов И.И. Графы", "https://example.org/x"},
		{"without url", "Иванов И.И. Графы", "Иванов И.И. Графы", ""},
		{"empty", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			citation, url := SplitReference(tt.ref)
			if citation != tt.citation || url != tt.url {
				t.Errorf("SplitReference(%q) = (%q, %q), want (%q, %q)",
					tt.ref, citation, url, tt.citation, tt.url)
			}
		})
	}
}
