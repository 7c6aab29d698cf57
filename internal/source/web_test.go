package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const articleHTML = `<html><body>
<h1><i itemprop="headline">Теория графов</i></h1>
<ul class="author-list">
  <li itemprop="author">Иванов И.И.</li>
  <li itemprop="author">Петров П.П.</li>
</ul>
<time itemprop="datePublished">2019</time>
<a itemprop="publisher"><span>Вестник математики</span></a>
<span itemprop="issueNumber">4</span>
<span itemprop="volumeNumber">12</span>
<ul class="keyword-list">
  <li><span itemprop="keywords">граф</span></li>
  <li><span itemprop="keywords">дерево</span></li>
</ul>
<div itemprop="description"><p>Аннотация статьи.</p></div>
<div class="article-badges"><span class="vak">ВАК</span></div>
<div class="citation"><p>Иванов И.И. Теория графов URL: https://example.org</p></div>
<div itemprop="articleBody"><p>Первый абзац.</p><p>Второй абзац.</p></div>
</body></html>`

const categoryHTML = `<html><body>
<a href="/article/n/teoriya-grafov">Теория графов</a>
<a href="/article/n/teoriya-mnozhestv">Теория множеств</a>
<a href="/article/n/teoriya-grafov">Теория графов (дубль)</a>
<ul class="pagination"><li><a>1</a></li><li><a>2</a></li><li><a>37</a></li></ul>
</body></html>`

const challengeHTML = `<html><body>
<div id="g-recaptcha-response"></div>
</body></html>`

func newTestSource(t *testing.T, handler http.Handler) *WebSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWebSource(srv.URL, WithRateLimit(1000))
}

func TestFetchArticle(t *testing.T) {
	src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, articleHTML)
	}))

	fields, err := src.Fetch(context.Background(), "teoriya-grafov")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if fields.Title != "Теория графов" {
		t.Errorf("title: %q", fields.Title)
	}
	if len(fields.Authors) != 2 || fields.Authors[0] != "Иванов И.И." {
		t.Errorf("authors: %v", fields.Authors)
	}
	if fields.Year != "2019" || fields.Magazine != "Вестник математики" {
		t.Errorf("magazine data: %q %q", fields.Year, fields.Magazine)
	}
	if fields.MagazineIssue != "4" || fields.MagazineVolume != "12" {
		t.Errorf("issue/volume: %q/%q", fields.MagazineIssue, fields.MagazineVolume)
	}
	if len(fields.Keywords) != 2 {
		t.Errorf("keywords: %v", fields.Keywords)
	}
	if fields.Scopus != "0" || fields.VAK != "1" {
		t.Errorf("flags: scopus=%q vak=%q", fields.Scopus, fields.VAK)
	}
	if fields.Text != "Первый абзац.\nВторой абзац." {
		t.Errorf("body: %q", fields.Text)
	}
}

func TestFetchOutcomes(t *testing.T) {
	t.Run("challenge page is ErrBlocked", func(t *testing.T) {
		src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, challengeHTML)
		}))
		_, err := src.Fetch(context.Background(), "any")
		if !errors.Is(err, ErrBlocked) {
			t.Errorf("expected ErrBlocked, got %v", err)
		}
	})

	t.Run("empty page is ErrEmptyPage", func(t *testing.T) {
		src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html><body>  </body></html>")
		}))
		_, err := src.Fetch(context.Background(), "any")
		if !errors.Is(err, ErrEmptyPage) {
			t.Errorf("expected ErrEmptyPage, got %v", err)
		}
	})

	t.Run("page without article markup is ErrMissingContent", func(t *testing.T) {
		src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "<html><body><p>что-то другое</p></body></html>")
		}))
		_, err := src.Fetch(context.Background(), "any")
		if !errors.Is(err, ErrMissingContent) {
			t.Errorf("expected ErrMissingContent, got %v", err)
		}
	})
}

func TestCategory(t *testing.T) {
	src := newTestSource(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, categoryHTML)
	}))

	cat := src.Category("mathematics")

	pages, err := cat.Pages(context.Background())
	if err != nil {
		t.Fatalf("Pages failed: %v", err)
	}
	if pages != 37 {
		t.Errorf("expected 37 pages, got %d", pages)
	}

	slugs, err := cat.Slugs(context.Background(), 1)
	if err != nil {
		t.Fatalf("Slugs failed: %v", err)
	}
	if len(slugs) != 2 {
		t.Fatalf("expected 2 distinct slugs, got %v", slugs)
	}
	if slugs[0] != "teoriya-grafov" || slugs[1] != "teoriya-mnozhestv" {
		t.Errorf("unexpected slugs: %v", slugs)
	}
}
