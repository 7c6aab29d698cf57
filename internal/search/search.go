// Package search is the read-side facade: it prepares raw user queries
// with the same linguistic steps the pipeline applies to documents,
// optionally expands them with embedding neighbors, and ranks the
// vector index, hydrating hits back into article records.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/john-neg/full-text-search/internal/document"
	"github.com/john-neg/full-text-search/internal/embedding"
	"github.com/john-neg/full-text-search/internal/index"
	"github.com/john-neg/full-text-search/internal/language"
	"github.com/john-neg/full-text-search/internal/store"
	"github.com/john-neg/full-text-search/internal/textproc"
	"github.com/john-neg/full-text-search/internal/translate"
)

// DefaultLimit is the result count used when the caller does not ask
// for a specific one.
const DefaultLimit = 10

// ErrEmptyQuery means the query had no usable tokens left after
// preparation.
var ErrEmptyQuery = errors.New("query is empty after preparation")

// Result is one search hit hydrated into its article record. Citation
// and URL are the two halves of the record's reference field.
type Result struct {
	Document *document.ArticleDocument
	Score    float64
	Citation string
	URL      string
}

// Results is a ranked result page plus the searchable corpus size,
// reported even when no hits match.
type Results struct {
	Total int
	Hits  []Result
}

// Engine wires the query-side collaborators together.
type Engine struct {
	store      store.DocumentStore
	index      *index.Index
	expander   *embedding.Expander
	lemmatizer language.Lemmatizer
	cache      *translate.Cache
	detector   language.Detector
	stopwords  map[string]bool
	target     string
	logger     *slog.Logger
}

// NewEngine creates a search engine. expander may be nil, in which
// case expansion requests are ignored.
func NewEngine(st store.DocumentStore, idx *index.Index, expander *embedding.Expander,
	lem language.Lemmatizer, cache *translate.Cache, det language.Detector,
	target string, logger *slog.Logger) *Engine {

	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:      st,
		index:      idx,
		expander:   expander,
		lemmatizer: lem,
		cache:      cache,
		detector:   det,
		stopwords:  language.RussianStopwords(),
		target:     target,
		logger:     logger,
	}
}

// PrepareQuery runs a raw query through the same steps the pipeline
// applies to documents: symbol filtering, translation of foreign
// tokens into the target language, lemmatization, and lemma filtering.
// Queries and documents must meet in the same token space or nothing
// ever matches.
func (e *Engine) PrepareQuery(ctx context.Context, raw string) ([]string, error) {
	words := strings.Fields(textproc.FixLetters(textproc.FilterLetters(raw)))
	if len(words) == 0 {
		return nil, ErrEmptyQuery
	}

	for i, w := range words {
		lang := e.detector.Detect(w)
		if lang == "" || lang == e.target {
			continue
		}
		translated, err := e.cache.TranslateWord(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("translating query word: %w", err)
		}
		words[i] = translated
	}

	lemmas, err := e.lemmatizer.Lemmatize(ctx, strings.Join(words, " "))
	if err != nil {
		return nil, fmt.Errorf("lemmatizing query: %w", err)
	}

	tokens := language.FilterLemmas(lemmas, e.stopwords)
	if len(tokens) == 0 {
		return nil, ErrEmptyQuery
	}
	return tokens, nil
}

// Search prepares the query, optionally expands it, ranks the index
// and hydrates the top k hits (k <= 0 means DefaultLimit). Zero-score
// rows never surface. The corpus total is reported even when Hits is
// empty.
func (e *Engine) Search(ctx context.Context, raw string, expand bool, k int) (*Results, error) {
	total, err := e.Total(ctx)
	if err != nil {
		return nil, err
	}

	tokens, err := e.PrepareQuery(ctx, raw)
	if errors.Is(err, ErrEmptyQuery) {
		return &Results{Total: total}, nil
	}
	if err != nil {
		return nil, err
	}

	if expand && e.expander != nil {
		expanded, err := e.expander.Expand(tokens)
		if err != nil {
			return nil, fmt.Errorf("expanding query: %w", err)
		}
		e.logger.Debug("query expanded", "from", len(tokens), "to", len(expanded))
		tokens = expanded
	}

	if k <= 0 {
		k = DefaultLimit
	}

	results := &Results{Total: total}
	for _, hit := range e.index.Search(strings.Join(tokens, " "), k) {
		if hit.Score == 0 {
			break
		}
		doc, err := e.store.GetByID(ctx, hit.DocID)
		if errors.Is(err, store.ErrNotFound) {
			// The index outlived the record; stale until the next build.
			e.logger.Warn("indexed document missing", "id", hit.DocID)
			continue
		}
		if err != nil {
			return nil, err
		}

		citation, url := SplitReference(doc.Reference)
		results.Hits = append(results.Hits, Result{
			Document: doc,
			Score:    hit.Score,
			Citation: citation,
			URL:      url,
		})
	}
	return results, nil
}

// Total counts the fully processed documents, the searchable corpus.
func (e *Engine) Total(ctx context.Context) (int, error) {
	return e.store.Count(ctx, store.FullyProcessed())
}

// SplitReference separates a stored reference into its citation text
// and source URL. References are stored as "<citation> URL: <url>";
// a reference without the marker is all citation.
func SplitReference(ref string) (citation, url string) {
	citation, url, found := strings.Cut(ref, " URL: ")
	if !found {
		return strings.TrimSpace(ref), ""
	}
	return strings.TrimSpace(citation), strings.TrimSpace(url)
}
