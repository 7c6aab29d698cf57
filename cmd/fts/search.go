package main

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/john-neg/full-text-search/internal/embedding"
	"github.com/john-neg/full-text-search/internal/index"
	"github.com/john-neg/full-text-search/internal/language"
	"github.com/john-neg/full-text-search/internal/search"
)

var (
	searchExpand bool
	searchLimit  int
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().BoolVar(&searchExpand, "expand", false, "Expand the query with embedding near-synonyms")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 0, "Maximum number of results (0 = configured default)")
}

// SearchHit is one article in search results.
type SearchHit struct {
	ID       string   `json:"id"`
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Authors  []string `json:"authors"`
	Year     string   `json:"year"`
	Magazine string   `json:"magazine"`
	Score    float64  `json:"score"`
	Citation string   `json:"citation"`
	URL      string   `json:"url,omitempty"`
}

// SearchResponse is the response for the search command.
type SearchResponse struct {
	Query    string      `json:"query"`
	Expanded bool        `json:"expanded"`
	Total    int         `json:"total"`
	Results  []SearchHit `json:"results"`
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search articles by full-text relevance",
	Long: `Rank the indexed articles against a query by TF-IDF cosine
similarity. The query goes through the same linguistic preparation as
the documents; --expand additionally pulls in near-synonyms from the
embedding model.

Requires the index built with 'fts index build'.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(args[0])
	if query == "" {
		exitWithError(ExitError, "search query cannot be empty")
	}

	cfg := mustLoadConfig()
	logger := newLogger(cfg)

	idx, err := index.LoadIndex(cfg.IndexPath())
	if err != nil {
		if errors.Is(err, index.ErrIndexNotFound) {
			exitWithError(ExitConfigError, "no index at %s; run 'fts index build' first", cfg.IndexPath())
		}
		exitWithError(ExitError, "loading index: %v", err)
	}

	var expander *embedding.Expander
	if searchExpand {
		model, err := embedding.LoadModel(cfg.ModelPath())
		if err != nil {
			if errors.Is(err, embedding.ErrModelNotFound) {
				exitWithError(ExitConfigError, "no embedding model at %s", cfg.ModelPath())
			}
			exitWithError(ExitError, "loading embedding model: %v", err)
		}
		expander = embedding.NewExpander(model, idx.Vectorizer.Vocabulary,
			embedding.WithNeighbors(cfg.ExpansionSize),
			embedding.WithThreshold(cfg.ExpansionThreshold))
	}

	gw, closeStore := mustOpenGateway(cfg)
	defer closeStore()

	chain := newTranslatorChain(cfg)
	cache := mustLoadCache(cfg, chain)
	engine := search.NewEngine(gw, idx, expander, newLemmatizer(cfg), cache,
		language.NewLinguaDetector(), cfg.TargetLanguage, logger)

	limit := searchLimit
	if limit <= 0 {
		limit = cfg.ResultLimit
	}

	results, err := engine.Search(context.Background(), query, searchExpand, limit)
	saveCache(cfg, cache, logger)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	hits := make([]SearchHit, 0, len(results.Hits))
	for _, hit := range results.Hits {
		hits = append(hits, SearchHit{
			ID:       hit.Document.ID,
			Slug:     hit.Document.ArticleSlug,
			Title:    hit.Document.Title,
			Authors:  hit.Document.Authors,
			Year:     hit.Document.Year,
			Magazine: hit.Document.Magazine,
			Score:    hit.Score,
			Citation: hit.Citation,
			URL:      hit.URL,
		})
	}

	if humanOutput {
		outputHuman("Search: %q (%d articles indexed)\n\n", query, results.Total)
		for i, h := range hits {
			outputHuman("%d. [%.3f] %s\n", i+1, h.Score, truncateString(h.Title, 70))
			outputHuman("   %s\n", h.Citation)
			if h.URL != "" {
				outputHuman("   %s\n", h.URL)
			}
			outputHuman("\n")
		}
		if len(hits) == 0 {
			outputHuman("No matches.\n")
		}
	} else {
		outputJSON(SearchResponse{
			Query:    query,
			Expanded: searchExpand,
			Total:    results.Total,
			Results:  hits,
		})
	}
	return nil
}
