// Package lifecycle drives article records through the pipeline's
// status state machine: discovery, parsing, cleanup/translation
// processing, and lemmatization.
//
// Statuses on the record are the only progress state: the controller
// may be killed and restarted at any point and resumes from whatever
// the store holds. Each stage assumes a single writer (see package
// store); the parse claim is additionally an atomic conditional update.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/john-neg/full-text-search/internal/document"
	"github.com/john-neg/full-text-search/internal/language"
	"github.com/john-neg/full-text-search/internal/source"
	"github.com/john-neg/full-text-search/internal/store"
	"github.com/john-neg/full-text-search/internal/textproc"
	"github.com/john-neg/full-text-search/internal/translate"
)

const (
	// DefaultArticlesPerPage is how many article links one category
	// page lists; discovery uses it to resume pagination.
	DefaultArticlesPerPage = 20

	// DefaultPageOffset is how many already-visited pages discovery
	// re-scans before the resume point, to pick up late insertions.
	DefaultPageOffset = 2

	// DefaultLemmatizeBatch bounds one lemmatization batch.
	DefaultLemmatizeBatch = 50
)

// Controller orchestrates the pipeline stages over the shared store.
type Controller struct {
	store    store.DocumentStore
	source   source.ArticleSource
	detector language.Detector
	cache    *translate.Cache
	chain    translate.Translator
	pipe     *language.Pipe

	stopwords map[string]bool
	target    string

	articlesPerPage int
	pageOffset      int

	blockLog *store.RetryLog
	logger   *slog.Logger
}

// Options configures a Controller beyond its required collaborators.
type Options struct {
	ArticlesPerPage int
	PageOffset      int
	BlockLog        *store.RetryLog
	Logger          *slog.Logger
}

// New wires a controller. target is the pipeline's language
// ("russian"); records in other languages never pass the processing
// gate.
func New(st store.DocumentStore, src source.ArticleSource, det language.Detector,
	cache *translate.Cache, chain translate.Translator, pipe *language.Pipe,
	target string, opts Options) *Controller {

	if opts.ArticlesPerPage <= 0 {
		opts.ArticlesPerPage = DefaultArticlesPerPage
	}
	if opts.PageOffset < 0 {
		opts.PageOffset = 0
	}
	if opts.BlockLog == nil {
		opts.BlockLog = store.NewRetryLog("")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Controller{
		store:           st,
		source:          src,
		detector:        det,
		cache:           cache,
		chain:           chain,
		pipe:            pipe,
		stopwords:       language.RussianStopwords(),
		target:          target,
		articlesPerPage: opts.ArticlesPerPage,
		pageOffset:      opts.PageOffset,
		blockLog:        opts.BlockLog,
		logger:          opts.Logger,
	}
}

// Discover paginates a category and creates a waiting record for every
// slug not already present. Re-running with the same source yields no
// duplicates. An anti-bot block halts the run with a logged event; the
// caller must not retry in-process.
func (c *Controller) Discover(ctx context.Context, category string) (int, error) {
	cat := c.source.Category(category)

	pages, err := cat.Pages(ctx)
	if err != nil {
		if errors.Is(err, source.ErrBlocked) {
			c.blockLog.Append("!#%s pages CAPTCHA", category)
		}
		return 0, fmt.Errorf("reading category %s: %w", category, err)
	}

	// Resume where the stored record count suggests discovery stopped,
	// re-scanning a few pages for safety.
	total, err := c.store.Count(ctx, store.Filter{})
	if err != nil {
		return 0, err
	}
	start := total/c.articlesPerPage + 1 - c.pageOffset
	if start < 1 {
		start = 1
	}

	added := 0
	for page := start; page <= pages; page++ {
		slugs, err := cat.Slugs(ctx, page)
		if err != nil {
			if errors.Is(err, source.ErrBlocked) {
				c.blockLog.Append("!#%s page:%d CAPTCHA", category, page)
				c.logger.Error("discovery blocked", "category", category, "page", page)
			}
			return added, fmt.Errorf("category %s page %d: %w", category, page, err)
		}

		c.logger.Info("discovering", "category", category, "page", page, "slugs", len(slugs))
		for _, slug := range slugs {
			_, err := c.store.Get(ctx, store.Filter{Slug: slug})
			if err == nil {
				continue
			}
			if !errors.Is(err, store.ErrNotFound) {
				return added, err
			}
			if _, err := c.store.Create(ctx, document.New(slug)); err != nil {
				if errors.Is(err, store.ErrDuplicateSlug) {
					continue
				}
				return added, err
			}
			added++
		}
	}
	return added, nil
}

// ParseNext claims one waiting record and fetches its fields from the
// source. It reports whether a record was handled; (false, nil) means
// no candidates remain. An anti-bot block reverts the record to
// waiting, logs the event, and returns source.ErrBlocked wrapped as a
// fatal error for the whole run.
func (c *Controller) ParseNext(ctx context.Context) (bool, error) {
	doc, err := c.store.ClaimNext(ctx, store.StageParse)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	fields, err := c.source.Fetch(ctx, doc.ArticleSlug)
	switch {
	case errors.Is(err, source.ErrEmptyPage):
		// Resource removed upstream; terminal but not an error.
		c.logger.Info("source removed", "slug", doc.ArticleSlug)
		return true, c.setParseStatus(ctx, doc.ID, document.StatusDelete)

	case errors.Is(err, source.ErrBlocked):
		c.blockLog.Append("!#article:%s CAPTCHA", doc.ArticleSlug)
		c.logger.Error("parsing blocked", "slug", doc.ArticleSlug)
		if revertErr := c.setParseStatus(ctx, doc.ID, document.StatusWaiting); revertErr != nil {
			return true, revertErr
		}
		return true, fmt.Errorf("parsing %s: %w", doc.ArticleSlug, err)

	case errors.Is(err, source.ErrFetchTimeout):
		// Retryable later; the record goes back to the queue.
		c.logger.Warn("fetch timeout", "slug", doc.ArticleSlug)
		return true, c.setParseStatus(ctx, doc.ID, document.StatusWaiting)

	case errors.Is(err, source.ErrMissingContent):
		// Operator triage via status query; no automatic retry.
		c.logger.Warn("missing content", "slug", doc.ArticleSlug)
		return true, c.setParseStatus(ctx, doc.ID, document.StatusError)

	case err != nil:
		if revertErr := c.setParseStatus(ctx, doc.ID, document.StatusWaiting); revertErr != nil {
			return true, revertErr
		}
		return true, fmt.Errorf("fetching %s: %w", doc.ArticleSlug, err)
	}

	update := store.Fields{
		"authors":         fields.Authors,
		"title":           fields.Title,
		"year":            fields.Year,
		"magazine":        fields.Magazine,
		"magazine_issue":  fields.MagazineIssue,
		"magazine_volume": fields.MagazineVolume,
		"keywords":        fields.Keywords,
		"abstract":        fields.Abstract,
		"scopus":          fields.Scopus,
		"vak":             fields.VAK,
		"reference":       fields.Reference,
		"body":            fields.Text,
		"language":        c.detector.Detect(fields.Text),
		"parse_status":    document.StatusCompleted,
	}
	if err := c.store.Update(ctx, doc.ID, update); err != nil {
		return true, err
	}
	c.logger.Info("parsed", "slug", doc.ArticleSlug)
	return true, nil
}

func (c *Controller) setParseStatus(ctx context.Context, id string, s document.Status) error {
	return c.store.Update(ctx, id, store.Fields{"parse_status": s})
}

// ProcessAll runs the cleanup/translation stage over one snapshot of
// eligible records (parse completed, processing waiting). Records that
// fail the gate (no citation reference, or language other than the
// target) are left waiting, as are records whose translation providers
// are all down. max <= 0 means no bound. Returns how many records
// completed.
func (c *Controller) ProcessAll(ctx context.Context, max int) (int, error) {
	docs, err := c.store.List(ctx, store.Filter{
		ParseStatus:   document.StatusCompleted,
		ProcessStatus: document.StatusWaiting,
	})
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, doc := range docs {
		if max > 0 && processed >= max {
			break
		}
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}

		if doc.Reference == "" || doc.Language != c.target {
			c.logger.Debug("processing gate not met", "slug", doc.ArticleSlug,
				"language", doc.Language)
			continue
		}

		if err := c.processOne(ctx, doc); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return processed, err
			}
			c.logger.Warn("processing failed", "slug", doc.ArticleSlug, "error", err)
			continue
		}
		processed++
	}
	return processed, nil
}

func (c *Controller) processOne(ctx context.Context, doc *document.ArticleDocument) error {
	if err := c.store.Update(ctx, doc.ID,
		store.Fields{"processing_status": document.StatusInProgress}); err != nil {
		return err
	}

	revert := func(cause error) error {
		if err := c.store.Update(ctx, doc.ID,
			store.Fields{"processing_status": document.StatusWaiting}); err != nil {
			return errors.Join(cause, err)
		}
		return cause
	}

	keywords, err := c.translateKeywords(ctx, textproc.FilterKeywords(doc.Keywords))
	if err != nil {
		return revert(err)
	}

	abstract, err := c.translateAbstract(ctx, textproc.FilterLetters(doc.Abstract))
	if err != nil {
		return revert(err)
	}

	body := textproc.Cleanup(textproc.FixLetters(doc.Text))

	return c.store.Update(ctx, doc.ID, store.Fields{
		"keywords":          keywords,
		"abstract":          abstract,
		"body":              body,
		"processing_status": document.StatusCompleted,
	})
}

// translateKeywords brings foreign keywords into the target language
// through the memoizing cache.
func (c *Controller) translateKeywords(ctx context.Context, keywords []string) ([]string, error) {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if c.detector.Detect(kw) != c.target {
			translated, err := c.cache.TranslateWord(ctx, kw)
			if err != nil {
				return nil, err
			}
			kw = translated
		}
		out = append(out, kw)
	}
	return out, nil
}

// translateAbstract translates a whole abstract only when its detected
// language differs from the target.
func (c *Controller) translateAbstract(ctx context.Context, abstract string) (string, error) {
	if abstract == "" {
		return "", nil
	}
	lang := c.detector.Detect(abstract)
	if lang == "" || lang == c.target {
		return abstract, nil
	}
	return c.chain.Translate(ctx, abstract, c.target)
}

// LemmatizeBatch lemmatizes up to batch eligible records through the
// batched pipe. Results may complete out of order; the carried token
// attributes each back to its (document, field) pair. A record's
// status becomes completed only after all its non-empty lemma fields
// processed; any field failure leaves it waiting for a later run.
func (c *Controller) LemmatizeBatch(ctx context.Context, batch int) (int, error) {
	if batch <= 0 {
		batch = DefaultLemmatizeBatch
	}

	docs, err := c.store.List(ctx, store.Filter{
		ParseStatus:   document.StatusCompleted,
		ProcessStatus: document.StatusCompleted,
		LemmaStatus:   document.StatusWaiting,
	})
	if err != nil {
		return 0, err
	}
	if len(docs) > batch {
		docs = docs[:batch]
	}
	if len(docs) == 0 {
		return 0, nil
	}

	var items []language.Item
	// Per-document bookkeeping: how many fields still await results,
	// and the lemma string collected for each finished field.
	pending := map[string]int{}
	lemmas := map[string]map[string]string{}
	failed := map[string]bool{}

	for _, doc := range docs {
		if err := c.store.Update(ctx, doc.ID,
			store.Fields{"lemmatization_status": document.StatusInProgress}); err != nil {
			return 0, err
		}
		lemmas[doc.ID] = map[string]string{}
		for _, field := range document.LemmaFields {
			value := doc.FieldValue(field)
			if value == "" {
				continue
			}
			if field == "title" {
				// Titles carry OCR noise past the body cleanup.
				value = textproc.FilterLetters(value)
			}
			items = append(items, language.Item{
				Text:  value,
				Token: language.Token{DocID: doc.ID, Field: field},
			})
			pending[doc.ID]++
		}
	}

	for res := range c.pipe.Run(ctx, items) {
		id := res.Token.DocID
		if res.Err != nil {
			c.logger.Warn("lemmatization failed", "doc", id,
				"field", res.Token.Field, "error", res.Err)
			failed[id] = true
		} else {
			filtered := language.FilterLemmas(res.Lemmas, c.stopwords)
			lemmas[id][res.Token.Field] = textproc.FixLetters(strings.Join(filtered, " "))
		}
		pending[id]--
	}

	completed := 0
	for _, doc := range docs {
		if pending[doc.ID] > 0 || failed[doc.ID] {
			// Cancelled mid-batch or a field failed: back to the queue.
			if err := c.store.Update(ctx, doc.ID,
				store.Fields{"lemmatization_status": document.StatusWaiting}); err != nil {
				return completed, err
			}
			continue
		}
		err := c.store.Update(ctx, doc.ID, store.Fields{
			"lemmas":               lemmas[doc.ID],
			"lemmatization_status": document.StatusCompleted,
		})
		if err != nil {
			return completed, err
		}
		completed++
	}
	return completed, nil
}
