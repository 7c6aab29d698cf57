package index

import (
	"context"
	"fmt"
	"time"

	"github.com/john-neg/full-text-search/internal/document"
	"github.com/john-neg/full-text-search/internal/store"
)

// BuildStats summarizes one index build.
type BuildStats struct {
	DocumentsIndexed int
	VocabularySize   int
	Duration         time.Duration
}

// Builder assembles an index from the fully processed documents in the
// store: both statuses and lemmatization completed. Lemma fields are
// concatenated in the pipeline's field order.
type Builder struct {
	store  store.DocumentStore
	fields []string
}

// NewBuilder creates a builder over the store, indexing the standard
// lemma fields.
func NewBuilder(st store.DocumentStore) *Builder {
	return &Builder{store: st, fields: document.LemmaFields}
}

// Corpus returns the lemma text of every fully processed document in
// creation order, paired with the matching document ids. A document
// whose lemma fields are all empty still gets an entry; its zero
// vector never scores against a query.
func (b *Builder) Corpus(ctx context.Context) (ids []string, texts []string, err error) {
	docs, err := b.store.List(ctx, store.FullyProcessed())
	if err != nil {
		return nil, nil, fmt.Errorf("listing documents: %w", err)
	}

	for _, doc := range docs {
		ids = append(ids, doc.ID)
		texts = append(texts, doc.LemmaText(b.fields))
	}
	return ids, texts, nil
}

// Build fits a vectorizer over the corpus with the given vocabulary and
// indexes every document.
func (b *Builder) Build(ctx context.Context, vocabulary []string) (*Index, *BuildStats, error) {
	start := time.Now()

	ids, texts, err := b.Corpus(ctx)
	if err != nil {
		return nil, nil, err
	}

	vectorizer := NewVectorizer(vocabulary)
	vectorizer.Fit(texts)

	idx := New(vectorizer)
	for i, id := range ids {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		idx.Add(id, texts[i])
	}

	stats := &BuildStats{
		DocumentsIndexed: len(ids),
		VocabularySize:   len(vectorizer.IDF),
		Duration:         time.Since(start),
	}
	return idx, stats, nil
}
