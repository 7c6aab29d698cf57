// Package store persists the article document collection in SQLite and
// exposes it behind a retry-wrapped gateway.
//
// The collection assumes a single writer per pipeline stage. The
// in-progress claim is still an atomic conditional update, so a second
// worker that loses the race selects the next candidate instead of
// double-processing a record.
package store

import (
	"context"
	"errors"

	"github.com/john-neg/full-text-search/internal/document"
)

// Errors returned by store operations.
var (
	ErrNotFound      = errors.New("document not found")
	ErrDuplicateSlug = errors.New("article slug already exists")
)

// Stage identifies which status column a claim operates on.
type Stage int

// Pipeline stages in processing order.
const (
	StageParse Stage = iota
	StageProcess
	StageLemmatize
)

// Filter selects documents by slug and/or status fields. Zero values
// mean "any".
type Filter struct {
	Slug          string
	ParseStatus   document.Status
	ProcessStatus document.Status
	LemmaStatus   document.Status
}

// FullyProcessed matches documents whose three stages all completed:
// the corpus the vector index is built from.
func FullyProcessed() Filter {
	return Filter{
		ParseStatus:   document.StatusCompleted,
		ProcessStatus: document.StatusCompleted,
		LemmaStatus:   document.StatusCompleted,
	}
}

// Fields is a partial update, keyed by column name. Slice and map
// values are JSON-encoded by the store. Callers construct valid
// updates; the store applies them without further business logic.
type Fields map[string]any

// DocumentStore is the CRUD surface over the article collection. The
// Gateway wraps an implementation with the retry policy; everything
// above the store depends on this interface, not on SQLite.
type DocumentStore interface {
	List(ctx context.Context, f Filter) ([]*document.ArticleDocument, error)
	Get(ctx context.Context, f Filter) (*document.ArticleDocument, error)
	GetByID(ctx context.Context, id string) (*document.ArticleDocument, error)
	Create(ctx context.Context, doc *document.ArticleDocument) (string, error)
	Update(ctx context.Context, id string, fields Fields) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context, f Filter) (int, error)
	ClaimNext(ctx context.Context, stage Stage) (*document.ArticleDocument, error)
}
