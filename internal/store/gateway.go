package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/john-neg/full-text-search/internal/document"
)

// RetryPolicy bounds how often the gateway replays an operation after a
// transient failure.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// DefaultRetryPolicy is five attempts with a one-second pause between
// them.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 5, Backoff: time.Second}

// Gateway wraps a DocumentStore so that transient failures are retried
// under the policy before being surfaced. Every failed attempt appends
// one timestamped line to the retry log. Operations are otherwise
// synchronous pass-throughs with no business logic.
type Gateway struct {
	store  DocumentStore
	policy RetryPolicy
	log    *RetryLog
	sleep  func(context.Context, time.Duration) error
}

// NewGateway wraps the store with the given retry policy and log.
func NewGateway(s DocumentStore, policy RetryPolicy, log *RetryLog) *Gateway {
	if policy.MaxAttempts < 1 {
		policy = DefaultRetryPolicy
	}
	if log == nil {
		log = NewRetryLog("")
	}
	return &Gateway{store: s, policy: policy, log: log, sleep: sleepContext}
}

// sleepContext waits out the backoff but wakes up on cancellation.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Log exposes the gateway's durable log so pipeline stages can record
// their own events (blocking detections) alongside retry lines.
func (g *Gateway) Log() *RetryLog {
	return g.log
}

// permanent reports whether err must not be retried: absent documents,
// slug collisions and context cancellation are facts, not connectivity
// failures. Everything else coming out of the store is treated as
// transient.
func permanent(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrDuplicateSlug) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// retry runs fn under the gateway policy.
func (g *Gateway) retry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= g.policy.MaxAttempts; attempt++ {
		err = fn()
		if err == nil || permanent(err) {
			return err
		}

		g.log.Append("store %s attempt %d/%d failed: %v",
			op, attempt, g.policy.MaxAttempts, err)

		if attempt == g.policy.MaxAttempts {
			break
		}
		if err := g.sleep(ctx, g.policy.Backoff); err != nil {
			return err
		}
	}
	return fmt.Errorf("store %s failed after %d attempts: %w", op, g.policy.MaxAttempts, err)
}

// List implements DocumentStore.
func (g *Gateway) List(ctx context.Context, f Filter) ([]*document.ArticleDocument, error) {
	var docs []*document.ArticleDocument
	err := g.retry(ctx, "list", func() error {
		var err error
		docs, err = g.store.List(ctx, f)
		return err
	})
	return docs, err
}

// Get implements DocumentStore.
func (g *Gateway) Get(ctx context.Context, f Filter) (*document.ArticleDocument, error) {
	var doc *document.ArticleDocument
	err := g.retry(ctx, "get", func() error {
		var err error
		doc, err = g.store.Get(ctx, f)
		return err
	})
	return doc, err
}

// GetByID implements DocumentStore.
func (g *Gateway) GetByID(ctx context.Context, id string) (*document.ArticleDocument, error) {
	var doc *document.ArticleDocument
	err := g.retry(ctx, "get_by_id", func() error {
		var err error
		doc, err = g.store.GetByID(ctx, id)
		return err
	})
	return doc, err
}

// Create implements DocumentStore.
func (g *Gateway) Create(ctx context.Context, doc *document.ArticleDocument) (string, error) {
	var id string
	err := g.retry(ctx, "create", func() error {
		var err error
		id, err = g.store.Create(ctx, doc)
		return err
	})
	return id, err
}

// Update implements DocumentStore.
func (g *Gateway) Update(ctx context.Context, id string, fields Fields) error {
	return g.retry(ctx, "update", func() error {
		return g.store.Update(ctx, id, fields)
	})
}

// Delete implements DocumentStore.
func (g *Gateway) Delete(ctx context.Context, id string) error {
	return g.retry(ctx, "delete", func() error {
		return g.store.Delete(ctx, id)
	})
}

// Count implements DocumentStore.
func (g *Gateway) Count(ctx context.Context, f Filter) (int, error) {
	var n int
	err := g.retry(ctx, "count", func() error {
		var err error
		n, err = g.store.Count(ctx, f)
		return err
	})
	return n, err
}

// ClaimNext implements DocumentStore.
func (g *Gateway) ClaimNext(ctx context.Context, stage Stage) (*document.ArticleDocument, error) {
	var doc *document.ArticleDocument
	err := g.retry(ctx, "claim_next", func() error {
		var err error
		doc, err = g.store.ClaimNext(ctx, stage)
		return err
	})
	return doc, err
}

var _ DocumentStore = (*Gateway)(nil)
