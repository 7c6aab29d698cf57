package language

import (
	"context"
	"sync"
)

// Token attributes a lemmatization result back to the (document, field)
// pair that produced it. The external lemmatizer may complete items in
// any order, so the token travels with the text instead of relying on
// submission order.
type Token struct {
	DocID string
	Field string
}

// Item is one text queued for batched lemmatization.
type Item struct {
	Text  string
	Token Token
}

// Result is one completed lemmatization, tagged with its Token.
type Result struct {
	Token  Token
	Lemmas []string
	Err    error
}

// Pipe dispatches texts to a Lemmatizer from a bounded worker pool.
type Pipe struct {
	lemmatizer Lemmatizer
	workers    int
}

// NewPipe creates a pipe with the given concurrency. Fewer than one
// worker falls back to sequential dispatch.
func NewPipe(lemmatizer Lemmatizer, workers int) *Pipe {
	if workers < 1 {
		workers = 1
	}
	return &Pipe{lemmatizer: lemmatizer, workers: workers}
}

// Run lemmatizes every item and streams results as they complete.
// Completion order is not submission order; consumers must use the
// Token for attribution. The channel closes after the last result.
// Cancellation stops dispatching new items; in-flight items still
// report.
func (p *Pipe) Run(ctx context.Context, items []Item) <-chan Result {
	in := make(chan Item)
	out := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range in {
				lemmas, err := p.lemmatizer.Lemmatize(ctx, item.Text)
				out <- Result{Token: item.Token, Lemmas: lemmas, Err: err}
			}
		}()
	}

	go func() {
		defer close(in)
		for _, item := range items {
			select {
			case <-ctx.Done():
				return
			case in <- item:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
