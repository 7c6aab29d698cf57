// Package translate moves keywords and abstracts into the pipeline's
// target language through a provider fallback chain, memoizing word
// translations in a durable cache.
package translate

import (
	"context"
	"errors"
	"fmt"
)

// ErrExhausted is returned when every provider in a chain failed.
var ErrExhausted = errors.New("all translation providers failed")

// Translator converts text into the target language. target is a
// lowercase English language name ("russian"); providers that want ISO
// codes truncate it themselves.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
	Name() string
}

// Chain tries providers in order and returns the first success. One
// provider failing is recovered locally; only total exhaustion
// surfaces, wrapping every provider's error.
type Chain struct {
	providers []Translator
}

// NewChain builds a fallback chain in the given priority order.
func NewChain(providers ...Translator) *Chain {
	return &Chain{providers: providers}
}

// Translate implements Translator.
func (c *Chain) Translate(ctx context.Context, text, target string) (string, error) {
	if len(c.providers) == 0 {
		return "", ErrExhausted
	}

	var errs []error
	for _, p := range c.providers {
		out, err := p.Translate(ctx, text, target)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	return "", fmt.Errorf("%w: %w", ErrExhausted, errors.Join(errs...))
}

// Name implements Translator.
func (c *Chain) Name() string {
	return "chain"
}
