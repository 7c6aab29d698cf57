package embedding

import (
	"errors"
	"strings"
)

// Expansion defaults. A neighbor joins the query only above the score
// threshold; below it, embedding neighbors drift off-topic faster than
// they help recall.
const (
	DefaultNeighbors = 2
	DefaultThreshold = 0.4
)

// Expander augments a tokenized query with near-synonym words from an
// embedding model. Only tokens present in the index vocabulary are
// expanded: a neighbor of a word the index cannot match adds noise,
// not recall.
type Expander struct {
	model      Model
	vocabulary map[string]int
	neighbors  int
	threshold  float64
}

// ExpanderOption adjusts an Expander.
type ExpanderOption func(*Expander)

// WithNeighbors sets how many neighbors are fetched per token.
// Non-positive values keep the default.
func WithNeighbors(n int) ExpanderOption {
	return func(e *Expander) {
		if n > 0 {
			e.neighbors = n
		}
	}
}

// WithThreshold sets the minimum neighbor score. Non-positive values
// keep the default.
func WithThreshold(t float64) ExpanderOption {
	return func(e *Expander) {
		if t > 0 {
			e.threshold = t
		}
	}
}

// NewExpander creates an expander over the model, restricted to query
// tokens found in vocabulary (the index vocabulary, word to column).
// A nil vocabulary leaves every token eligible.
func NewExpander(model Model, vocabulary map[string]int, opts ...ExpanderOption) *Expander {
	e := &Expander{
		model:      model,
		vocabulary: vocabulary,
		neighbors:  DefaultNeighbors,
		threshold:  DefaultThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand returns the query tokens followed by accepted neighbors, in
// per-token lookup order. A neighbor is accepted when its score clears
// the threshold and the word is not already part of the query. Tokens
// outside the index vocabulary, or that the model does not know,
// expand to nothing; any other model failure aborts the expansion.
func (e *Expander) Expand(tokens []string) ([]string, error) {
	out := make([]string, len(tokens))
	copy(out, tokens)

	inQuery := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		inQuery[strings.ToLower(tok)] = true
	}

	for _, tok := range tokens {
		word := strings.ToLower(tok)
		if e.vocabulary != nil {
			if _, ok := e.vocabulary[word]; !ok {
				continue
			}
		}
		neighbors, err := e.model.Nearest(word, e.neighbors)
		if errors.Is(err, ErrNotInVocabulary) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, n := range neighbors {
			if n.Score <= e.threshold || inQuery[n.Word] {
				continue
			}
			inQuery[n.Word] = true
			out = append(out, n.Word)
		}
	}
	return out, nil
}
