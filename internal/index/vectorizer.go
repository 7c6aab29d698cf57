// Package index implements the TF-IDF vector index the search engine
// queries: a fixed-vocabulary vectorizer, a dense row set over sparse
// vectors, cosine search, and an atomically persisted gob bundle.
package index

import (
	"math"
	"sort"
	"strings"
)

// Vector is a sparse l2-normalized document vector. Indices are
// vocabulary columns in ascending order; Values are the corresponding
// weights.
type Vector struct {
	Indices []int
	Values  []float64
}

// Norm returns the Euclidean length of the vector. Freshly transformed
// vectors are normalized, so this is 1 unless the vector is empty.
func (v Vector) Norm() float64 {
	var sum float64
	for _, val := range v.Values {
		sum += val * val
	}
	return math.Sqrt(sum)
}

// Dot computes the inner product of two sparse vectors with a merge
// walk over their sorted index lists.
func Dot(a, b Vector) float64 {
	var dot float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] < b.Indices[j]:
			i++
		case a.Indices[i] > b.Indices[j]:
			j++
		default:
			dot += a.Values[i] * b.Values[j]
			i++
			j++
		}
	}
	return dot
}

// Vectorizer turns lemma texts into TF-IDF vectors over a fixed
// vocabulary. Words outside the vocabulary are ignored, so the vector
// space never changes between fitting and querying.
type Vectorizer struct {
	Vocabulary map[string]int
	IDF        []float64
}

// NewVectorizer creates a vectorizer over the given vocabulary, one
// column per word in list order. Until Fit runs, every idf weight is 1.
func NewVectorizer(words []string) *Vectorizer {
	vocab := make(map[string]int, len(words))
	idf := make([]float64, 0, len(words))
	for _, w := range words {
		if _, ok := vocab[w]; ok {
			continue
		}
		vocab[w] = len(idf)
		idf = append(idf, 1)
	}
	return &Vectorizer{Vocabulary: vocab, IDF: idf}
}

// Fit computes smoothed inverse document frequencies from a corpus:
// idf = ln((1+n)/(1+df)) + 1. Smoothing keeps vocabulary words absent
// from the corpus finite instead of dividing by zero.
func (v *Vectorizer) Fit(corpus []string) {
	df := make([]int, len(v.IDF))
	for _, text := range corpus {
		seen := map[int]bool{}
		for _, word := range strings.Fields(text) {
			if col, ok := v.Vocabulary[word]; ok && !seen[col] {
				seen[col] = true
				df[col]++
			}
		}
	}

	n := float64(len(corpus))
	for col := range v.IDF {
		v.IDF[col] = math.Log((1+n)/(1+float64(df[col]))) + 1
	}
}

// Transform vectorizes one lemma text: term counts over the vocabulary,
// weighted by idf, l2-normalized. A text sharing no words with the
// vocabulary yields an empty vector.
func (v *Vectorizer) Transform(text string) Vector {
	counts := map[int]int{}
	for _, word := range strings.Fields(text) {
		if col, ok := v.Vocabulary[word]; ok {
			counts[col]++
		}
	}
	if len(counts) == 0 {
		return Vector{}
	}

	cols := make([]int, 0, len(counts))
	for col := range counts {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	vec := Vector{
		Indices: cols,
		Values:  make([]float64, len(cols)),
	}
	var norm float64
	for i, col := range cols {
		w := float64(counts[col]) * v.IDF[col]
		vec.Values[i] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for i := range vec.Values {
		vec.Values[i] /= norm
	}
	return vec
}
