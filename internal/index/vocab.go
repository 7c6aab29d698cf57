package index

import (
	"sort"
	"strings"
)

// CountLemmas tallies word occurrences across a lemma-text corpus.
func CountLemmas(texts []string) map[string]int {
	counts := map[string]int{}
	for _, text := range texts {
		for _, word := range strings.Fields(text) {
			counts[word]++
		}
	}
	return counts
}

// TopWords returns the n most frequent words, ties broken
// alphabetically so the vocabulary is deterministic across builds.
// n <= 0 means all words.
func TopWords(counts map[string]int, n int) []string {
	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if n > 0 && len(words) > n {
		words = words[:n]
	}
	return words
}

// MergeVocabulary prepends an externally curated seed word list to a
// built vocabulary, dropping duplicates and preserving order. Seed
// words rank first so trimming to a size keeps them.
func MergeVocabulary(seed, words []string) []string {
	out := make([]string, 0, len(seed)+len(words))
	seen := map[string]bool{}
	for _, list := range [][]string{seed, words} {
		for _, w := range list {
			if w == "" || seen[w] {
				continue
			}
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}
