// Package language provides the pluggable linguistic capabilities the
// pipeline depends on: language detection, lemmatization, and the
// batched lemmatization pipe with explicit result attribution.
package language

import (
	"context"
	"strings"
	"unicode"

	"github.com/pemistahl/lingua-go"
)

// Detector identifies the language of a text. The empty string means
// no reliable detection, which callers treat as "unknown", not as an
// error.
type Detector interface {
	Detect(text string) string
}

// Lemmatizer reduces a text to an ordered sequence of dictionary-form
// tokens.
type Lemmatizer interface {
	Lemmatize(ctx context.Context, text string) ([]string, error)
}

// LinguaDetector detects languages with the lingua library, reporting
// lowercase English language names ("russian", "english", ...).
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

// NewLinguaDetector builds a detector over all supported languages with
// preloaded models. Construction is expensive; share one instance.
func NewLinguaDetector() *LinguaDetector {
	return &LinguaDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			WithPreloadedLanguageModels().
			Build(),
	}
}

// Detect implements Detector.
func (d *LinguaDetector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.String())
}

// FilterLemmas keeps the tokens worth indexing: lower-cased, not a
// stopword, letters only, containing at least one non-ASCII (target
// alphabet) rune, and longer than two runes.
func FilterLemmas(tokens []string, stopwords map[string]bool) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		word := strings.ToLower(strings.TrimSpace(tok))
		if word == "" || stopwords[word] {
			continue
		}
		if !lettersOnly(word) || isASCII(word) {
			continue
		}
		if len([]rune(word)) <= 2 {
			continue
		}
		out = append(out, word)
	}
	return out
}

func lettersOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
