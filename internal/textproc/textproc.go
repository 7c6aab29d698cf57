// Package textproc turns noisy OCR'd article text into lemmatizable,
// search-ready text. Every function is pure; persistence decisions stay
// with the lifecycle controller.
package textproc

import (
	"regexp"
	"strings"
)

// confusables maps Latin look-alikes (and two OCR digit confusions) to
// their Cyrillic equivalents. Applied rune-by-rune: OCR of Cyrillic
// scans regularly emits these Latin glyphs inside Russian words.
var confusables = map[rune]rune{
	'c': 'с',
	'a': 'а',
	'e': 'е',
	'p': 'р',
	'y': 'у',
	'o': 'о',
	'ё': 'е',
	'm': 'м',
	'k': 'к',
	'b': 'в',
	'h': 'н',
	'3': 'з',
	'0': 'о',
	'x': 'х',
}

// FixLetters replaces confusable Latin characters with their Cyrillic
// equivalents. Idempotent: the replacement set contains no Latin
// characters, so a second pass is a no-op.
func FixLetters(text string) string {
	return strings.Map(func(r rune) rune {
		if repl, ok := confusables[r]; ok {
			return repl
		}
		return r
	}, text)
}

// filterSymbols keeps Cyrillic, limited Latin, whitespace and hyphens.
var filterSymbols = regexp.MustCompile(`[^а-яьъёa-zА-ЯA-Z\s\-]`)

// FilterLetters lower-cases text and strips everything outside the
// indexable symbol set. Used on titles and abstracts before
// lemmatization and on raw search queries.
func FilterLetters(text string) string {
	return filterSymbols.ReplaceAllString(strings.ToLower(text), "")
}

// FilterKeywords applies FilterLetters to each keyword, dropping
// empties.
func FilterKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		out = append(out, FilterLetters(kw))
	}
	return out
}

// Cleanup rules for article bodies. Order matters: later rules assume
// earlier ones already ran.
var (
	// Any run of characters outside Cyrillic, space, comma, period,
	// colon, hyphen.
	reFilterText = regexp.MustCompile(`[^а-яА-Я ,.:\-]+`)

	// A single character between spaces that is not one of the short
	// connective Cyrillic words (и в с у к о, а я) or a hyphen.
	reSingleLetters = regexp.MustCompile(`\s[^аАяЯвВсСуУиИкКоО\-]\s`)

	// Comma or period glued to the following word. RE2's \b only knows
	// ASCII word characters, so the boundary is spelled out.
	reCommaFix = regexp.MustCompile(`,([а-яА-Я])`)
	rePointFix = regexp.MustCompile(`\.([а-яА-Я])`)

	// Three or more consecutive non-word characters. Same ASCII caveat:
	// \W alone would swallow Cyrillic letters.
	rePunctuationRemove = regexp.MustCompile(`[^\wа-яА-ЯёЁ]{3,}`)

	// Runs of whitespace.
	reSpaces = regexp.MustCompile(`\s+`)
)

// cleanupStep is one ordered rewrite of the body cleanup pipeline.
type cleanupStep struct {
	re   *regexp.Regexp
	repl string
}

var cleanupPipeline = []cleanupStep{
	{reFilterText, " "},
	{reSingleLetters, " "},
	{reCommaFix, ", $1"},
	{rePointFix, ". $1"},
	{rePunctuationRemove, " "},
	{reSpaces, " "},
}

// Cleanup applies the ordered regex rewrite pipeline to an article
// body.
func Cleanup(text string) string {
	for _, step := range cleanupPipeline {
		text = step.re.ReplaceAllString(text, step.repl)
	}
	return text
}
