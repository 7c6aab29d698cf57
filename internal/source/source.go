// Package source defines the external article source the lifecycle
// controller feeds from, and its web (scraping) implementation.
package source

import (
	"context"
	"errors"
)

// Outcome signals a fetch can produce besides success. These replace
// in-band process exits: the controller inspects them with errors.Is
// and decides what to record and whether to halt the run.
var (
	// ErrBlocked means the source presented an anti-automation
	// challenge. Fatal for the whole stage run; requires an external
	// cool-down and restart.
	ErrBlocked = errors.New("source blocked automated access")

	// ErrEmptyPage means the resource was removed upstream. Terminal,
	// not an error condition for the record.
	ErrEmptyPage = errors.New("source page is empty")

	// ErrFetchTimeout means a transient fetch timeout; the record goes
	// back to waiting and is retried later.
	ErrFetchTimeout = errors.New("fetch timed out")

	// ErrMissingContent means the page loaded but expected fields were
	// absent; requires operator triage.
	ErrMissingContent = errors.New("expected content missing from page")
)

// Fields carries everything a successful article fetch yields.
type Fields struct {
	Authors        []string
	Title          string
	Year           string
	Magazine       string
	MagazineIssue  string
	MagazineVolume string
	Keywords       []string
	Abstract       string
	Scopus         string
	VAK            string
	Reference      string
	Text           string
}

// Category enumerates one source category: a page count and the
// article slugs on each page.
type Category interface {
	Pages(ctx context.Context) (int, error)
	Slugs(ctx context.Context, page int) ([]string, error)
}

// ArticleSource yields raw article field values, or fails with one of
// the Outcome sentinels.
type ArticleSource interface {
	Fetch(ctx context.Context, slug string) (*Fields, error)
	Category(name string) Category
}
