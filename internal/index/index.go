package index

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Errors returned by vector index operations.
var (
	ErrIndexNotFound      = errors.New("vector index not found")
	ErrCorruptIndex       = errors.New("vector index is corrupt")
	ErrUnsupportedVersion = errors.New("unsupported index version")
)

// CurrentIndexVersion is the bundle format version for compatibility
// checking. Increment on breaking changes to the persisted layout.
const CurrentIndexVersion = 1

// Index holds one TF-IDF vector per indexed document. Rows and DocIDs
// are parallel: row i belongs to DocIDs[i], and search results surface
// document ids, never row numbers.
type Index struct {
	Version    int
	Vectorizer *Vectorizer
	Rows       []Vector
	DocIDs     []string
}

// New creates an empty index over an already fitted vectorizer.
func New(v *Vectorizer) *Index {
	return &Index{Version: CurrentIndexVersion, Vectorizer: v}
}

// Add vectorizes a document's lemma text and appends its row. A text
// with no vocabulary overlap still gets a row, so the row-to-document
// mapping stays complete; such rows score zero for every query.
func (idx *Index) Add(docID, lemmaText string) {
	idx.Rows = append(idx.Rows, idx.Vectorizer.Transform(lemmaText))
	idx.DocIDs = append(idx.DocIDs, docID)
}

// Len reports how many documents the index holds.
func (idx *Index) Len() int {
	return len(idx.Rows)
}

// Result is one search hit: a document id and its cosine similarity to
// the query, in [0, 1] for TF-IDF vectors.
type Result struct {
	DocID string
	Score float64
}

// Search ranks all indexed documents against the query text by cosine
// similarity and returns the top k (k <= 0 means all). Rows are
// l2-normalized at build time, so cosine reduces to a dot product.
// Equal scores keep row order, which is document creation order.
func (idx *Index) Search(query string, k int) []Result {
	q := idx.Vectorizer.Transform(query)

	results := make([]Result, len(idx.Rows))
	for i, row := range idx.Rows {
		results[i] = Result{DocID: idx.DocIDs[i], Score: Dot(q, row)}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results
}

// Save persists the index to path as a single gob bundle, written to a
// temp file and renamed so a crash never leaves a torn index behind.
func (idx *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(idx); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encoding index: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing index file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// LoadIndex reads an index bundle from path, rejecting unknown format
// versions and internally inconsistent bundles.
func LoadIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("opening index file: %w", err)
	}
	defer f.Close()

	var idx Index
	if err := gob.NewDecoder(f).Decode(&idx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, err)
	}

	if idx.Version != CurrentIndexVersion {
		return nil, fmt.Errorf("%w: got %d, want %d (rebuild with 'fts index build')",
			ErrUnsupportedVersion, idx.Version, CurrentIndexVersion)
	}
	if len(idx.Rows) != len(idx.DocIDs) {
		return nil, fmt.Errorf("%w: %d rows for %d document ids",
			ErrCorruptIndex, len(idx.Rows), len(idx.DocIDs))
	}
	if idx.Vectorizer == nil || len(idx.Vectorizer.IDF) != len(idx.Vectorizer.Vocabulary) {
		return nil, fmt.Errorf("%w: vectorizer state inconsistent", ErrCorruptIndex)
	}
	return &idx, nil
}

// IndexSize returns the size of the index file in bytes.
func IndexSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrIndexNotFound
		}
		return 0, err
	}
	return info.Size(), nil
}
