// Package embedding provides word-vector neighbor lookup and the
// query expander built on it. The model file is a pre-trained word
// embedding table; training is out of scope here, only the load, save
// and nearest-neighbor lifecycle.
package embedding

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
)

// Errors returned by embedding model operations.
var (
	ErrModelNotFound   = errors.New("embedding model not found")
	ErrNotInVocabulary = errors.New("word not in embedding vocabulary")
	ErrEmptyModel      = errors.New("embedding model has no vectors")
)

// Neighbor is one nearest-neighbor hit: a vocabulary word and its
// cosine similarity to the probe word.
type Neighbor struct {
	Word  string
	Score float64
}

// Model finds the words most similar to a given word. A word outside
// the model's vocabulary yields ErrNotInVocabulary.
type Model interface {
	Nearest(word string, k int) ([]Neighbor, error)
}

// VectorModel is an in-memory word embedding table with brute-force
// cosine ranking. Vocabularies here are tens of thousands of words, so
// a linear scan per lookup is fine.
type VectorModel struct {
	Vectors map[string][]float32
}

// NewVectorModel creates a model over the given embedding table.
func NewVectorModel(vectors map[string][]float32) *VectorModel {
	return &VectorModel{Vectors: vectors}
}

// Nearest returns the k words most similar to word by cosine, highest
// first, the probe word itself excluded. Ties break alphabetically so
// lookups are deterministic.
func (m *VectorModel) Nearest(word string, k int) ([]Neighbor, error) {
	probe, ok := m.Vectors[word]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotInVocabulary, word)
	}

	neighbors := make([]Neighbor, 0, len(m.Vectors)-1)
	for w, vec := range m.Vectors {
		if w == word {
			continue
		}
		neighbors = append(neighbors, Neighbor{Word: w, Score: cosine(probe, vec)})
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Score != neighbors[j].Score {
			return neighbors[i].Score > neighbors[j].Score
		}
		return neighbors[i].Word < neighbors[j].Word
	})

	if k > 0 && len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// Save persists the embedding table to path as gob, via temp file and
// rename.
func (m *VectorModel) Save(path string) error {
	if len(m.Vectors) == 0 {
		return ErrEmptyModel
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating model directory: %w", err)
	}

	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(m.Vectors); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encoding model: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing model file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// LoadModel reads an embedding table from path.
func LoadModel(path string) (*VectorModel, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrModelNotFound
		}
		return nil, fmt.Errorf("opening model file: %w", err)
	}
	defer f.Close()

	var vectors map[string][]float32
	if err := gob.NewDecoder(f).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("decoding model: %w", err)
	}
	if len(vectors) == 0 {
		return nil, ErrEmptyModel
	}
	return &VectorModel{Vectors: vectors}, nil
}
