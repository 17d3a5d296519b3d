package dedup

import (
	"fmt"
	"math"

	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
)

// Entry is one vocabulary word with its embedding vector.
type Entry struct {
	Word   string    `json:"word"`
	Vector []float64 `json:"vector"`
}

// FromParallel zips parallel word and vector slices into entries.
func FromParallel(words []string, vectors [][]float64) ([]Entry, error) {
	if len(words) != len(vectors) {
		return nil, fmt.Errorf("%w: %d words but %d vectors", internalerr.ErrMalformedInput, len(words), len(vectors))
	}
	entries := make([]Entry, len(words))
	for i := range words {
		entries[i] = Entry{Word: words[i], Vector: vectors[i]}
	}
	return entries, nil
}

// Split returns the words and vectors of entries as parallel slices.
func Split(entries []Entry) ([]string, [][]float64) {
	words := make([]string, len(entries))
	vectors := make([][]float64, len(entries))
	for i, e := range entries {
		words[i] = e.Word
		vectors[i] = e.Vector
	}
	return words, vectors
}

// Validate checks the contract the pass relies on: non-empty unique words,
// finite vector components and a single vector dimensionality, established by
// the first entry.
func Validate(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	dim := len(entries[0].Vector)
	seen := make(map[string]int, len(entries))
	for i, e := range entries {
		if e.Word == "" {
			return fmt.Errorf("%w: entry %d has an empty word", internalerr.ErrMalformedInput, i)
		}
		if prev, ok := seen[e.Word]; ok {
			return fmt.Errorf("%w: entry %d (%q) duplicates entry %d", internalerr.ErrMalformedInput, i, e.Word, prev)
		}
		seen[e.Word] = i
		if len(e.Vector) != dim {
			return fmt.Errorf("%w: entry %d (%q): dimension %d, want %d", internalerr.ErrMalformedInput, i, e.Word, len(e.Vector), dim)
		}
		for k, x := range e.Vector {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return fmt.Errorf("%w: entry %d (%q): component %d is %v", internalerr.ErrMalformedInput, i, e.Word, k, x)
			}
		}
	}
	return nil
}
