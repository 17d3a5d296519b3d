// Package wordsfile reads and writes the compact word list consumed by the
// game client, and applies the final vector transforms.
package wordsfile

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/viterin/vek"

	"github.com/cognicore/wordprep/pkg/wordprep/dedup"
	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
)

// File is the on-disk layout: parallel words and vectors arrays.
type File struct {
	Words      []string    `json:"words"`
	Vectors    [][]float64 `json:"vectors"`
	Model      string      `json:"model,omitempty"`
	Dimensions int         `json:"dimensions,omitempty"`
}

// FromEntries builds a File from entries in order.
func FromEntries(entries []dedup.Entry) File {
	words, vectors := dedup.Split(entries)
	return File{Words: words, Vectors: vectors}
}

// Entries zips the file back into entries.
func (f File) Entries() ([]dedup.Entry, error) {
	return dedup.FromParallel(f.Words, f.Vectors)
}

// TopN returns the first n entries. Input order is a frequency proxy, so this
// keeps the most common words.
func TopN(entries []dedup.Entry, n int) []dedup.Entry {
	if n < 0 || n >= len(entries) {
		return entries
	}
	return entries[:n]
}

// Normalize scales every vector to unit length. Zero vectors are left as
// they are. Inputs are not modified.
func Normalize(entries []dedup.Entry) []dedup.Entry {
	out := make([]dedup.Entry, len(entries))
	for i, e := range entries {
		out[i] = e
		if m := vek.Norm(e.Vector); m > 0 {
			out[i].Vector = vek.DivNumber(e.Vector, m)
		}
	}
	return out
}

// Round rounds every component to the given number of decimal places.
// Inputs are not modified.
func Round(entries []dedup.Entry, decimals int) []dedup.Entry {
	scale := math.Pow(10, float64(decimals))
	out := make([]dedup.Entry, len(entries))
	for i, e := range entries {
		v := vek.MulNumber(e.Vector, scale)
		vek.Round_Inplace(v)
		vek.DivNumber_Inplace(v, scale)
		out[i] = dedup.Entry{Word: e.Word, Vector: v}
	}
	return out
}

// Write stores f as compact JSON, creating parent directories.
func Write(path string, f File) error {
	if len(f.Words) != len(f.Vectors) {
		return fmt.Errorf("%w: %d words but %d vectors", internalerr.ErrMalformedInput, len(f.Words), len(f.Vectors))
	}
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Read loads a words file.
func Read(path string) (File, error) {
	var f File
	data, err := os.ReadFile(path)
	if err != nil {
		return f, err
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("%w: %s: %v", internalerr.ErrMalformedInput, path, err)
	}
	return f, nil
}
