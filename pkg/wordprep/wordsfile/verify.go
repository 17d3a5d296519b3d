package wordsfile

import (
	"fmt"
	"math"

	"github.com/viterin/vek"

	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
)

const sampleSize = 10

// Summary describes a verified words file.
type Summary struct {
	Words      int      `json:"words"`
	Vectors    int      `json:"vectors"`
	Dimensions int      `json:"dimensions"`
	Model      string   `json:"model,omitempty"`
	Sample     []string `json:"sample"`

	// KingQueen is the dot product of the "king" and "queen" vectors, which
	// equals their cosine similarity for unit vectors. Nil when either word
	// is absent.
	KingQueen *float64 `json:"king_queen,omitempty"`
}

// Verify reads path and checks that it can be consumed: matching counts, a
// single vector dimensionality, finite components and no duplicate words.
func Verify(path string) (Summary, error) {
	f, err := Read(path)
	if err != nil {
		return Summary{}, err
	}
	return Check(f)
}

// Check runs the Verify checks on an in-memory file.
func Check(f File) (Summary, error) {
	s := Summary{Words: len(f.Words), Vectors: len(f.Vectors), Model: f.Model}
	if s.Words != s.Vectors {
		return s, fmt.Errorf("%w: %d words but %d vectors", internalerr.ErrMalformedInput, s.Words, s.Vectors)
	}
	if s.Words == 0 {
		return s, nil
	}

	s.Dimensions = len(f.Vectors[0])
	if f.Dimensions != 0 && f.Dimensions != s.Dimensions {
		return s, fmt.Errorf("%w: header says %d dimensions, vectors have %d", internalerr.ErrMalformedInput, f.Dimensions, s.Dimensions)
	}

	index := make(map[string]int, len(f.Words))
	for i, w := range f.Words {
		if _, dup := index[w]; dup {
			return s, fmt.Errorf("%w: duplicate word %q", internalerr.ErrMalformedInput, w)
		}
		index[w] = i
		v := f.Vectors[i]
		if len(v) != s.Dimensions {
			return s, fmt.Errorf("%w: word %d (%q): dimension %d, want %d", internalerr.ErrMalformedInput, i, w, len(v), s.Dimensions)
		}
		for _, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return s, fmt.Errorf("%w: word %d (%q) has a non-finite component", internalerr.ErrMalformedInput, i, w)
			}
		}
	}

	s.Sample = f.Words[:min(sampleSize, len(f.Words))]
	ki, okK := index["king"]
	qi, okQ := index["queen"]
	if okK && okQ {
		d := vek.Dot(f.Vectors[ki], f.Vectors[qi])
		s.KingQueen = &d
	}
	return s, nil
}
