package stem

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kljensen/snowball/english"

	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
)

// Stemmer reduces a word to its stem.
type Stemmer interface {
	Stem(word string) string
}

// Func adapts a plain function to the Stemmer interface.
type Func func(string) string

// Stem implements Stemmer.
func (f Func) Stem(word string) string { return f(word) }

// Porter stems English words with the Snowball (Porter2) algorithm.
// Stop words are stemmed too, so "being" and "be" share a stem.
type Porter struct{}

// Stem implements Stemmer.
func (Porter) Stem(word string) string {
	return english.Stem(word, true)
}

// DefaultSuffixes is the suffix list used by Suffix when none is given.
var DefaultSuffixes = []string{"ing", "ed", "er", "est", "ly", "s", "es", "ment", "ness", "tion", "sion"}

// Suffix strips the longest matching suffix as long as at least MinStem
// characters remain. It needs no language rules and is meant as a fallback.
type Suffix struct {
	suffixes []string
	minStem  int
}

// NewSuffix creates a suffix stemmer. A nil list uses DefaultSuffixes and a
// non-positive minStem uses 3.
func NewSuffix(suffixes []string, minStem int) *Suffix {
	if suffixes == nil {
		suffixes = DefaultSuffixes
	}
	if minStem <= 0 {
		minStem = 3
	}
	sorted := append([]string(nil), suffixes...)
	// longest first; ties keep list order
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	return &Suffix{suffixes: sorted, minStem: minStem}
}

// Stem implements Stemmer.
//
// Examples:
//   - Stem("running") -> "runn"
//   - Stem("cats")    -> "cat"
//   - Stem("sing")    -> "sing" (stem would be too short)
func (s *Suffix) Stem(word string) string {
	word = strings.ToLower(word)
	for _, suf := range s.suffixes {
		if strings.HasSuffix(word, suf) && len(word)-len(suf) >= s.minStem {
			return word[:len(word)-len(suf)]
		}
	}
	return word
}

// ByName returns the stemmer registered under name: "porter" (or "") and
// "suffix".
func ByName(name string) (Stemmer, error) {
	switch strings.ToLower(name) {
	case "", "porter", "snowball":
		return Porter{}, nil
	case "suffix", "simple":
		return NewSuffix(nil, 0), nil
	}
	return nil, fmt.Errorf("%w: unknown stemmer %q", internalerr.ErrInvalidConfig, name)
}
