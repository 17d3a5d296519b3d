package filter

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/cognicore/wordprep/pkg/wordprep/dedup"
)

// shape accepts lowercase alphabetic words with at most one inner hyphen.
var shape = regexp.MustCompile(`^[a-z]+(-[a-z]+)?$`)

// Lexicon answers dictionary membership.
type Lexicon interface {
	Contains(word string) bool
}

// Reason explains why a word was accepted or rejected.
type Reason int

const (
	OK Reason = iota
	Shape
	TooShort
	TooLong
	Excluded
	NotInDictionary
)

func (r Reason) String() string {
	switch r {
	case OK:
		return "ok"
	case Shape:
		return "shape"
	case TooShort:
		return "too_short"
	case TooLong:
		return "too_long"
	case Excluded:
		return "excluded"
	case NotInDictionary:
		return "not_in_dictionary"
	}
	return "unknown"
}

// Filter decides which words are allowed into the vocabulary.
type Filter struct {
	MinLen  int
	MaxLen  int // 0 disables the upper bound
	Exclude map[string]struct{}

	// Dictionary, when set, must contain every accepted word.
	Dictionary Lexicon
}

// New builds a filter with the given length bounds and exclusion list.
func New(minLen, maxLen int, exclude []string) *Filter {
	f := &Filter{MinLen: minLen, MaxLen: maxLen, Exclude: make(map[string]struct{}, len(exclude))}
	for _, w := range exclude {
		f.Exclude[Normalize(w)] = struct{}{}
	}
	return f
}

// Normalize applies NFKC normalization and lowercases the word.
func Normalize(word string) string {
	return strings.ToLower(norm.NFKC.String(strings.TrimSpace(word)))
}

// Check classifies word. Checks run in order: shape, length, exclusion list,
// dictionary.
func (f *Filter) Check(word string) Reason {
	if !shape.MatchString(word) {
		return Shape
	}
	n := utf8.RuneCountInString(word)
	if n < f.MinLen {
		return TooShort
	}
	if f.MaxLen > 0 && n > f.MaxLen {
		return TooLong
	}
	if _, ok := f.Exclude[word]; ok {
		return Excluded
	}
	if f.Dictionary != nil && !f.Dictionary.Contains(word) {
		return NotInDictionary
	}
	return OK
}

// Valid reports whether word passes every check.
func (f *Filter) Valid(word string) bool {
	return f.Check(word) == OK
}

// Stats counts accepted and rejected words by reason.
type Stats struct {
	Kept     int
	Rejected map[Reason]int
}

// Apply keeps the entries whose words pass, preserving order.
func (f *Filter) Apply(entries []dedup.Entry) ([]dedup.Entry, Stats) {
	stats := Stats{Rejected: make(map[Reason]int)}
	out := make([]dedup.Entry, 0, len(entries))
	for _, e := range entries {
		if r := f.Check(e.Word); r != OK {
			stats.Rejected[r]++
			continue
		}
		out = append(out, e)
	}
	stats.Kept = len(out)
	return out, stats
}
