package lexicon

import (
	"sort"
	"strings"
)

// Lexicon holds a dictionary word set and canonical -> variant groups.
//
// The word set answers "is this a real word" for validity filtering. The
// groups record which surface forms were folded into which canonical word,
// either curated by hand or produced by a deduplication or variant pass.
// Both sides are case-insensitive.
type Lexicon struct {
	words map[string]struct{}

	// canonical -> all variants (including canonical itself)
	// Example: "run" -> ["run", "runs", "running"]
	synonyms map[string][]string

	// variant -> canonical
	reverseIndex map[string]string
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		words:        make(map[string]struct{}),
		synonyms:     make(map[string][]string),
		reverseIndex: make(map[string]string),
	}
}

// FromWords creates a lexicon whose word set is words.
func FromWords(words []string) *Lexicon {
	l := New()
	for _, w := range words {
		l.Add(w)
	}
	return l
}

// Add inserts a word into the word set. Blank words are ignored.
func (l *Lexicon) Add(word string) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return
	}
	l.words[word] = struct{}{}
}

// Contains reports whether word is in the word set.
func (l *Lexicon) Contains(word string) bool {
	_, ok := l.words[strings.ToLower(word)]
	return ok
}

// Len returns the size of the word set.
func (l *Lexicon) Len() int { return len(l.words) }

// Words returns the word set in sorted order.
func (l *Lexicon) Words() []string {
	out := make([]string, 0, len(l.words))
	for w := range l.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// AddSynonymGroup adds a group with a canonical form and its variants.
// The canonical form is always the first entry of the group.
// If the group already exists, old reverse index entries are cleaned up first.
func (l *Lexicon) AddSynonymGroup(canonical string, variants []string) {
	canonical = strings.ToLower(canonical)

	if old, exists := l.synonyms[canonical]; exists {
		for _, v := range old {
			delete(l.reverseIndex, v)
		}
	}

	normalized := make([]string, 0, len(variants)+1)
	seen := make(map[string]bool)
	normalized = append(normalized, canonical)
	seen[canonical] = true
	for _, v := range variants {
		v = strings.ToLower(v)
		if !seen[v] {
			normalized = append(normalized, v)
			seen[v] = true
		}
	}

	l.synonyms[canonical] = normalized
	for _, v := range normalized {
		l.reverseIndex[v] = canonical
	}
}

// Normalize returns the canonical form of a word.
// If the word is not in any group, returns the word itself.
//
// Examples:
//   - Normalize("running") -> "run"
//   - Normalize("unknown") -> "unknown"
func (l *Lexicon) Normalize(word string) string {
	word = strings.ToLower(word)
	if canonical, ok := l.reverseIndex[word]; ok {
		return canonical
	}
	return word
}

// Variants returns every member of the word's group, canonical first.
// If the word is not in any group, returns a slice containing only the word.
func (l *Lexicon) Variants(word string) []string {
	word = strings.ToLower(word)
	if canonical, ok := l.reverseIndex[word]; ok {
		if variants, ok := l.synonyms[canonical]; ok {
			return variants
		}
	}
	return []string{word}
}

// Canonicals returns the canonical words of all groups in sorted order.
func (l *Lexicon) Canonicals() []string {
	out := make([]string, 0, len(l.synonyms))
	for c := range l.synonyms {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() Stats {
	total := 0
	for _, variants := range l.synonyms {
		total += len(variants)
	}
	return Stats{
		Words:         len(l.words),
		SynonymGroups: len(l.synonyms),
		TotalVariants: total,
	}
}

// Stats holds statistics about lexicon contents.
type Stats struct {
	Words         int // Size of the dictionary word set
	SynonymGroups int // Number of canonical forms
	TotalVariants int // Total number of group members, canonicals included
}
