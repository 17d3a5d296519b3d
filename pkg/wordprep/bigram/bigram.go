package bigram

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// Boundary markers padded around every word before bigrams are taken.
const (
	StartMarker = '^'
	EndMarker   = '$'
)

// Of returns the set of padded character bigrams of word.
//
// The word is padded as "^word$" and every 2-rune substring is taken, so
// even a one-letter word yields two bigrams and prefix/suffix edits produce
// different boundary bigrams.
//
// Examples:
//   - Of("cat") -> {"^c", "ca", "at", "t$"}
//   - Of("a")   -> {"^a", "a$"}
func Of(word string) mapset.Set[string] {
	padded := make([]rune, 0, len(word)+2)
	padded = append(padded, StartMarker)
	padded = append(padded, []rune(word)...)
	padded = append(padded, EndMarker)

	set := mapset.NewThreadUnsafeSet[string]()
	for i := 0; i+1 < len(padded); i++ {
		set.Add(string(padded[i : i+2]))
	}
	return set
}

// Overlap counts the bigrams shared by a and b.
func Overlap(a, b mapset.Set[string]) int {
	if a.Cardinality() > b.Cardinality() {
		a, b = b, a
	}
	n := 0
	a.Each(func(bg string) bool {
		if b.Contains(bg) {
			n++
		}
		return false
	})
	return n
}

// Index is an inverted index from bigram to the ids of the words containing it.
// Word ids are input positions. The index is read-only after Build and safe
// for concurrent readers.
type Index struct {
	words    []string
	bigrams  []mapset.Set[string]
	postings map[string][]int
}

// Build indexes words; the id of each word is its position in the slice.
func Build(words []string) *Index {
	idx := &Index{
		words:    words,
		bigrams:  make([]mapset.Set[string], len(words)),
		postings: make(map[string][]int),
	}
	for id, w := range words {
		bgs := Of(w)
		idx.bigrams[id] = bgs
		bgs.Each(func(bg string) bool {
			// ids are visited in ascending order, so postings stay sorted
			idx.postings[bg] = append(idx.postings[bg], id)
			return false
		})
	}
	return idx
}

// Len returns the number of indexed words.
func (idx *Index) Len() int { return len(idx.words) }

// Word returns the word with the given id.
func (idx *Index) Word(id int) string { return idx.words[id] }

// Bigrams returns the bigram set of the word with the given id.
// The returned set must not be modified.
func (idx *Index) Bigrams(id int) mapset.Set[string] { return idx.bigrams[id] }

// Postings returns the ascending ids of words containing bg.
// The returned slice must not be modified.
func (idx *Index) Postings(bg string) []int { return idx.postings[bg] }

// Distinct returns the number of distinct bigrams in the index.
func (idx *Index) Distinct() int { return len(idx.postings) }

// Overlap counts the bigrams shared by words i and j.
func (idx *Index) Overlap(i, j int) int {
	return Overlap(idx.bigrams[i], idx.bigrams[j])
}

// Candidates returns, in ascending order, every other word id sharing at
// least one bigram with id.
//
// Two words within edit distance k share at least max(len1, len2)-1-k padded
// bigrams, so for the thresholds used in practice every true match shares a
// bigram and is returned here.
func (idx *Index) Candidates(id int) []int {
	seen := mapset.NewThreadUnsafeSet[int]()
	idx.bigrams[id].Each(func(bg string) bool {
		for _, other := range idx.postings[bg] {
			if other != id {
				seen.Add(other)
			}
		}
		return false
	})
	out := seen.ToSlice()
	sort.Ints(out)
	return out
}
