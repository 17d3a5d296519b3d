package dedup

import (
	"sort"
	"unicode/utf8"
)

// Less orders words for canonical selection: shorter first, then
// lexicographically.
func Less(a, b string) bool {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	if la != lb {
		return la < lb
	}
	return a < b
}

// SelectCanonical returns the representative of a cluster: the shortest word,
// ties broken alphabetically. It returns "" for an empty cluster.
//
// Examples:
//   - {"running", "run", "runs"} -> "run"
//   - {"flow", "flew"}           -> "flew"
func SelectCanonical(words []string) string {
	if len(words) == 0 {
		return ""
	}
	best := words[0]
	for _, w := range words[1:] {
		if Less(w, best) {
			best = w
		}
	}
	return best
}

// SortCanonical sorts words in canonical order in place.
func SortCanonical(words []string) {
	sort.Slice(words, func(i, j int) bool { return Less(words[i], words[j]) })
}
