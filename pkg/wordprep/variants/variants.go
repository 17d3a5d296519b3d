// Package variants guesses inflected forms of canonical words and keeps the
// ones a dictionary confirms.
package variants

import (
	"strings"

	"github.com/cognicore/wordprep/pkg/wordprep/lexicon"
)

// Dictionary answers whether a guessed form is a real word.
type Dictionary interface {
	Contains(word string) bool
}

// Map returns a lexicon grouping each canonical word with the forms of it
// that dict contains. A form that is itself a canonical word is left alone.
// Canonicals without confirmed forms get no group.
func Map(canonicals []string, dict Dictionary) *lexicon.Lexicon {
	lex := lexicon.New()
	isCanonical := make(map[string]bool, len(canonicals))
	for _, c := range canonicals {
		isCanonical[strings.ToLower(c)] = true
	}

	for _, c := range canonicals {
		c = strings.ToLower(c)
		var found []string
		for _, form := range Forms(c) {
			// Normalize maps a form claimed by an earlier canonical to that canonical.
			if isCanonical[form] || lex.Normalize(form) != form || !dict.Contains(form) {
				continue
			}
			found = append(found, form)
		}
		if len(found) > 0 {
			lex.AddSynonymGroup(c, found)
		}
	}
	return lex
}

// Forms lists plural and verb forms of word by regular English spelling
// rules. The result may contain non-words; callers confirm against a
// dictionary.
func Forms(word string) []string {
	if len(word) < 2 {
		return nil
	}
	var out []string
	add := func(s string) {
		for _, o := range out {
			if o == s {
				return
			}
		}
		if s != word {
			out = append(out, s)
		}
	}

	last := word[len(word)-1]
	prev := word[len(word)-2]

	switch {
	case hasAnySuffix(word, "s", "x", "z", "ch", "sh"):
		add(word + "es")
	case last == 'y' && !isVowel(prev):
		add(word[:len(word)-1] + "ies")
	default:
		add(word + "s")
	}

	switch {
	case last == 'e':
		add(word + "d")
		add(word[:len(word)-1] + "ing")
	case last == 'y' && !isVowel(prev):
		add(word[:len(word)-1] + "ied")
		add(word + "ing")
	case doublesFinal(word):
		add(word + string(last) + "ed")
		add(word + string(last) + "ing")
	default:
		add(word + "ed")
		add(word + "ing")
	}
	return out
}

func hasAnySuffix(word string, suffixes ...string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(word, s) {
			return true
		}
	}
	return false
}

func isVowel(b byte) bool {
	return strings.IndexByte("aeiou", b) >= 0
}

// doublesFinal reports a short consonant-vowel-consonant ending whose final
// consonant doubles before -ed/-ing (stop -> stopped).
func doublesFinal(word string) bool {
	n := len(word)
	if n < 3 || n > 4 {
		return false
	}
	c1, v, c2 := word[n-3], word[n-2], word[n-1]
	if isVowel(c1) || !isVowel(v) || isVowel(c2) {
		return false
	}
	return strings.IndexByte("wxy", c2) < 0
}
