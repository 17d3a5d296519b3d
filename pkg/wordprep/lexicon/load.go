package lexicon

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
)

type yamlFile struct {
	Words    []string    `yaml:"words,omitempty"`
	Synonyms []yamlGroup `yaml:"synonyms,omitempty"`
}

type yamlGroup struct {
	Canonical string   `yaml:"canonical"`
	Variants  []string `yaml:"variants,flow"`
}

// LoadFromYAML loads a dictionary word list and/or variant groups from a
// YAML file.
//
// Expected format:
//
//	words: [run, walk, color]
//	synonyms:
//	  - canonical: run
//	    variants: [runs, running]
//
// Canonicals and variants are also added to the word set.
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseYAML(data)
}

func parseYAML(data []byte) (*Lexicon, error) {
	var file yamlFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrMalformedInput, err)
	}

	lex := New()
	for _, w := range file.Words {
		lex.Add(w)
	}
	for _, g := range file.Synonyms {
		canonical := strings.ToLower(strings.TrimSpace(g.Canonical))
		if canonical == "" {
			continue
		}
		lex.AddSynonymGroup(canonical, g.Variants)
		for _, v := range lex.Variants(canonical) {
			lex.Add(v)
		}
	}
	return lex, nil
}

// LoadWordList reads one word per line. Blank lines and lines starting with
// '#' are skipped.
func LoadWordList(r io.Reader) (*Lexicon, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return FromWords(words), nil
}

// LoadHTML collects the words of an HTML page, such as a saved dictionary
// index. Text is split on anything that is not a letter or hyphen; script
// and style contents are ignored.
func LoadHTML(r io.Reader) (*Lexicon, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrMalformedInput, err)
	}

	var words []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			words = append(words, splitWords(n.Data)...)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return FromWords(words), nil
}

func splitWords(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '-'
	})
	out := fields[:0]
	for _, f := range fields {
		if f = strings.Trim(f, "-"); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// LoadFile picks a loader by file extension: .yaml/.yml, .html/.htm, and
// anything else as a plain word list.
func LoadFile(path string) (*Lexicon, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadFromYAML(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return LoadHTML(f)
	default:
		return LoadWordList(f)
	}
}

// SaveYAML writes the variant groups as a `synonyms:` YAML file, canonicals
// in sorted order. The word set is not written.
func (l *Lexicon) SaveYAML(path string) error {
	var file yamlFile
	for _, c := range l.Canonicals() {
		members := l.synonyms[c]
		file.Synonyms = append(file.Synonyms, yamlGroup{
			Canonical: c,
			Variants:  append([]string(nil), members[1:]...),
		})
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
