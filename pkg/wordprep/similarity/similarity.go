package similarity

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	mapset "github.com/deckarep/golang-set/v2"
	"gonum.org/v1/gonum/floats"

	"github.com/cognicore/wordprep/pkg/wordprep/bigram"
	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
)

// Config holds the two merge thresholds.
type Config struct {
	SpellingThreshold int     `yaml:"spelling_threshold" json:"spelling_threshold"` // max edit distance
	SemanticThreshold float64 `yaml:"semantic_threshold" json:"semantic_threshold"` // min cosine similarity
}

// DefaultConfig returns the standard thresholds: edit distance <= 2 and
// cosine similarity >= 0.85.
func DefaultConfig() Config {
	return Config{
		SpellingThreshold: 2,
		SemanticThreshold: 0.85,
	}
}

// Validate checks threshold ranges.
func (c Config) Validate() error {
	if c.SpellingThreshold < 0 {
		return fmt.Errorf("%w: spelling threshold %d is negative", internalerr.ErrInvalidConfig, c.SpellingThreshold)
	}
	if c.SemanticThreshold < -1 || c.SemanticThreshold > 1 {
		return fmt.Errorf("%w: semantic threshold %v outside [-1, 1]", internalerr.ErrInvalidConfig, c.SemanticThreshold)
	}
	return nil
}

// Verdict is the outcome of checking one candidate pair.
type Verdict int

const (
	Merge Verdict = iota
	RejectLength
	RejectOverlap
	RejectSpelling
	RejectSemantic
)

func (v Verdict) String() string {
	switch v {
	case Merge:
		return "merge"
	case RejectLength:
		return "length"
	case RejectOverlap:
		return "overlap"
	case RejectSpelling:
		return "spelling"
	case RejectSemantic:
		return "semantic"
	}
	return fmt.Sprintf("verdict(%d)", int(v))
}

// Spelled reports whether the edit distance was computed for the pair,
// i.e. the cheap length and overlap filters both passed.
func (v Verdict) Spelled() bool {
	return v == Merge || v == RejectSpelling || v == RejectSemantic
}

// Candidate is one pair of words to test. Bigram sets are optional; when nil
// they are computed from the words.
type Candidate struct {
	WordA, WordB       string
	VecA, VecB         []float64
	BigramsA, BigramsB mapset.Set[string]
}

// Oracle decides whether two vocabulary entries are near-duplicates: close in
// spelling and close in meaning. It holds no mutable state and may be shared.
type Oracle struct {
	cfg Config
}

// New creates an oracle with the given thresholds.
func New(cfg Config) *Oracle {
	return &Oracle{cfg: cfg}
}

// Config returns the oracle's thresholds.
func (o *Oracle) Config() Config { return o.cfg }

// ShouldMerge reports whether both the spelling and the semantic threshold pass.
func (o *Oracle) ShouldMerge(wordA, wordB string, vecA, vecB []float64) bool {
	return o.Check(Candidate{WordA: wordA, WordB: wordB, VecA: vecA, VecB: vecB}) == Merge
}

// Check runs the filters cheapest first: length difference, bigram overlap,
// exact edit distance, then cosine similarity.
func (o *Oracle) Check(c Candidate) Verdict {
	t := o.cfg.SpellingThreshold

	lenA, lenB := utf8.RuneCountInString(c.WordA), utf8.RuneCountInString(c.WordB)
	if abs(lenA-lenB) > t {
		return RejectLength
	}

	bgA, bgB := c.BigramsA, c.BigramsB
	if bgA == nil {
		bgA = bigram.Of(c.WordA)
	}
	if bgB == nil {
		bgB = bigram.Of(c.WordB)
	}
	// Performance heuristic, not part of the soundness argument.
	if bigram.Overlap(bgA, bgB) < MinOverlap(bgA.Cardinality(), bgB.Cardinality(), t) {
		return RejectOverlap
	}

	if EditDistance(c.WordA, c.WordB) > t {
		return RejectSpelling
	}

	// A non-finite component has no meaningful similarity, whatever the threshold.
	if !finite(c.VecA) || !finite(c.VecB) || !(Cosine(c.VecA, c.VecB) >= o.cfg.SemanticThreshold) {
		return RejectSemantic
	}
	return Merge
}

// MinOverlap is the bigram-overlap floor for sets of sizes a and b under
// spelling threshold t: max(1, min(a, b) - t - 1).
func MinOverlap(a, b, t int) int {
	m := min(a, b) - t - 1
	if m < 1 {
		return 1
	}
	return m
}

// EditDistance returns the Levenshtein distance between a and b, counted in
// runes.
func EditDistance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// Cosine returns the cosine similarity of a and b. It is 0 when either vector
// has zero magnitude, the dimensions differ, or a component is NaN or Inf.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	sim := floats.Dot(a, b) / (na * nb)
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0
	}
	return sim
}

func finite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
