package dedup

import (
	"fmt"
	"strings"

	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
)

// Strategy selects how near-duplicates are grouped.
type Strategy string

const (
	// ByStem groups words sharing a stem.
	ByStem Strategy = "stem"
	// BySimilarity groups words that are close in both spelling and meaning.
	BySimilarity Strategy = "similarity"
)

// ParseStrategy maps a configuration value to a Strategy. The empty string
// selects BySimilarity.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", BySimilarity:
		return BySimilarity, nil
	case ByStem:
		return ByStem, nil
	}
	return "", fmt.Errorf("%w: unknown dedup strategy %q (want %q or %q)", internalerr.ErrInvalidConfig, s, ByStem, BySimilarity)
}

// String implements fmt.Stringer.
func (s Strategy) String() string { return string(s) }
