// Package glove fetches and parses GloVe-format embedding tables: one word per
// line followed by its vector components, roughly in frequency order.
package glove

import (
	"bufio"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cognicore/wordprep/pkg/wordprep/dedup"
)

const logEvery = 100000

// LoadOptions configures Load.
type LoadOptions struct {
	MaxLines   int               // stop after this many lines; 0 reads everything
	Dimensions int               // required vector length; longer vectors are truncated, 0 keeps all
	Normalize  func(string) string // word normalization; strings.ToLower if nil

	Logger *slog.Logger // Optional, uses slog.Default() if nil
}

// Load parses an embedding table. Words pass through opts.Normalize; lines
// with fewer than two fields, unparsable or non-finite components, or fewer
// than Dimensions components are skipped. When a word appears twice the first occurrence wins. File order
// is preserved.
func Load(r io.Reader, opts LoadOptions) ([]dedup.Entry, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Normalize == nil {
		opts.Normalize = strings.ToLower
	}

	var (
		entries []dedup.Entry
		seen    = make(map[string]struct{})
		lines   int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if opts.MaxLines > 0 && lines >= opts.MaxLines {
			break
		}
		lines++
		if lines%logEvery == 0 {
			opts.Logger.Info("loading embeddings", "lines", lines, "kept", len(entries))
		}

		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		word := opts.Normalize(fields[0])
		if word == "" {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		vec, ok := parseVector(fields[1:], opts.Dimensions)
		if !ok {
			continue
		}
		seen[word] = struct{}{}
		entries = append(entries, dedup.Entry{Word: word, Vector: vec})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	opts.Logger.Info("loaded embeddings", "lines", lines, "kept", len(entries))
	return entries, nil
}

func parseVector(fields []string, dims int) ([]float64, bool) {
	vec := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		vec[i] = v
	}
	if dims > 0 {
		if len(vec) < dims {
			return nil, false
		}
		vec = vec[:dims:dims]
	}
	return vec, true
}

// LoadFile opens path and calls Load.
func LoadFile(path string, opts LoadOptions) ([]dedup.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, opts)
}
