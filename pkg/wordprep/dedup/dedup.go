package dedup

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/wordprep/pkg/wordprep/bigram"
	"github.com/cognicore/wordprep/pkg/wordprep/cluster"
	"github.com/cognicore/wordprep/pkg/wordprep/similarity"
	"github.com/cognicore/wordprep/pkg/wordprep/stem"
)

// progressEvery throttles Options.Progress callbacks.
const progressEvery = 256

// Options configures a deduplication pass.
type Options struct {
	Strategy   Strategy
	Similarity similarity.Config // used by BySimilarity
	Stemmer    stem.Stemmer      // used by ByStem; nil selects stem.Porter

	// Workers > 1 parallelizes the BySimilarity candidate scan.
	Workers int

	// Progress, if set, is called with the number of processed words.
	// Calls are serialized.
	Progress func(done, total int)

	Logger *slog.Logger // Optional, uses slog.Default() if nil
}

// DefaultOptions returns BySimilarity with the default thresholds.
func DefaultOptions() Options {
	return Options{
		Strategy:   BySimilarity,
		Similarity: similarity.DefaultConfig(),
		Workers:    1,
	}
}

func applyDefaults(opts Options) Options {
	if opts.Strategy == "" {
		opts.Strategy = BySimilarity
	}
	if opts.Stemmer == nil {
		opts.Stemmer = stem.Porter{}
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return opts
}

// Stats summarizes a pass.
type Stats struct {
	Input      int `json:"input"`
	Output     int `json:"output"`
	Candidates int `json:"candidates"` // unique pairs sharing a bigram
	Checked    int `json:"checked"`    // pairs whose edit distance was computed
	Merges     int `json:"merges"`     // accepted pairs
}

// Group is one cluster of the output partition.
type Group struct {
	Canonical string   `json:"canonical"`
	Members   []string `json:"members"` // canonical order, canonical first
	IDs       []int    `json:"-"`       // ascending input positions
}

// Merged returns the members other than the canonical word.
func (g Group) Merged() []string {
	out := make([]string, 0, len(g.Members)-1)
	for _, m := range g.Members {
		if m != g.Canonical {
			out = append(out, m)
		}
	}
	return out
}

// Result is the deduplicated vocabulary.
type Result struct {
	Strategy Strategy
	Entries  []Entry // one per group, in first-appearance order
	Groups   []Group // parallel to Entries
	Stats    Stats
}

// MergedAway maps each canonical word with at least one merged member to the
// words merged into it.
func (r *Result) MergedAway() map[string][]string {
	out := make(map[string][]string)
	for _, g := range r.Groups {
		if len(g.Members) > 1 {
			out[g.Canonical] = g.Merged()
		}
	}
	return out
}

// Examples returns up to n multi-member groups in output order.
func (r *Result) Examples(n int) []Group {
	var out []Group
	for _, g := range r.Groups {
		if len(out) >= n {
			break
		}
		if len(g.Members) > 1 {
			out = append(out, g)
		}
	}
	return out
}

// Run merges near-duplicate entries and reduces each cluster to its canonical
// word and that word's original vector.
//
// Input is validated before any work; a malformed collection fails the whole
// pass with internalerr.ErrMalformedInput and no partial output.
func Run(ctx context.Context, entries []Entry, opts Options) (*Result, error) {
	opts = applyDefaults(opts)
	strategy, err := ParseStrategy(string(opts.Strategy))
	if err != nil {
		return nil, err
	}
	opts.Strategy = strategy
	if opts.Strategy == BySimilarity {
		if err := opts.Similarity.Validate(); err != nil {
			return nil, err
		}
	}
	if err := Validate(entries); err != nil {
		return nil, err
	}

	var (
		uf    *cluster.UnionFind
		stats Stats
	)
	switch opts.Strategy {
	case ByStem:
		uf, stats, err = groupByStem(ctx, entries, opts)
	default:
		opts.Logger.Debug("deduplicating by spelling and meaning",
			"spelling_threshold", opts.Similarity.SpellingThreshold,
			"semantic_threshold", opts.Similarity.SemanticThreshold,
			"workers", opts.Workers)
		uf, stats, err = groupBySimilarity(ctx, entries, opts)
	}
	if err != nil {
		return nil, err
	}

	res := collapse(entries, uf)
	res.Strategy = opts.Strategy
	res.Stats = stats
	res.Stats.Input = len(entries)
	res.Stats.Output = len(res.Entries)

	opts.Logger.Info("deduplicated vocabulary",
		"strategy", opts.Strategy,
		"input", res.Stats.Input,
		"output", res.Stats.Output,
		"checked", res.Stats.Checked,
		"merges", res.Stats.Merges)
	return res, nil
}

// collapse turns the partition into groups and canonical entries.
func collapse(entries []Entry, uf *cluster.UnionFind) *Result {
	parts := uf.Groups()
	res := &Result{
		Entries: make([]Entry, 0, len(parts)),
		Groups:  make([]Group, 0, len(parts)),
	}
	for _, p := range parts {
		best := p.Members[0]
		members := make([]string, len(p.Members))
		for i, id := range p.Members {
			members[i] = entries[id].Word
			if Less(entries[id].Word, entries[best].Word) {
				best = id
			}
		}
		SortCanonical(members)
		res.Entries = append(res.Entries, entries[best])
		res.Groups = append(res.Groups, Group{
			Canonical: entries[best].Word,
			Members:   members,
			IDs:       p.Members,
		})
	}
	return res
}

func groupByStem(ctx context.Context, entries []Entry, opts Options) (*cluster.UnionFind, Stats, error) {
	var stats Stats
	uf := cluster.New(len(entries))
	first := make(map[string]int, len(entries))
	report := newProgress(opts.Progress, len(entries))
	for i, e := range entries {
		if i%progressEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}
		s := opts.Stemmer.Stem(e.Word)
		if j, ok := first[s]; ok {
			uf.Union(j, i)
			stats.Merges++
		} else {
			first[s] = i
		}
		report.tick()
	}
	report.done()
	return uf, stats, nil
}

// scan holds what one worker learned from its share of the outer loop.
type scan struct {
	accepted   []bigram.Pair
	candidates int
	checked    int
}

func groupBySimilarity(ctx context.Context, entries []Entry, opts Options) (*cluster.UnionFind, Stats, error) {
	n := len(entries)
	words, vectors := Split(entries)
	idx := bigram.Build(words)
	oracle := similarity.New(opts.Similarity)
	report := newProgress(opts.Progress, n)

	workers := opts.Workers
	if workers > n {
		workers = max(n, 1)
	}

	// Workers only read the index and vectors; merges are applied below in a
	// single pass, so the partition does not depend on scheduling.
	scans := make([]scan, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			gen := bigram.NewGenerator(idx)
			sc := &scans[w]
			for i := w; i < n; i += workers {
				if (i/workers)%progressEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				for _, p := range gen.Pairs(i) {
					sc.candidates++
					v := oracle.Check(similarity.Candidate{
						WordA:    words[p.I],
						WordB:    words[p.J],
						VecA:     vectors[p.I],
						VecB:     vectors[p.J],
						BigramsA: idx.Bigrams(p.I),
						BigramsB: idx.Bigrams(p.J),
					})
					if v.Spelled() {
						sc.checked++
					}
					if v == similarity.Merge {
						sc.accepted = append(sc.accepted, p)
					}
				}
				report.tick()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}
	report.done()

	var (
		stats    Stats
		accepted []bigram.Pair
	)
	for _, sc := range scans {
		stats.Candidates += sc.candidates
		stats.Checked += sc.checked
		accepted = append(accepted, sc.accepted...)
	}
	sort.Slice(accepted, func(a, b int) bool {
		if accepted[a].I != accepted[b].I {
			return accepted[a].I < accepted[b].I
		}
		return accepted[a].J < accepted[b].J
	})

	uf := cluster.New(n)
	for _, p := range accepted {
		uf.Union(p.I, p.J)
	}
	stats.Merges = len(accepted)

	opts.Logger.Debug("similarity scan finished",
		"bigrams", idx.Distinct(),
		"candidates", stats.Candidates,
		"checked", stats.Checked,
		"merges", stats.Merges)
	return uf, stats, nil
}

// progress serializes and throttles Options.Progress callbacks. Reported
// counts never decrease.
type progress struct {
	fn    func(done, total int)
	total int
	count atomic.Int64

	mu   sync.Mutex
	last int64
}

func newProgress(fn func(done, total int), total int) *progress {
	return &progress{fn: fn, total: total}
}

func (p *progress) tick() {
	if p.fn == nil {
		return
	}
	if c := p.count.Add(1); c%progressEvery == 0 {
		p.mu.Lock()
		defer p.mu.Unlock()
		if c > p.last {
			p.last = c
			p.fn(int(c), p.total)
		}
	}
}

func (p *progress) done() {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	p.last = int64(p.total)
	p.fn(p.total, p.total)
	p.mu.Unlock()
}
