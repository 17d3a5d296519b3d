package dedup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/wordprep/pkg/wordprep/cluster"
	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
	"github.com/cognicore/wordprep/pkg/wordprep/similarity"
	"github.com/cognicore/wordprep/pkg/wordprep/stem"
)

func at(deg float64) []float64 {
	r := deg * math.Pi / 180
	return []float64{math.Cos(r), math.Sin(r)}
}

func quietOptions() Options {
	opts := DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return opts
}

func words(entries []Entry) []string {
	w, _ := Split(entries)
	return w
}

func TestSelectCanonical(t *testing.T) {
	assert.Equal(t, "run", SelectCanonical([]string{"running", "run", "runs"}))
	assert.Equal(t, "flew", SelectCanonical([]string{"flow", "flew"}))
	assert.Equal(t, "", SelectCanonical(nil))
	assert.Equal(t, "été", SelectCanonical([]string{"étés", "été"}))

	w := []string{"runs", "running", "run", "ran"}
	SortCanonical(w)
	assert.Equal(t, []string{"ran", "run", "runs", "running"}, w)
}

func TestRunMergesCloseWords(t *testing.T) {
	entries := []Entry{
		{Word: "running", Vector: at(0)},
		{Word: "cat", Vector: at(90)},
		{Word: "runs", Vector: at(4)},
		{Word: "run", Vector: at(2)},
		{Word: "cats", Vector: at(92)},
	}
	opts := quietOptions()
	opts.Similarity = similarity.Config{SpellingThreshold: 4, SemanticThreshold: 0.85}

	res, err := Run(context.Background(), entries, opts)
	require.NoError(t, err)

	// cluster order follows the earliest member: running(0), cat(1)
	assert.Equal(t, []string{"run", "cat"}, words(res.Entries))
	assert.Equal(t, at(2), res.Entries[0].Vector)
	assert.Equal(t, at(90), res.Entries[1].Vector)

	assert.Equal(t, []string{"run", "runs", "running"}, res.Groups[0].Members)
	assert.Equal(t, []int{0, 2, 3}, res.Groups[0].IDs)
	assert.Equal(t, map[string][]string{
		"run": {"runs", "running"},
		"cat": {"cats"},
	}, res.MergedAway())

	assert.Equal(t, 5, res.Stats.Input)
	assert.Equal(t, 2, res.Stats.Output)
	assert.Equal(t, BySimilarity, res.Strategy)
}

func TestRunCanonicalVectorIsOriginal(t *testing.T) {
	v := []float64{0.3, 0.4}
	entries := []Entry{
		{Word: "flow", Vector: []float64{0.31, 0.4}},
		{Word: "flew", Vector: v},
	}
	res, err := Run(context.Background(), entries, quietOptions())
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "flew", res.Entries[0].Word)
	assert.Same(t, &v[0], &res.Entries[0].Vector[0])
}

func TestRunRequiresBothConditions(t *testing.T) {
	entries := []Entry{
		{Word: "cat", Vector: at(0)},
		{Word: "cot", Vector: at(78.46)}, // cosine 0.2
		{Word: "dog", Vector: at(40)},
		{Word: "caterpillar", Vector: at(48)}, // cosine 0.99 with dog
	}
	res, err := Run(context.Background(), entries, quietOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "cot", "dog", "caterpillar"}, words(res.Entries))
	assert.Zero(t, res.Stats.Merges)
}

// The pairwise test is not transitive, but union-find closes over it:
// cart~card and card~cord chain cart and cord into one cluster even though
// cart and cord fail the direct test.
func TestRunChainsThroughBridgeWord(t *testing.T) {
	entries := []Entry{
		{Word: "cart", Vector: at(0)},
		{Word: "card", Vector: at(25)},
		{Word: "cord", Vector: at(50)},
	}
	opts := quietOptions()
	o := similarity.New(opts.Similarity)
	require.True(t, o.ShouldMerge("cart", "card", at(0), at(25)))
	require.True(t, o.ShouldMerge("card", "cord", at(25), at(50)))
	require.False(t, o.ShouldMerge("cart", "cord", at(0), at(50)))

	res, err := Run(context.Background(), entries, opts)
	require.NoError(t, err)
	require.Len(t, res.Groups, 1)
	assert.ElementsMatch(t, []string{"cart", "card", "cord"}, res.Groups[0].Members)
	assert.Equal(t, "card", res.Entries[0].Word)
	assert.Equal(t, 2, res.Stats.Merges)
}

func TestRunZeroVectorNeverMerges(t *testing.T) {
	entries := []Entry{
		{Word: "color", Vector: []float64{0, 0}},
		{Word: "colour", Vector: at(0)},
		{Word: "colors", Vector: at(1)},
	}
	res, err := Run(context.Background(), entries, quietOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"color", "colors"}, words(res.Entries))
	assert.Equal(t, []string{"color"}, res.Groups[0].Members)
	assert.Equal(t, []string{"colors", "colour"}, res.Groups[1].Members)
}

func TestRunEmptyInput(t *testing.T) {
	res, err := Run(context.Background(), nil, quietOptions())
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Empty(t, res.Groups)
}

func TestRunMalformedInput(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"dimension mismatch", []Entry{{Word: "a", Vector: []float64{1, 2}}, {Word: "b", Vector: []float64{1}}}},
		{"duplicate word", []Entry{{Word: "a", Vector: []float64{1}}, {Word: "a", Vector: []float64{2}}}},
		{"empty word", []Entry{{Word: "", Vector: []float64{1}}}},
		{"nan component", []Entry{{Word: "cats", Vector: []float64{0, 1}}, {Word: "cat", Vector: []float64{math.NaN(), 1}}}},
		{"inf component", []Entry{{Word: "cats", Vector: []float64{math.Inf(-1), 1}}, {Word: "cat", Vector: []float64{0, 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Run(context.Background(), tt.entries, quietOptions())
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, internalerr.ErrMalformedInput))
		})
	}

	_, err := FromParallel([]string{"a", "b"}, [][]float64{{1}})
	assert.True(t, errors.Is(err, internalerr.ErrMalformedInput))
}

func TestRunInvalidConfig(t *testing.T) {
	opts := quietOptions()
	opts.Similarity.SemanticThreshold = 2
	_, err := Run(context.Background(), nil, opts)
	assert.True(t, errors.Is(err, internalerr.ErrInvalidConfig))

	opts = quietOptions()
	opts.Strategy = "soundex"
	_, err = Run(context.Background(), nil, opts)
	assert.True(t, errors.Is(err, internalerr.ErrInvalidConfig))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, fuzzEntries(rand.New(rand.NewSource(1)), 50), quietOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunByStem(t *testing.T) {
	entries := []Entry{
		{Word: "running", Vector: at(0)},
		{Word: "runs", Vector: at(80)},
		{Word: "run", Vector: at(160)},
		{Word: "connection", Vector: at(10)},
		{Word: "connect", Vector: at(20)},
		{Word: "cat", Vector: at(30)},
	}
	opts := quietOptions()
	opts.Strategy = ByStem

	res, err := Run(context.Background(), entries, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"run", "connect", "cat"}, words(res.Entries))
	assert.Equal(t, at(160), res.Entries[0].Vector)
	assert.Equal(t, 3, res.Stats.Merges)
	assert.Equal(t, ByStem, res.Strategy)

	// an injected stemmer replaces the default
	opts.Stemmer = stem.Func(func(w string) string { return w[:1] })
	res, err = Run(context.Background(), entries, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"run", "cat"}, words(res.Entries))
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, BySimilarity, s)

	s, err = ParseStrategy(" Stem ")
	require.NoError(t, err)
	assert.Equal(t, ByStem, s)

	_, err = ParseStrategy("lemma")
	assert.Error(t, err)
}

func TestRunNormalizesStrategy(t *testing.T) {
	entries := []Entry{
		{Word: "running", Vector: at(0)},
		{Word: "run", Vector: at(90)},
	}
	for _, name := range []Strategy{"STEM", " stem ", "Stem"} {
		opts := quietOptions()
		opts.Strategy = name

		res, err := Run(context.Background(), entries, opts)
		require.NoError(t, err, name)
		assert.Equal(t, []string{"run"}, words(res.Entries), name)
		assert.Equal(t, ByStem, res.Strategy, name)
	}
}

func TestRunProgress(t *testing.T) {
	entries := fuzzEntries(rand.New(rand.NewSource(2)), 600)
	opts := quietOptions()
	var calls, last int
	opts.Progress = func(done, total int) {
		calls++
		assert.Equal(t, len(entries), total)
		assert.GreaterOrEqual(t, done, last)
		last = done
	}
	_, err := Run(context.Background(), entries, opts)
	require.NoError(t, err)
	assert.Equal(t, len(entries), last)
	assert.GreaterOrEqual(t, calls, 3)
}

func TestRunProgressParallel(t *testing.T) {
	entries := fuzzEntries(rand.New(rand.NewSource(3)), 2000)
	opts := quietOptions()
	opts.Workers = 8
	var seen []int
	opts.Progress = func(done, total int) { seen = append(seen, done) }

	_, err := Run(context.Background(), entries, opts)
	require.NoError(t, err)
	require.NotEmpty(t, seen)
	assert.True(t, sort.IntsAreSorted(seen), "progress went backwards: %v", seen)
	assert.Equal(t, len(entries), seen[len(seen)-1])
}

func TestProgressNeverDecreases(t *testing.T) {
	var seen []int
	p := newProgress(func(done, total int) { seen = append(seen, done) }, 64*progressEvery)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 8*progressEvery; i++ {
				p.tick()
			}
		}()
	}
	wg.Wait()
	p.done()

	assert.True(t, sort.IntsAreSorted(seen), "progress went backwards: %v", seen)
	assert.Equal(t, 64*progressEvery, seen[len(seen)-1])
}

func TestExamples(t *testing.T) {
	res := &Result{Groups: []Group{
		{Canonical: "a", Members: []string{"a"}},
		{Canonical: "b", Members: []string{"b", "bb"}},
		{Canonical: "c", Members: []string{"c", "cc"}},
	}}
	ex := res.Examples(1)
	require.Len(t, ex, 1)
	assert.Equal(t, "b", ex[0].Canonical)
	assert.Len(t, res.Examples(10), 2)
}

// Properties over fuzzed vocabularies.

func fuzzEntries(rng *rand.Rand, n int) []Entry {
	const alphabet = "abcdet"
	seen := make(map[string]bool)
	var out []Entry
	for len(out) < n {
		l := 1 + rng.Intn(6)
		b := make([]byte, l)
		for i := range b {
			b[i] = alphabet[rng.Intn(len(alphabet))]
		}
		w := string(b)
		if seen[w] {
			continue
		}
		seen[w] = true
		// a handful of topics so that semantic matches are common
		topic := float64(rng.Intn(4)) * 60
		vec := at(topic + rng.NormFloat64()*6)
		if rng.Intn(40) == 0 {
			vec = []float64{0, 0}
		}
		out = append(out, Entry{Word: w, Vector: vec})
	}
	return out
}

// bruteForce is the O(n^2) reference: every pair goes through the oracle.
func bruteForce(entries []Entry, cfg similarity.Config) [][]string {
	o := similarity.New(cfg)
	uf := cluster.New(len(entries))
	for i := range entries {
		for j := i + 1; j < len(entries); j++ {
			if o.ShouldMerge(entries[i].Word, entries[j].Word, entries[i].Vector, entries[j].Vector) {
				uf.Union(i, j)
			}
		}
	}
	var out [][]string
	for _, g := range uf.Groups() {
		var ws []string
		for _, id := range g.Members {
			ws = append(ws, entries[id].Word)
		}
		SortCanonical(ws)
		out = append(out, ws)
	}
	return out
}

func members(res *Result) [][]string {
	out := make([][]string, len(res.Groups))
	for i, g := range res.Groups {
		out[i] = g.Members
	}
	return out
}

func TestRunMatchesBruteForce(t *testing.T) {
	for _, cfg := range []similarity.Config{
		similarity.DefaultConfig(),
		{SpellingThreshold: 1, SemanticThreshold: 0.95},
		{SpellingThreshold: 0, SemanticThreshold: 0.5},
	} {
		entries := fuzzEntries(rand.New(rand.NewSource(11)), 500)
		opts := quietOptions()
		opts.Similarity = cfg

		res, err := Run(context.Background(), entries, opts)
		require.NoError(t, err)
		assert.Equal(t, bruteForce(entries, cfg), members(res), "config %+v", cfg)
	}
}

func TestRunPartitionInvariant(t *testing.T) {
	entries := fuzzEntries(rand.New(rand.NewSource(5)), 800)
	res, err := Run(context.Background(), entries, quietOptions())
	require.NoError(t, err)

	count := make(map[int]int)
	for i, g := range res.Groups {
		assert.Equal(t, g.Canonical, res.Entries[i].Word)
		assert.Equal(t, g.Canonical, g.Members[0])
		assert.Len(t, g.Members, len(g.IDs))
		for _, id := range g.IDs {
			count[id]++
		}
		if i > 0 {
			assert.Less(t, res.Groups[i-1].IDs[0], g.IDs[0])
		}
	}
	require.Len(t, count, len(entries))
	for id := range entries {
		assert.Equal(t, 1, count[id], "id %d", id)
	}
}

func TestRunParallelMatchesSequential(t *testing.T) {
	entries := fuzzEntries(rand.New(rand.NewSource(9)), 700)

	seq, err := Run(context.Background(), entries, quietOptions())
	require.NoError(t, err)

	for _, workers := range []int{2, 3, 8, 1000} {
		opts := quietOptions()
		opts.Workers = workers
		par, err := Run(context.Background(), entries, opts)
		require.NoError(t, err)
		assert.Equal(t, members(seq), members(par), "workers=%d", workers)
		assert.Equal(t, seq.Stats, par.Stats, "workers=%d", workers)
	}
}

// Characterizes the idempotence property over fuzzed input. Chaining can
// leave two canonicals that pass the pairwise test (their bridge words
// were merged away), so a second pass may still merge; every such merge
// must be between canonicals that really do pass the test.
func TestRunIdempotence(t *testing.T) {
	entries := fuzzEntries(rand.New(rand.NewSource(13)), 600)
	opts := quietOptions()

	first, err := Run(context.Background(), entries, opts)
	require.NoError(t, err)
	second, err := Run(context.Background(), first.Entries, opts)
	require.NoError(t, err)
	third, err := Run(context.Background(), second.Entries, opts)
	require.NoError(t, err)

	o := similarity.New(opts.Similarity)
	for _, g := range second.Groups {
		if len(g.Members) == 1 {
			continue
		}
		found := false
		for _, a := range g.IDs {
			for _, b := range g.IDs {
				ea, eb := first.Entries[a], first.Entries[b]
				if a < b && o.ShouldMerge(ea.Word, eb.Word, ea.Vector, eb.Vector) {
					found = true
				}
			}
		}
		assert.True(t, found, "group %v merged without a passing pair", g.Members)
	}
	assert.LessOrEqual(t, len(third.Entries), len(second.Entries))
}

func TestRunIdempotentWithoutBridges(t *testing.T) {
	entries := []Entry{
		{Word: "color", Vector: at(0)},
		{Word: "colour", Vector: at(3)},
		{Word: "colors", Vector: at(5)},
		{Word: "dog", Vector: at(90)},
		{Word: "dogs", Vector: at(91)},
		{Word: "cat", Vector: at(180)},
	}
	opts := quietOptions()
	first, err := Run(context.Background(), entries, opts)
	require.NoError(t, err)
	second, err := Run(context.Background(), first.Entries, opts)
	require.NoError(t, err)

	assert.Equal(t, first.Entries, second.Entries)
	assert.Zero(t, second.Stats.Merges)
	assert.Equal(t, []string{"color", "dog", "cat"}, words(second.Entries))
}

func TestGroupMergedSorted(t *testing.T) {
	g := Group{Canonical: "run", Members: []string{"run", "runs", "running"}}
	got := g.Merged()
	assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool { return Less(got[i], got[j]) }))
	assert.Equal(t, []string{"runs", "running"}, got)
}
