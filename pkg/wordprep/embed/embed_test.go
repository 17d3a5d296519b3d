package embed

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
	"github.com/cognicore/wordprep/pkg/wordprep/store/memstore"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// fake embeds a word as [len(word)] and records every request.
type fake struct {
	mu    sync.Mutex
	calls [][]string
	fail  int // fail the request with this index (1-based); 0 never fails
}

func (f *fake) Embed(ctx context.Context, words []string) ([][]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string(nil), words...))
	if f.fail == len(f.calls) {
		return nil, errors.New("HTTP 429")
	}
	out := make([][]float64, len(words))
	for i, w := range words {
		out[i] = []float64{float64(len(w))}
	}
	return out, nil
}

func TestBatcherEmbedAll(t *testing.T) {
	f := &fake{}
	var progress []int
	b := &Batcher{
		Embedder:  f,
		BatchSize: 2,
		Delay:     time.Millisecond,
		Progress:  func(done, total int) { progress = append(progress, done) },
		Logger:    quiet,
	}

	out, err := b.EmbedAll(context.Background(), []string{"a", "bb", "ccc", "dddd", "eeeee"})
	require.NoError(t, err)
	assert.Len(t, out, 5)
	assert.Equal(t, []float64{3}, out["ccc"])
	assert.Equal(t, [][]string{{"a", "bb"}, {"ccc", "dddd"}, {"eeeee"}}, f.calls)
	assert.Equal(t, []int{2, 4, 5}, progress)
}

func TestBatcherAbortsWithOffset(t *testing.T) {
	b := &Batcher{Embedder: &fake{fail: 2}, BatchSize: 3, Logger: quiet}
	_, err := b.EmbedAll(context.Background(), []string{"a", "b", "c", "d", "e", "f", "g"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch at 3")
}

func TestBatcherShortResponse(t *testing.T) {
	short := Func(func(ctx context.Context, words []string) ([][]float64, error) {
		return [][]float64{{1}}, nil
	})
	b := &Batcher{Embedder: short, Logger: quiet}
	_, err := b.EmbedAll(context.Background(), []string{"a", "b"})
	assert.True(t, errors.Is(err, internalerr.ErrMalformedInput))
}

func TestBatcherCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := Func(func(_ context.Context, words []string) ([][]float64, error) {
		cancel()
		return make([][]float64, len(words)), nil
	})
	b := &Batcher{Embedder: f, BatchSize: 1, Delay: time.Hour, Logger: quiet}
	_, err := b.EmbedAll(ctx, []string{"a", "b"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCachedSkipsKnownWords(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	require.NoError(t, st.PutEmbeddings(ctx, "mini", map[string][]float64{"cat": {42}}))

	f := &fake{}
	c, err := NewCached(f, st, "mini", 16, quiet)
	require.NoError(t, err)

	out, err := c.Embed(ctx, []string{"cat", "horse", "ox"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{42}, {5}, {2}}, out)
	assert.Equal(t, [][]string{{"horse", "ox"}}, f.calls)

	// written back to the store
	stored, err := st.GetEmbeddings(ctx, "mini", []string{"horse", "ox"})
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	// second call is served from memory
	out, err = c.Embed(ctx, []string{"ox", "cat"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{2}, {42}}, out)
	assert.Len(t, f.calls, 1)
}

func TestCachedWithoutStore(t *testing.T) {
	f := &fake{}
	c, err := NewCached(f, nil, "m", 0, quiet)
	require.NoError(t, err)

	_, err = c.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	_, err = c.Embed(context.Background(), []string{"b", "c"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, f.calls)
}

func TestCachedModelsAreSeparate(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	require.NoError(t, st.PutEmbeddings(ctx, "other", map[string][]float64{"cat": {42}}))

	f := &fake{}
	c, err := NewCached(f, st, "mini", 4, quiet)
	require.NoError(t, err)
	out, err := c.Embed(ctx, []string{"cat"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{3}}, out)
}
