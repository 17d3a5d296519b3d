// Package embed fetches word vectors from an embedding service in batches,
// with an optional cache in front of the service.
package embed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
)

// Embedder turns words into vectors, one per word, in input order.
type Embedder interface {
	Embed(ctx context.Context, words []string) ([][]float64, error)
}

// Func adapts a function to Embedder.
type Func func(ctx context.Context, words []string) ([][]float64, error)

// Embed implements Embedder.
func (f Func) Embed(ctx context.Context, words []string) ([][]float64, error) {
	return f(ctx, words)
}

// Batcher splits a word list into fixed-size requests.
type Batcher struct {
	Embedder  Embedder
	BatchSize int           // words per request; defaults to 100
	Delay     time.Duration // pause between requests

	// Progress, if set, is called after each batch with words done so far.
	Progress func(done, total int)

	Logger *slog.Logger // Optional, uses slog.Default() if nil
}

// EmbedAll embeds every word. The first failing batch aborts the run; its
// error names the batch offset.
func (b *Batcher) EmbedAll(ctx context.Context, words []string) (map[string][]float64, error) {
	size := b.BatchSize
	if size <= 0 {
		size = 100
	}
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}

	out := make(map[string][]float64, len(words))
	for start := 0; start < len(words); start += size {
		if start > 0 && b.Delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(b.Delay):
			}
		}

		batch := words[start:min(start+size, len(words))]
		vecs, err := b.Embedder.Embed(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("batch at %d: %w", start, err)
		}
		if len(vecs) != len(batch) {
			return nil, fmt.Errorf("batch at %d: %w: %d vectors for %d words", start, internalerr.ErrMalformedInput, len(vecs), len(batch))
		}
		for i, w := range batch {
			out[w] = vecs[i]
		}

		done := start + len(batch)
		logger.Debug("embedded batch", "offset", start, "size", len(batch), "done", done, "total", len(words))
		if b.Progress != nil {
			b.Progress(done, len(words))
		}
	}
	return out, nil
}
