package embed

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cognicore/wordprep/pkg/wordprep/store"
)

// Cached serves vectors from an in-memory LRU, then from a store, and only
// asks the wrapped Embedder for words found in neither. Fetched vectors are
// written back to both.
type Cached struct {
	next   Embedder
	store  store.Store // may be nil
	model  string
	cache  *lru.Cache[string, []float64]
	logger *slog.Logger
}

// NewCached wraps next. st may be nil to cache in memory only; size is the
// LRU capacity.
func NewCached(next Embedder, st store.Store, model string, size int, logger *slog.Logger) (*Cached, error) {
	if size <= 0 {
		size = 10000
	}
	cache, err := lru.New[string, []float64](size)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{next: next, store: st, model: model, cache: cache, logger: logger}, nil
}

// Embed implements Embedder.
func (c *Cached) Embed(ctx context.Context, words []string) ([][]float64, error) {
	out := make([][]float64, len(words))
	var missing []string
	for i, w := range words {
		if v, ok := c.cache.Get(w); ok {
			out[i] = v
			continue
		}
		missing = append(missing, w)
	}

	if len(missing) > 0 && c.store != nil {
		stored, err := c.store.GetEmbeddings(ctx, c.model, missing)
		if err != nil {
			return nil, fmt.Errorf("read cache: %w", err)
		}
		missing = missing[:0]
		for i, w := range words {
			if out[i] != nil {
				continue
			}
			if v, ok := stored[w]; ok {
				out[i] = v
				c.cache.Add(w, v)
			} else {
				missing = append(missing, w)
			}
		}
	}

	if len(missing) == 0 {
		return out, nil
	}
	c.logger.Debug("embedding cache miss", "model", c.model, "missing", len(missing), "requested", len(words))

	fetched, err := c.next.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(fetched) != len(missing) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d words", len(fetched), len(missing))
	}
	byWord := make(map[string][]float64, len(missing))
	for i, w := range missing {
		byWord[w] = fetched[i]
		c.cache.Add(w, fetched[i])
	}
	if c.store != nil {
		if err := c.store.PutEmbeddings(ctx, c.model, byWord); err != nil {
			return nil, fmt.Errorf("write cache: %w", err)
		}
	}
	for i, w := range words {
		if out[i] == nil {
			out[i] = byWord[w]
		}
	}
	return out, nil
}
