package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cognicore/wordprep/pkg/wordprep/store"
)

// Store is an in-memory implementation of store.Store for tests and
// one-off runs.
type Store struct {
	mu         sync.RWMutex
	embeddings map[string]map[string][]float64 // model -> word -> vector
	runs       map[string]store.Run
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		embeddings: make(map[string]map[string][]float64),
		runs:       make(map[string]store.Run),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// GetEmbeddings implements store.Store.
func (s *Store) GetEmbeddings(ctx context.Context, model string, words []string) (map[string][]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]float64)
	byWord := s.embeddings[model]
	for _, w := range words {
		if v, ok := byWord[w]; ok {
			out[w] = append([]float64(nil), v...)
		}
	}
	return out, nil
}

// PutEmbeddings implements store.Store.
func (s *Store) PutEmbeddings(ctx context.Context, model string, vectors map[string][]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	byWord, ok := s.embeddings[model]
	if !ok {
		byWord = make(map[string][]float64, len(vectors))
		s.embeddings[model] = byWord
	}
	for w, v := range vectors {
		byWord[w] = append([]float64(nil), v...)
	}
	return nil
}

// RecordRun implements store.Store.
func (s *Store) RecordRun(ctx context.Context, r store.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[r.ID] = r
	return nil
}

// Runs implements store.Store. Runs are returned newest first by ID.
func (s *Store) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	out := make([]store.Run, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
