// Package storetest holds behavior checks shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/wordprep/pkg/wordprep/store"
)

// Run exercises a fresh store returned by open. The store is closed when the
// test finishes.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("embeddings", func(t *testing.T) {
		s := open(t)
		t.Cleanup(func() { s.Close() })
		testEmbeddings(t, s)
	})
	t.Run("runs", func(t *testing.T) {
		s := open(t)
		t.Cleanup(func() { s.Close() })
		testRuns(t, s)
	})
}

func testEmbeddings(t *testing.T, s store.Store) {
	ctx := context.Background()

	got, err := s.GetEmbeddings(ctx, "m1", []string{"cat"})
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.PutEmbeddings(ctx, "m1", map[string][]float64{
		"cat": {0.1, 0.2},
		"dog": {0.3, 0.4},
	}))
	require.NoError(t, s.PutEmbeddings(ctx, "m2", map[string][]float64{"cat": {9}}))
	require.NoError(t, s.PutEmbeddings(ctx, "m1", nil))

	got, err = s.GetEmbeddings(ctx, "m1", []string{"cat", "dog", "eel"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]float64{"cat": {0.1, 0.2}, "dog": {0.3, 0.4}}, got)

	got, err = s.GetEmbeddings(ctx, "m2", []string{"cat", "dog"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]float64{"cat": {9}}, got)

	// overwrite
	require.NoError(t, s.PutEmbeddings(ctx, "m1", map[string][]float64{"cat": {1, 1}}))
	got, err = s.GetEmbeddings(ctx, "m1", []string{"cat"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, got["cat"])

	// large lookups
	many := make(map[string][]float64)
	var words []string
	for i := 0; i < 1200; i++ {
		w := fmt.Sprintf("w%04d", i)
		many[w] = []float64{float64(i)}
		words = append(words, w)
	}
	require.NoError(t, s.PutEmbeddings(ctx, "bulk", many))
	got, err = s.GetEmbeddings(ctx, "bulk", words)
	require.NoError(t, err)
	assert.Len(t, got, 1200)
	assert.Equal(t, []float64{777}, got["w0777"])
}

func testRuns(t *testing.T, s store.Store) {
	ctx := context.Background()

	runs, err := s.Runs(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, runs)

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"01A", "01C", "01B"} {
		require.NoError(t, s.RecordRun(ctx, store.Run{
			ID:       id,
			Command:  "prepare",
			Started:  base.Add(time.Duration(i) * time.Minute),
			Finished: base.Add(time.Duration(i)*time.Minute + time.Second),
			Words:    100,
			Kept:     60 + i,
			Path:     "words.json",
			Report:   json.RawMessage(`{"ok":true}`),
		}))
	}

	runs, err = s.Runs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "01C", runs[0].ID)
	assert.Equal(t, "01B", runs[1].ID)

	r := runs[0]
	assert.Equal(t, "prepare", r.Command)
	assert.True(t, r.Started.Equal(base.Add(time.Minute)), "started %v", r.Started)
	assert.True(t, r.Finished.Equal(base.Add(time.Minute+time.Second)), "finished %v", r.Finished)
	assert.Equal(t, 61, r.Kept)
	assert.Equal(t, "words.json", r.Path)
	assert.JSONEq(t, `{"ok":true}`, string(r.Report))

	all, err := s.Runs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
