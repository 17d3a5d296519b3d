package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 15000, cfg.Output.TargetCount)
	assert.Equal(t, "stem", cfg.Dedup.Strategy)
	assert.Equal(t, 2, cfg.Similarity().SpellingThreshold)
	assert.Equal(t, 0.85, cfg.Similarity().SemanticThreshold)
	assert.Equal(t, []string{"xxx", "etc"}, cfg.Filter.Exclude)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "wordprep.yaml", `
dedup:
  strategy: similarity
  semantic_threshold: 0.9
output:
  target_count: 500
embed:
  delay: 250ms
store:
  driver: memory
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "similarity", cfg.Dedup.Strategy)
	assert.Equal(t, 0.9, cfg.Dedup.SemanticThreshold)
	assert.Equal(t, 2, cfg.Dedup.SpellingThreshold, "untouched field keeps default")
	assert.Equal(t, 500, cfg.Output.TargetCount)
	assert.Equal(t, 4, cfg.Output.Decimals)
	assert.Equal(t, 250*time.Millisecond, cfg.Embed.Delay)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 50, cfg.Source.Dimensions)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"strategy", "dedup:\n  strategy: lemma\n"},
		{"semantic", "dedup:\n  semantic_threshold: 1.5\n"},
		{"spelling", "dedup:\n  spelling_threshold: -1\n"},
		{"lengths", "filter:\n  min_length: 5\n  max_length: 3\n"},
		{"target", "output:\n  target_count: 0\n"},
		{"decimals", "output:\n  decimals: 20\n"},
		{"driver", "store:\n  driver: postgres\n"},
		{"syntax", "dedup: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "c.yaml", tt.content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, internalerr.ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadStoplist(t *testing.T) {
	sl, err := LoadStoplist(writeFile(t, "stop.yaml", "terms: [foo, bar]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "bar"}, sl.Terms)
}
