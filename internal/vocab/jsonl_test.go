package vocab

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/wordprep/pkg/wordprep/dedup"
	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestLoadFromJSONLSkipsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.jsonl")
	content := `{"word":"cat","vector":[1,0]}

not json
{"word":"dog","vector":[0,1]}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := LoadFromJSONL(path, quiet)
	if err != nil {
		t.Fatalf("LoadFromJSONL: %v", err)
	}
	if len(entries) != 2 || entries[1].Word != "dog" || entries[1].Vector[1] != 1 {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestLoadFromJSONLEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.jsonl")
	if err := os.WriteFile(path, []byte("\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFromJSONL(path, quiet)
	if !errors.Is(err, internalerr.ErrMalformedInput) {
		t.Errorf("expected ErrMalformedInput, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	entries := []dedup.Entry{
		{Word: "cat", Vector: []float64{0.5, 0.25}},
		{Word: "dog", Vector: []float64{1, 0}},
	}
	dir := t.TempDir()
	for _, name := range []string{"out.jsonl", "out.json"} {
		path := filepath.Join(dir, "nested", name)
		if err := Save(path, entries); err != nil {
			t.Fatalf("Save(%s): %v", name, err)
		}
		back, err := Load(path, quiet)
		if err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		if len(back) != 2 || back[0].Word != "cat" || back[0].Vector[1] != 0.25 {
			t.Errorf("%s: round trip mismatch: %+v", name, back)
		}
	}
}
