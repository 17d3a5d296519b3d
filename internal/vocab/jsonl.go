package vocab

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/wordprep/pkg/wordprep/dedup"
	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
	"github.com/cognicore/wordprep/pkg/wordprep/wordsfile"
)

// LoadFromJSONL loads entries from a JSONL file, one {"word":..,"vector":[..]}
// object per line. Malformed lines are logged and skipped.
func LoadFromJSONL(path string, logger *slog.Logger) ([]dedup.Entry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var entries []dedup.Entry
	lines := strings.Split(string(data), "\n")

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var e dedup.Entry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			logger.Warn("skipping malformed JSON", "path", path, "line", i+1, "error", err)
			continue
		}
		entries = append(entries, e)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no valid entries found in %s", internalerr.ErrMalformedInput, path)
	}

	return entries, nil
}

// WriteJSONL writes one entry per line, creating parent directories.
func WriteJSONL(path string, entries []dedup.Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, e := range entries {
		if err := enc.Encode(e); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads entries from a words file (.json) or a JSONL vocabulary
// (.jsonl, .ndjson).
func Load(path string, logger *slog.Logger) ([]dedup.Entry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return LoadFromJSONL(path, logger)
	}
	f, err := wordsfile.Read(path)
	if err != nil {
		return nil, err
	}
	return f.Entries()
}

// Save writes entries in the format implied by path's extension.
func Save(path string, entries []dedup.Entry) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return WriteJSONL(path, entries)
	}
	return wordsfile.Write(path, wordsfile.FromEntries(entries))
}
