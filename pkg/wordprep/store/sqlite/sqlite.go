package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
	"github.com/cognicore/wordprep/pkg/wordprep/store"
)

// maxParams bounds the IN (...) list of a single lookup query.
const maxParams = 500

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS embeddings (
	model TEXT NOT NULL,
	word TEXT NOT NULL,
	vector TEXT NOT NULL,
	PRIMARY KEY(model, word)
);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	command TEXT NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	words INTEGER NOT NULL,
	kept INTEGER NOT NULL,
	path TEXT,
	report TEXT
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// GetEmbeddings returns the cached vectors among words. Missing words are
// absent from the result.
func (s *sqliteStore) GetEmbeddings(ctx context.Context, model string, words []string) (map[string][]float64, error) {
	out := make(map[string][]float64)
	for start := 0; start < len(words); start += maxParams {
		chunk := words[start:min(start+maxParams, len(words))]

		args := make([]interface{}, 0, len(chunk)+1)
		args = append(args, model)
		placeholders := make([]byte, 0, 2*len(chunk))
		for i, w := range chunk {
			if i > 0 {
				placeholders = append(placeholders, ',')
			}
			placeholders = append(placeholders, '?')
			args = append(args, w)
		}

		rows, err := s.db.QueryContext(ctx,
			`SELECT word, vector FROM embeddings WHERE model = ? AND word IN (`+string(placeholders)+`)`,
			args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var word, raw string
			if err := rows.Scan(&word, &raw); err != nil {
				rows.Close()
				return nil, err
			}
			var vec []float64
			if err := json.Unmarshal([]byte(raw), &vec); err != nil {
				rows.Close()
				return nil, fmt.Errorf("%w: vector for %q: %v", internalerr.ErrMalformedInput, word, err)
			}
			out[word] = vec
		}
		if err := rows.Close(); err != nil {
			return nil, err
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// PutEmbeddings upserts vectors in a single transaction.
func (s *sqliteStore) PutEmbeddings(ctx context.Context, model string, vectors map[string][]float64) error {
	if len(vectors) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO embeddings (model, word, vector) VALUES (?, ?, ?)
ON CONFLICT(model, word) DO UPDATE SET vector=excluded.vector;
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for word, vec := range vectors {
		raw, err := json.Marshal(vec)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, model, word, string(raw)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// RecordRun inserts or replaces a run
func (s *sqliteStore) RecordRun(ctx context.Context, r store.Run) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (id, command, started_at, finished_at, words, kept, path, report)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	command=excluded.command,
	started_at=excluded.started_at,
	finished_at=excluded.finished_at,
	words=excluded.words,
	kept=excluded.kept,
	path=excluded.path,
	report=excluded.report;
`, r.ID, r.Command, r.Started.UTC().Format(time.RFC3339Nano), r.Finished.UTC().Format(time.RFC3339Nano),
		r.Words, r.Kept, r.Path, string(r.Report))
	return err
}

// Runs lists recorded runs, newest first
func (s *sqliteStore) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, command, started_at, finished_at, words, kept, path, report
FROM runs
ORDER BY id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []store.Run
	for rows.Next() {
		var (
			r                 store.Run
			started, finished string
			path, report      sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Command, &started, &finished, &r.Words, &r.Kept, &path, &report); err != nil {
			return nil, err
		}
		if r.Started, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, err
		}
		if r.Finished, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, err
		}
		r.Path = path.String
		if report.String != "" {
			r.Report = json.RawMessage(report.String)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
