package store

import (
	"context"
	"encoding/json"
	"time"
)

// Store persists fetched embeddings and the history of pipeline runs.
type Store interface {
	Close() error

	// Embeddings, keyed by (model, word)
	GetEmbeddings(ctx context.Context, model string, words []string) (map[string][]float64, error)
	PutEmbeddings(ctx context.Context, model string, vectors map[string][]float64) error

	// Runs
	RecordRun(ctx context.Context, r Run) error
	Runs(ctx context.Context, limit int) ([]Run, error)
}

// Run is one recorded pipeline execution. ID is a ULID, so IDs sort by start
// time. Words and Kept count the vocabulary going in and coming out.
type Run struct {
	ID       string          `json:"id"`
	Command  string          `json:"command"`
	Started  time.Time       `json:"started"`
	Finished time.Time       `json:"finished"`
	Words    int             `json:"words"`
	Kept     int             `json:"kept"`
	Path     string          `json:"path,omitempty"`
	Report   json.RawMessage `json:"report,omitempty"`
}
