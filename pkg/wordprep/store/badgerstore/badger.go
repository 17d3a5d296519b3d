package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v3"

	"github.com/cognicore/wordprep/pkg/wordprep/internalerr"
	"github.com/cognicore/wordprep/pkg/wordprep/store"
)

const (
	embeddingPrefix = "emb:"
	runPrefix       = "run:"
)

// Store keeps embeddings and runs in a Badger key-value database.
//
// Keys:
//
//	emb:<model>\x00<word> -> JSON vector
//	run:<id>              -> JSON run
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a database in dir.
func Open(dir string) (*Store, error) {
	return open(badger.DefaultOptions(dir))
}

// OpenInMemory opens a database that lives only as long as the Store.
func OpenInMemory() (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts.WithLoggingLevel(badger.WARNING))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}
	return &Store{db: db}, nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	return s.db.Close()
}

func embeddingKey(model, word string) []byte {
	return []byte(embeddingPrefix + model + "\x00" + word)
}

// GetEmbeddings implements store.Store.
func (s *Store) GetEmbeddings(ctx context.Context, model string, words []string) (map[string][]float64, error) {
	out := make(map[string][]float64)
	err := s.db.View(func(txn *badger.Txn) error {
		for _, w := range words {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := txn.Get(embeddingKey(model, w))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			var vec []float64
			if err := json.Unmarshal(val, &vec); err != nil {
				return fmt.Errorf("%w: vector for %q: %v", internalerr.ErrMalformedInput, w, err)
			}
			out[w] = vec
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PutEmbeddings implements store.Store.
func (s *Store) PutEmbeddings(ctx context.Context, model string, vectors map[string][]float64) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for w, vec := range vectors {
		data, err := json.Marshal(vec)
		if err != nil {
			return err
		}
		if err := wb.Set(embeddingKey(model, w), data); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// RecordRun implements store.Store.
func (s *Store) RecordRun(ctx context.Context, r store.Run) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(runPrefix+r.ID), data)
	})
}

// Runs implements store.Store. Runs are returned newest first by ID.
func (s *Store) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	var runs []store.Run
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(runPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var r store.Run
			if err := json.Unmarshal(val, &r); err != nil {
				return err
			}
			runs = append(runs, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].ID > runs[j].ID })
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
