// Package history persists audit run summaries so past results can be
// listed and compared.
package history

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/intact-sh/intact/pkg/intact/types"
)

// ErrNotFound is returned when no run matches a lookup.
var ErrNotFound = errors.New("run not found")

// keySeparator separates the timestamp from the run ID in store keys.
const keySeparator = '\x00'

// Run is the persisted summary of one audit.
type Run struct {
	ID        string
	Root      string
	Algorithm string
	Backend   string
	Workers   int
	ReadOnly  bool
	Start     time.Time
	Summary   types.Summary
}

// Encode serializes the run to bytes using gob.
func (r *Run) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes bytes into the run using gob.
func (r *Run) Decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(r)
}

// makeKey builds a store key that sorts chronologically: a zero-padded
// start timestamp followed by the run ID for uniqueness.
func makeKey(start time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%020d%c%s", start.UnixNano(), keySeparator, id))
}

// Store wraps Badger for run persistence.
type Store struct {
	db *badger.DB
}

// Open opens or creates a history store at the given path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record persists a run built from the report and returns it.
func (s *Store) Record(report *types.Report) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Root:      report.Root,
		Algorithm: report.Algorithm,
		Backend:   report.Backend,
		Workers:   report.Workers,
		ReadOnly:  report.ReadOnly,
		Start:     report.Start,
		Summary:   report.Summary,
	}

	value, err := run.Encode()
	if err != nil {
		return nil, err
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(makeKey(run.Start, run.ID), value)
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns up to limit runs, newest first. A limit of zero or
// less returns all runs.
func (s *Store) List(limit int) ([]Run, error) {
	var runs []Run

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if limit > 0 && len(runs) >= limit {
				break
			}
			var run Run
			if err := it.Item().Value(run.Decode); err != nil {
				return err
			}
			runs = append(runs, run)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

// Last returns the most recent run.
func (s *Store) Last() (*Run, error) {
	runs, err := s.List(1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrNotFound
	}
	return &runs[0], nil
}

// Prune deletes the oldest runs beyond keep and reports how many were
// removed. A keep of zero or less disables pruning.
func (s *Store) Prune(keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}

	var doomed [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		var keys [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		if len(keys) > keep {
			doomed = keys[:len(keys)-keep]
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(doomed) == 0 {
		return 0, nil
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		for _, key := range doomed {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(doomed), nil
}
