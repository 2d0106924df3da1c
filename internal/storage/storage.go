// Package storage provides the optional prediction journal for the mining
// site predictor. It uses BoltDB as the underlying storage engine and keeps
// one record per prediction keyed by time, so history queries are cursor
// range scans.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"minesite/internal/common"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

const predictionsBucket = "predictions" // Bucket name for prediction records

// PredictionRecord is one journaled prediction.
type PredictionRecord struct {
	ID           string             `json:"id"`
	Timestamp    time.Time          `json:"timestamp"`
	Source       string             `json:"source"` // form, api or ws
	Features     map[string]float64 `json:"features"`
	Label        int                `json:"label"`
	Outcome      string             `json:"outcome"`
	SchemaSource string             `json:"schema_source"`
	ModelPath    string             `json:"model_path"`
}

// Store is a BoltDB backed prediction journal. It is safe for concurrent use,
// including Close racing with in-flight writes: those fail with ErrClosed.
type Store struct {
	mu sync.RWMutex // guards db; Close holds it exclusively
	db *bbolt.DB    // BoltDB database instance, nil once closed
}

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("journal is closed")

// New opens (or creates) the journal database under dataPath.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, common.DefaultJournalFile)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(predictionsBucket)); err != nil {
			return fmt.Errorf("create predictions bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing journal without taking the write lock, so
// it can be inspected while the server is running.
func OpenReadOnly(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, common.DefaultJournalFile)

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database. Closing twice is a no-op.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// StorePrediction appends a record. A missing ID or timestamp is filled in
// and the stored record is returned.
func (s *Store) StorePrediction(record PredictionRecord) (PredictionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return record, ErrClosed
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(predictionsBucket))

		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal prediction: %w", err)
		}

		return b.Put(recordKey(record.Timestamp, record.ID), data)
	})
	return record, err
}

// GetPredictions returns records with start <= timestamp <= end, oldest first.
func (s *Store) GetPredictions(start, end time.Time) ([]PredictionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrClosed
	}
	var records []PredictionRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(predictionsBucket))
		if b == nil {
			return nil
		}
		c := b.Cursor()

		startKey := timeKey(start)
		endKey := append(timeKey(end), '~')

		for k, v := c.Seek(startKey); k != nil && bytes.Compare(k, endKey) <= 0; k, v = c.Next() {
			var record PredictionRecord
			if err := json.Unmarshal(v, &record); err != nil {
				continue // Skip malformed records
			}
			records = append(records, record)
		}
		return nil
	})

	return records, err
}

// Recent returns up to n records, newest first.
func (s *Store) Recent(n int) ([]PredictionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, ErrClosed
	}
	if n <= 0 {
		return nil, nil
	}
	records := make([]PredictionRecord, 0, n)

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(predictionsBucket))
		if b == nil {
			return nil
		}
		c := b.Cursor()

		for k, v := c.Last(); k != nil && len(records) < n; k, v = c.Prev() {
			var record PredictionRecord
			if err := json.Unmarshal(v, &record); err != nil {
				continue
			}
			records = append(records, record)
		}
		return nil
	})

	return records, err
}

// Count returns the number of journaled predictions.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return 0, ErrClosed
	}
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		if b := tx.Bucket([]byte(predictionsBucket)); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n, err
}

// Keys are zero padded nanoseconds so byte order matches time order.
func timeKey(ts time.Time) []byte {
	return []byte(fmt.Sprintf("%020d", ts.UnixNano()))
}

func recordKey(ts time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%020d_%s", ts.UnixNano(), id))
}
