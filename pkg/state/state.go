package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketSteps = []byte("steps")

// Status is the outcome of an idempotency check for one preparation step.
type Status string

const (
	// StatusDone means the step completed before; skip it.
	StatusDone Status = "done"
	// StatusNeeded means the step has never run; do it.
	StatusNeeded Status = "needed"
	// StatusNeededFailed means a previous attempt ran and failed; the step
	// is needed again and the caller may want the recorded failure.
	StatusNeededFailed Status = "needed-failed"
)

// record is the persisted form of one step's outcome.
type record struct {
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Store tracks which expensive preparation steps (dataset downloads,
// repository clones, image conversions) have already completed for a
// project, so re-running a pipeline skips finished work.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if absent) the state database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSteps)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create steps bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenProject opens the state database of a project directory.
func OpenProject(projectDir string) (*Store, error) {
	return Open(filepath.Join(projectDir, "state.db"))
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Check reports whether the named step still needs to run.
func (s *Store) Check(step string) (Status, error) {
	status := StatusNeeded
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSteps).Get([]byte(step))
		if data == nil {
			return nil
		}
		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("decode step record %q: %w", step, err)
		}
		status = rec.Status
		return nil
	})
	return status, err
}

// Failure returns the recorded message of the last failed attempt, if any.
func (s *Store) Failure(step string) (string, error) {
	var msg string
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketSteps).Get([]byte(step))
		if data == nil {
			return nil
		}
		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("decode step record %q: %w", step, err)
		}
		if rec.Status == StatusNeededFailed {
			msg = rec.Message
		}
		return nil
	})
	return msg, err
}

// MarkDone records the step as completed.
func (s *Store) MarkDone(step string) error {
	return s.put(step, record{Status: StatusDone, Timestamp: time.Now().UTC()})
}

// MarkFailed records a failed attempt so the next Check distinguishes
// "never tried" from "tried and failed".
func (s *Store) MarkFailed(step, message string) error {
	return s.put(step, record{Status: StatusNeededFailed, Message: message, Timestamp: time.Now().UTC()})
}

func (s *Store) put(step string, rec record) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketSteps).Put([]byte(step), data)
	})
}
