/*
Package jsonfile persists the marketplace document as one flat JSON file.

PURPOSE:
  Production implementation of document.Store for single-process
  deployments. The entire document is one JSON file on disk; every
  committed transaction rewrites it.

CONCURRENCY:
  A single-slot semaphore serializes Load and Transact. Acquisition is
  bounded: a caller that cannot take the slot within the configured wait
  (or before its context is done) fails with document.ErrBusy instead of
  blocking indefinitely.

CRASH SAFETY:
  Writes go to a temporary file in the same directory, then os.Rename
  replaces the live file. Rename is atomic on POSIX filesystems, so a
  crash mid-write leaves either the old document or the new one - never
  a torn file. If the write fails the in-memory committed state is not
  advanced either, so memory and disk stay consistent.

USAGE:
  store, err := jsonfile.Open("./data/plantswap.json")
  if err != nil { ... }

  err = store.Transact(ctx, func(doc *document.Document) error { ... })

SEE ALSO:
  - document/store.go: The contract this implements
  - store/sqlite: Database-backed alternative
*/
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/plantswap/marketplace/document"
)

const defaultLockWait = 5 * time.Second

// Store is a flat-file document.Store.
type Store struct {
	path     string
	lockWait time.Duration

	// sem is a single-slot semaphore. Holding the slot means owning both
	// the in-memory committed document and the file.
	sem chan struct{}
	doc *document.Document
}

// Option configures a Store.
type Option func(*Store)

// WithLockWait bounds how long a caller waits for the store lock before
// failing with ErrBusy.
func WithLockWait(d time.Duration) Option {
	return func(s *Store) { s.lockWait = d }
}

// Open loads the document at path, or starts an empty one if the file
// does not exist yet.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:     path,
		lockWait: defaultLockWait,
		sem:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}

	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	s.doc = doc
	return s, nil
}

func readDocument(path string) (*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return document.New(), nil
		}
		return nil, fmt.Errorf("read document: %w", err)
	}
	var doc document.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document %s: %w", path, err)
	}
	return &doc, nil
}

// acquire takes the store slot, waiting at most lockWait.
func (s *Store) acquire(ctx context.Context) error {
	timer := time.NewTimer(s.lockWait)
	defer timer.Stop()

	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", document.ErrBusy, ctx.Err())
	case <-timer.C:
		return fmt.Errorf("%w: lock wait exceeded %s", document.ErrBusy, s.lockWait)
	}
}

func (s *Store) release() {
	<-s.sem
}

// Load returns a copy of the committed document.
func (s *Store) Load(ctx context.Context) (*document.Document, error) {
	if err := s.acquire(ctx); err != nil {
		return nil, err
	}
	defer s.release()
	return s.doc.Clone(), nil
}

// Transact applies fn to a clone of the committed document and, only if
// fn succeeds, persists and commits the result.
func (s *Store) Transact(ctx context.Context, fn func(*document.Document) error) error {
	if err := s.acquire(ctx); err != nil {
		return err
	}
	defer s.release()

	next := s.doc.Clone()
	if err := fn(next); err != nil {
		return err
	}

	if err := s.persist(next); err != nil {
		return fmt.Errorf("%w: %v", document.ErrTransactionFailed, err)
	}
	s.doc = next
	return nil
}

// persist writes doc to a temp file and renames it over the live file.
func (s *Store) persist(doc *document.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
