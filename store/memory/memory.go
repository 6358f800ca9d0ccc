// Package memory provides an in-memory document.Store for testing/dev.
package memory

import (
	"context"
	"sync"

	"github.com/plantswap/marketplace/document"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Store keeps the committed document in memory. Transactions are
// serialized by a single mutex; callbacks run on a clone so a failed
// callback never touches committed state.
type Store struct {
	mu  sync.Mutex
	doc *document.Document
}

func New() *Store {
	return &Store{doc: document.New()}
}

// NewWithDocument starts from a pre-populated document. The store takes
// ownership of doc.
func NewWithDocument(doc *document.Document) *Store {
	return &Store{doc: doc}
}

func (s *Store) Load(_ context.Context) (*document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone(), nil
}

func (s *Store) Transact(_ context.Context, fn func(*document.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	if err := fn(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}
