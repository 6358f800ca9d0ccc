/*
store.go - Persistence contract for the marketplace document

PURPOSE:
  Defines the interface between the domain logic and storage. The whole
  marketplace state is one Document, and every mutation is an atomic
  read-modify-write of that Document.

TRANSACT CONTRACT:
  Transact reads the committed Document, passes a private copy to fn, and
  writes the result back only if fn returns nil. Guarantees:
  - Serializable: no two Transact calls interleave. The first committed
    transaction is fully visible to the next one - no lost updates.
  - All-or-nothing: if fn fails, nothing is written and the error
    propagates unchanged. If the write fails, the prior committed state
    remains intact.
  - All decision reads happen inside fn, on the same copy that is written
    back. Reading outside a transaction and writing inside one is the
    stale-read race this interface exists to prevent.

BLOCKING:
  A Transact call waiting on a prior transaction blocks for a bounded
  time; implementations fail with ErrBusy (lock wait exceeded) or
  ErrConflict (optimistic retry budget exhausted) rather than deadlock.

IMPLEMENTATIONS:
  - store/jsonfile: Flat JSON file, global lock, atomic rename on write
  - store/sqlite:   Versioned single-row document, optimistic retry
  - store/memory:   In-memory for tests

EXAMPLE:
  err := store.Transact(ctx, func(doc *document.Document) error {
      user := doc.UserByID(id)
      if user == nil {
          return document.ErrUserNotFound
      }
      return economy.DebitPoints(user, cost)
  })

SEE ALSO:
  - errors.go: Error taxonomy shared by all implementations
  - ../economy/operations.go: The transactional use cases
*/
package document

import "context"

// Store owns the committed Document.
type Store interface {
	// Load returns a copy of the committed Document. Read-only callers
	// may use it freely; it never aliases store-internal state.
	Load(ctx context.Context) (*Document, error)

	// Transact atomically applies fn to the Document. See the contract
	// above. This is the ONLY write operation.
	Transact(ctx context.Context, fn func(*Document) error) error
}
