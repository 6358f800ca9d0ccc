/*
Package sqlite provides a SQLite-backed implementation of document.Store.

PURPOSE:
  Database-backed alternative to the flat-file store. The whole
  marketplace document is stored as one versioned row; a transaction is
  a read-modify-compare-write cycle on that row.

OPTIMISTIC CONCURRENCY:
  Transact reads the row and its version, runs the callback on the
  decoded document, and writes back with
    UPDATE ... WHERE id = 1 AND version = ?
  If another transaction committed in between, the UPDATE matches zero
  rows and the cycle retries on a fresh read. The retry budget is small;
  when it is exhausted Transact fails with document.ErrConflict and the
  caller retries.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Readers don't block the writer
  - Better crash recovery
  A busy timeout keeps concurrent writers from failing immediately on
  SQLITE_BUSY.

USAGE:
  store, err := sqlite.New("./data/plantswap.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - document/store.go: Interface definition
  - store/jsonfile: Flat-file implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/plantswap/marketplace/document"
)

const defaultMaxRetries = 5

// Store implements document.Store on SQLite.
type Store struct {
	db         *sql.DB
	maxRetries int
}

// New creates a SQLite store at the given database path.
// Use ":memory:" for an in-memory database (single test process only).
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, maxRetries: defaultMaxRetries}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the schema and seeds the single document row.
func (s *Store) migrate() error {
	schema := `
	-- The whole marketplace state is one versioned document row.
	CREATE TABLE IF NOT EXISTS marketplace_document (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		body TEXT NOT NULL,
		version INTEGER NOT NULL
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	empty, err := json.Marshal(document.New())
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT OR IGNORE INTO marketplace_document (id, body, version) VALUES (1, ?, 0)`,
		string(empty),
	)
	return err
}

// Load returns a copy of the committed document.
func (s *Store) Load(ctx context.Context) (*document.Document, error) {
	doc, _, err := s.read(ctx)
	return doc, err
}

func (s *Store) read(ctx context.Context) (*document.Document, int64, error) {
	var body string
	var version int64
	err := s.db.QueryRowContext(ctx,
		`SELECT body, version FROM marketplace_document WHERE id = 1`,
	).Scan(&body, &version)
	if err != nil {
		return nil, 0, fmt.Errorf("load document: %w", err)
	}

	var doc document.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, 0, fmt.Errorf("decode document: %w", err)
	}
	return &doc, version, nil
}

// Transact runs fn on the current document and commits the result with a
// compare-and-swap on the row version. Retries a bounded number of times
// on contention, then fails with ErrConflict.
func (s *Store) Transact(ctx context.Context, fn func(*document.Document) error) error {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		doc, version, err := s.read(ctx)
		if err != nil {
			return err
		}

		if err := fn(doc); err != nil {
			return err
		}

		body, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}

		res, err := s.db.ExecContext(ctx,
			`UPDATE marketplace_document SET body = ?, version = version + 1
			 WHERE id = 1 AND version = ?`,
			string(body), version,
		)
		if err != nil {
			return fmt.Errorf("%w: %v", document.ErrTransactionFailed, err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: %v", document.ErrTransactionFailed, err)
		}
		if rows == 1 {
			return nil
		}
		// Lost the version race; re-read and re-apply.
	}
	return fmt.Errorf("%w: retry budget exhausted", document.ErrConflict)
}
