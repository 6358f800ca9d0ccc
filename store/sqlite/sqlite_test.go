package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantswap/marketplace/document"
	"github.com/plantswap/marketplace/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	// File-backed: the connection pool may open multiple connections, and
	// each plain ":memory:" connection gets its own database.
	store, err := sqlite.New(filepath.Join(t.TempDir(), "plantswap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNew_StartsEmpty(t *testing.T) {
	store := newTestStore(t)

	doc, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Empty(t, doc.Users)
	assert.Empty(t, doc.Transactions)
}

func TestTransact_CommitVisible(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Transact(ctx, func(doc *document.Document) error {
		doc.Users = append(doc.Users, document.User{ID: "u1", Email: "a@x.com", Points: 10})
		return nil
	})
	require.NoError(t, err)

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Users, 1)
	assert.Equal(t, 10, doc.Users[0].Points)
}

func TestTransact_CallbackError_NoWrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Transact(ctx, func(doc *document.Document) error {
		doc.Users = append(doc.Users, document.User{ID: "u1"})
		return nil
	}))

	boom := errors.New("boom")
	err := store.Transact(ctx, func(doc *document.Document) error {
		doc.Users = nil
		return boom
	})

	assert.ErrorIs(t, err, boom)
	doc, loadErr := store.Load(ctx)
	require.NoError(t, loadErr)
	assert.Len(t, doc.Users, 1, "failed transaction must not commit")
}

func TestTransact_ConcurrentIncrements_NoLostUpdates(t *testing.T) {
	// GIVEN: One user, many concurrent +1 transactions racing the version
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Transact(ctx, func(doc *document.Document) error {
		doc.Users = append(doc.Users, document.User{ID: "u1"})
		return nil
	}))

	const n = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	committed := 0
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			err := store.Transact(ctx, func(doc *document.Document) error {
				doc.UserByID("u1").Points++
				return nil
			})
			// Under heavy contention a caller may exhaust its retry
			// budget; that is a legal outcome, but it must not commit.
			if err != nil {
				assert.ErrorIs(t, err, document.ErrConflict)
				return
			}
			mu.Lock()
			committed++
			mu.Unlock()
		}()
	}
	wg.Wait()

	// THEN: The balance equals exactly the number of committed transactions
	doc, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, committed, doc.UserByID("u1").Points, "no lost updates")
	assert.Greater(t, committed, 0)
}
