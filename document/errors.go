/*
errors.go - Centralized error types for the marketplace core

PURPOSE:
  All domain error values in one place for consistency and
  discoverability. Packages wrap these with additional context; the API
  layer maps them to HTTP statuses via the Is* helpers.

ERROR CATEGORIES:
  1. Not-found errors  - Missing user, quest, reward
  2. Validation errors - Bad input, duplicate email, insufficient balance
  3. Store errors      - Contention and persistence failures

USAGE:
  if errors.Is(err, document.ErrInsufficientBalance) { ... }

  var balErr *document.InsufficientBalanceError
  if errors.As(err, &balErr) {
      log.Printf("short by %d", balErr.Shortfall())
  }

SEE ALSO:
  - ../economy/ledger.go: Produces InsufficientBalanceError
  - ../api/handlers.go: Maps these to HTTP statuses
*/
package document

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUserNotFound is returned when a referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrQuestNotFound is returned when a quest ID is not in the catalog.
	ErrQuestNotFound = errors.New("quest not found")

	// ErrRewardNotFound is returned when a reward ID is not in the catalog.
	ErrRewardNotFound = errors.New("reward not found")

	// ErrEmailExists is returned on signup with an already-registered email.
	ErrEmailExists = errors.New("email already registered")

	// ErrInsufficientBalance is returned when a debit exceeds the user's
	// points. This is the single correctness-critical check in the system.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrBusy is returned when a transaction could not acquire the store
	// lock within its wait budget. Callers should retry.
	ErrBusy = errors.New("store busy")

	// ErrConflict is returned when optimistic concurrency control ran out
	// of retries. Callers should retry.
	ErrConflict = errors.New("concurrent modification detected")

	// ErrTransactionFailed is returned when a transaction could not be
	// persisted. The prior committed state remains intact.
	ErrTransactionFailed = errors.New("transaction failed")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientBalanceError provides details about a points shortage.
type InsufficientBalanceError struct {
	UserID    UserID
	Available int
	Requested int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %d, requested %d",
		e.Available, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}

// Shortfall returns how many points the debit was short by.
func (e *InsufficientBalanceError) Shortfall() int {
	return e.Requested - e.Available
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrQuestNotFound) ||
		errors.Is(err, ErrRewardNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrEmailExists)
}

// IsRetryable returns true if the operation might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrBusy) || errors.Is(err, ErrConflict)
}
