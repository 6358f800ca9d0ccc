/*
ledger.go - Points and badge mutations on a user record

PURPOSE:
  The ledger is the only code allowed to touch User.Points and
  User.Badges. It enforces the two record-level invariants:

  1. NON-NEGATIVE BALANCE: Points never go below zero. DebitPoints
     checks and mutates in one step, on a record read inside the same
     transaction that writes it, so there is no check-then-act race.
  2. BADGE IDEMPOTENCE: A quest contributes at most one badge no matter
     how many times completion is requested.

CALLING DISCIPLINE:
  Every function here takes a *document.User that must point into the
  Document copy owned by the enclosing Store.Transact callback. Calling
  them on a user loaded outside a transaction reintroduces the lost
  update race the store exists to prevent.

SEE ALSO:
  - operations.go: The transactional use cases built on these
  - ../document/errors.go: InsufficientBalanceError
*/
package economy

import (
	"github.com/plantswap/marketplace/document"
)

// AwardPoints adds amount to the user's balance. Amount is non-negative at
// every call site; negative amounts are ignored rather than allowed to
// corrupt the balance invariant.
func AwardPoints(user *document.User, amount int) {
	if amount < 0 {
		return
	}
	user.Points += amount
}

// AwardBadge inserts questID into the user's badge set. Returns false if
// the badge was already present (no-op), true if it was newly awarded.
func AwardBadge(user *document.User, questID document.QuestID) bool {
	if user.HasBadge(questID) {
		return false
	}
	user.Badges = append(user.Badges, questID)
	return true
}

// DebitPoints subtracts amount from the user's balance. Fails with
// InsufficientBalanceError, leaving the balance unchanged, if the user
// holds fewer than amount points.
func DebitPoints(user *document.User, amount int) error {
	if user.Points < amount {
		return &document.InsufficientBalanceError{
			UserID:    user.ID,
			Available: user.Points,
			Requested: amount,
		}
	}
	user.Points -= amount
	return nil
}
