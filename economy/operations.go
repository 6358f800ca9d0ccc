/*
operations.go - Transactional economy use cases

PURPOSE:
  The three mutating operations of the points economy, each expressed as
  exactly one Store.Transact call:

  1. RecordListingCreated: append listing + award listing points
  2. CompleteQuest:        award quest points + badge (badge idempotent)
  3. RedeemReward:         debit points + append audit transaction

ATOMICITY:
  Each operation's reads and writes happen on the same Document copy
  inside one transaction. The listing append commits with its points
  award or not at all; a redemption produces both the debit and the
  transaction record or neither. A losing concurrent redemption sees the
  winner's debit and fails on insufficient balance - it can never
  under-debit.

REPEAT COMPLETION:
  In the observed behavior, completing a quest twice awards the badge
  once but the points every time. Config.RepeatQuestPoints preserves
  that by default; setting it false makes the whole completion
  idempotent (no badge, no points on repeats).

SEE ALSO:
  - ledger.go: The record-level mutations
  - ../document/store.go: The Transact contract these rely on
*/
package economy

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/plantswap/marketplace/document"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config tunes the economy. The zero value is not useful; start from
// DefaultConfig.
type Config struct {
	// ListingAward is the fixed number of points granted per created
	// listing.
	ListingAward int

	// RepeatQuestPoints controls whether re-completing a quest grants its
	// points again. True matches the observed behavior.
	RepeatQuestPoints bool
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		ListingAward:      10,
		RepeatQuestPoints: true,
	}
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Operations executes the economy use cases against a Store.
type Operations struct {
	store document.Store
	cfg   Config
	now   func() time.Time
	newID func() string
}

// New creates Operations backed by the given store.
func New(store document.Store, cfg Config) *Operations {
	return &Operations{
		store: store,
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// WithClock overrides the timestamp source. For tests.
func (o *Operations) WithClock(now func() time.Time) *Operations {
	o.now = now
	return o
}

// NewListing carries the caller-supplied fields of a listing to create.
type NewListing struct {
	PlantName   string
	Description string
	Type        document.ListingType
	Location    string
	RadiusKm    float64
	PhotoURL    string
}

// QuestCompletion is the result of CompleteQuest.
type QuestCompletion struct {
	Points       int
	Badges       []document.QuestID
	BadgeAwarded bool
}

// Redemption is the result of RedeemReward.
type Redemption struct {
	RemainingPoints int
	Transaction     document.Transaction
}

// RecordListingCreated appends the listing and awards the fixed listing
// points to its owner in one transaction. Fails with ErrUserNotFound if
// the owner is absent; in that case no listing is appended.
func (o *Operations) RecordListingCreated(ctx context.Context, userID document.UserID, nl NewListing) (document.Listing, error) {
	listing := document.Listing{
		ID:          o.newID(),
		OwnerID:     userID,
		PlantName:   nl.PlantName,
		Description: nl.Description,
		Type:        nl.Type,
		Location:    nl.Location,
		RadiusKm:    nl.RadiusKm,
		PhotoURL:    nl.PhotoURL,
		CreatedAt:   o.now().UTC(),
	}

	err := o.store.Transact(ctx, func(doc *document.Document) error {
		user := doc.UserByID(userID)
		if user == nil {
			return document.ErrUserNotFound
		}
		doc.Listings = append(doc.Listings, listing)
		AwardPoints(user, o.cfg.ListingAward)
		return nil
	})
	if err != nil {
		return document.Listing{}, err
	}
	return listing, nil
}

// CompleteQuest awards the quest's points and badge to the user. The badge
// is idempotent; point repetition follows Config.RepeatQuestPoints.
func (o *Operations) CompleteQuest(ctx context.Context, userID document.UserID, questID document.QuestID) (QuestCompletion, error) {
	var result QuestCompletion

	err := o.store.Transact(ctx, func(doc *document.Document) error {
		user := doc.UserByID(userID)
		if user == nil {
			return document.ErrUserNotFound
		}
		quest, ok := doc.QuestByID(questID)
		if !ok {
			return document.ErrQuestNotFound
		}

		awarded := AwardBadge(user, quest.ID)
		if awarded || o.cfg.RepeatQuestPoints {
			AwardPoints(user, quest.Points)
		}

		result = QuestCompletion{
			Points:       user.Points,
			Badges:       append([]document.QuestID(nil), user.Badges...),
			BadgeAwarded: awarded,
		}
		return nil
	})
	if err != nil {
		return QuestCompletion{}, err
	}
	return result, nil
}

// RedeemReward debits the reward's cost from the user and appends the
// audit transaction, atomically. On insufficient balance nothing is
// persisted and the error wraps ErrInsufficientBalance.
func (o *Operations) RedeemReward(ctx context.Context, userID document.UserID, rewardID document.RewardID) (Redemption, error) {
	var result Redemption

	err := o.store.Transact(ctx, func(doc *document.Document) error {
		user := doc.UserByID(userID)
		if user == nil {
			return document.ErrUserNotFound
		}
		reward, ok := doc.RewardByID(rewardID)
		if !ok {
			return document.ErrRewardNotFound
		}

		if err := DebitPoints(user, reward.Cost); err != nil {
			return err
		}

		tx := document.Transaction{
			ID:          o.newID(),
			UserID:      user.ID,
			RewardID:    reward.ID,
			PointsSpent: reward.Cost,
			CashAmount:  decimal.Zero,
			CreatedAt:   o.now().UTC(),
		}
		doc.Transactions = append(doc.Transactions, tx)

		result = Redemption{
			RemainingPoints: user.Points,
			Transaction:     tx,
		}
		return nil
	})
	if err != nil {
		return Redemption{}, err
	}
	return result, nil
}

// TransactionsForUser returns the user's redemption history, oldest first.
// Read-only audit query.
func (o *Operations) TransactionsForUser(ctx context.Context, userID document.UserID) ([]document.Transaction, error) {
	doc, err := o.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if doc.UserByID(userID) == nil {
		return nil, document.ErrUserNotFound
	}
	return doc.TransactionsForUser(userID), nil
}
