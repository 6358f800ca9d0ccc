/*
operations_test.go - Transactional economy operation tests

Tests for:
- Atomicity of listing creation, quest completion, and redemption
- The end-to-end points scenario (signup through exhausted balance)
- Concurrency safety (no lost updates, exactly-one-winner redemption)
*/
package economy_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plantswap/marketplace/document"
	"github.com/plantswap/marketplace/economy"
	"github.com/plantswap/marketplace/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestOps(t *testing.T) (*economy.Operations, *memory.Store) {
	t.Helper()
	doc := document.New()
	doc.Users = []document.User{
		{ID: "u1", Name: "Ada", Email: "a@x.com", Tier: document.TierFree, Badges: []document.QuestID{}},
	}
	doc.Quests = []document.Quest{
		{ID: "q1", Description: "First swap", Points: 50},
	}
	doc.Rewards = []document.Reward{
		{ID: "r1", Description: "Tote bag", Cost: 30},
	}
	store := memory.NewWithDocument(doc)
	return economy.New(store, economy.DefaultConfig()), store
}

func userPoints(t *testing.T, store document.Store, id document.UserID) int {
	t.Helper()
	doc, err := store.Load(context.Background())
	require.NoError(t, err)
	user := doc.UserByID(id)
	require.NotNil(t, user)
	return user.Points
}

// =============================================================================
// LISTING CREATION
// =============================================================================

func TestRecordListingCreated_AwardsPoints(t *testing.T) {
	ops, store := newTestOps(t)
	ctx := context.Background()

	listing, err := ops.RecordListingCreated(ctx, "u1", economy.NewListing{
		PlantName: "Monstera", Type: document.ListingHave,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, listing.ID)
	assert.Equal(t, document.UserID("u1"), listing.OwnerID)
	assert.Equal(t, 10, userPoints(t, store, "u1"))

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Listings, 1)
	assert.Equal(t, "Monstera", doc.Listings[0].PlantName)
}

func TestRecordListingCreated_UnknownUser_NothingPersisted(t *testing.T) {
	// GIVEN: A listing for a user that does not exist
	ops, store := newTestOps(t)
	ctx := context.Background()

	// WHEN: Recording the listing
	_, err := ops.RecordListingCreated(ctx, "ghost", economy.NewListing{
		PlantName: "Pothos", Type: document.ListingWant,
	})

	// THEN: The operation fails and no listing was appended
	assert.ErrorIs(t, err, document.ErrUserNotFound)
	doc, loadErr := store.Load(ctx)
	require.NoError(t, loadErr)
	assert.Empty(t, doc.Listings, "failed listing creation must not append")
}

// =============================================================================
// QUEST COMPLETION
// =============================================================================

func TestCompleteQuest_AwardsPointsAndBadge(t *testing.T) {
	ops, _ := newTestOps(t)
	ctx := context.Background()

	result, err := ops.CompleteQuest(ctx, "u1", "q1")

	require.NoError(t, err)
	assert.Equal(t, 50, result.Points)
	assert.Equal(t, []document.QuestID{"q1"}, result.Badges)
	assert.True(t, result.BadgeAwarded)
}

func TestCompleteQuest_Repeat_BadgeOnce_PointsAgain(t *testing.T) {
	// GIVEN: A user who already completed q1 (observed repeat behavior)
	ops, _ := newTestOps(t)
	ctx := context.Background()

	_, err := ops.CompleteQuest(ctx, "u1", "q1")
	require.NoError(t, err)

	// WHEN: Completing the same quest again
	result, err := ops.CompleteQuest(ctx, "u1", "q1")

	// THEN: Points were granted a second time, the badge exactly once
	require.NoError(t, err)
	assert.Equal(t, 100, result.Points)
	assert.Equal(t, []document.QuestID{"q1"}, result.Badges, "badge set must contain q1 once")
	assert.False(t, result.BadgeAwarded)
}

func TestCompleteQuest_Repeat_IdempotentPointsMode(t *testing.T) {
	// GIVEN: Operations configured to not re-award points on repeats
	doc := document.New()
	doc.Users = []document.User{{ID: "u1", Email: "a@x.com", Badges: []document.QuestID{}}}
	doc.Quests = []document.Quest{{ID: "q1", Points: 50}}
	cfg := economy.DefaultConfig()
	cfg.RepeatQuestPoints = false
	ops := economy.New(memory.NewWithDocument(doc), cfg)
	ctx := context.Background()

	_, err := ops.CompleteQuest(ctx, "u1", "q1")
	require.NoError(t, err)

	// WHEN: Completing the same quest again
	result, err := ops.CompleteQuest(ctx, "u1", "q1")

	// THEN: The whole completion is idempotent
	require.NoError(t, err)
	assert.Equal(t, 50, result.Points)
	assert.Equal(t, []document.QuestID{"q1"}, result.Badges)
}

func TestCompleteQuest_UnknownQuest(t *testing.T) {
	ops, store := newTestOps(t)

	_, err := ops.CompleteQuest(context.Background(), "u1", "nope")

	assert.ErrorIs(t, err, document.ErrQuestNotFound)
	assert.Equal(t, 0, userPoints(t, store, "u1"))
}

// =============================================================================
// REWARD REDEMPTION
// =============================================================================

func TestRedeemReward_DebitAndTransactionAtomic(t *testing.T) {
	// GIVEN: A user with enough points for the reward
	ops, store := newTestOps(t)
	ctx := context.Background()
	_, err := ops.CompleteQuest(ctx, "u1", "q1") // 50 points
	require.NoError(t, err)

	// WHEN: Redeeming a 30 point reward
	result, err := ops.RedeemReward(ctx, "u1", "r1")

	// THEN: Balance is debited and exactly one transaction is recorded
	require.NoError(t, err)
	assert.Equal(t, 20, result.RemainingPoints)
	assert.Equal(t, 30, result.Transaction.PointsSpent)
	assert.True(t, result.Transaction.CashAmount.IsZero())

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, doc.Transactions, 1)
	assert.Equal(t, document.UserID("u1"), doc.Transactions[0].UserID)
	assert.Equal(t, document.RewardID("r1"), doc.Transactions[0].RewardID)
}

func TestRedeemReward_InsufficientBalance_NothingPersisted(t *testing.T) {
	// GIVEN: A user with fewer points than the reward costs
	ops, store := newTestOps(t)
	ctx := context.Background()

	// WHEN: Redeeming
	_, err := ops.RedeemReward(ctx, "u1", "r1")

	// THEN: The whole operation fails - no debit, no transaction
	assert.ErrorIs(t, err, document.ErrInsufficientBalance)
	assert.Equal(t, 0, userPoints(t, store, "u1"))

	doc, loadErr := store.Load(ctx)
	require.NoError(t, loadErr)
	assert.Empty(t, doc.Transactions, "failed redemption must not record a transaction")
}

func TestRedeemReward_UnknownReward(t *testing.T) {
	ops, _ := newTestOps(t)

	_, err := ops.RedeemReward(context.Background(), "u1", "nope")

	assert.ErrorIs(t, err, document.ErrRewardNotFound)
}

// =============================================================================
// END-TO-END SCENARIO
// =============================================================================

func TestEconomy_FullScenario(t *testing.T) {
	// Signup -> listing (+10) -> quest q1 (+50) -> redeem r1 three times:
	// 60-30=30, 30-30=0, then insufficient.
	ops, store := newTestOps(t)
	ctx := context.Background()

	assert.Equal(t, 0, userPoints(t, store, "u1"))

	_, err := ops.RecordListingCreated(ctx, "u1", economy.NewListing{
		PlantName: "Monstera", Type: document.ListingHave,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, userPoints(t, store, "u1"))

	completion, err := ops.CompleteQuest(ctx, "u1", "q1")
	require.NoError(t, err)
	assert.Equal(t, 60, completion.Points)
	assert.Equal(t, []document.QuestID{"q1"}, completion.Badges)

	first, err := ops.RedeemReward(ctx, "u1", "r1")
	require.NoError(t, err)
	assert.Equal(t, 30, first.RemainingPoints)

	second, err := ops.RedeemReward(ctx, "u1", "r1")
	require.NoError(t, err)
	assert.Equal(t, 0, second.RemainingPoints, "exact balance redemption succeeds")

	_, err = ops.RedeemReward(ctx, "u1", "r1")
	assert.ErrorIs(t, err, document.ErrInsufficientBalance)
	assert.Equal(t, 0, userPoints(t, store, "u1"))

	txs, err := ops.TransactionsForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, txs, 2, "exactly one transaction per successful redemption")
	assert.Equal(t, 30, txs[0].PointsSpent)
	assert.Equal(t, 30, txs[1].PointsSpent)
	assert.False(t, txs[1].CreatedAt.Before(txs[0].CreatedAt), "history is oldest first")
}

// =============================================================================
// CONCURRENCY SAFETY
// =============================================================================

func TestConcurrentListingAwards_NoLostUpdates(t *testing.T) {
	// GIVEN: 50 concurrent listing creations for the same user
	ops, store := newTestOps(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := ops.RecordListingCreated(ctx, "u1", economy.NewListing{
				PlantName: "Fern", Type: document.ListingHave,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// THEN: The final balance is exactly initial + 10*N
	assert.Equal(t, 10*n, userPoints(t, store, "u1"))

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Listings, n)
}

func TestConcurrentRedemptions_ExactlyOneWins(t *testing.T) {
	// GIVEN: A user whose balance covers exactly one redemption
	ops, store := newTestOps(t)
	ctx := context.Background()
	err := store.Transact(ctx, func(doc *document.Document) error {
		doc.UserByID("u1").Points = 30
		return nil
	})
	require.NoError(t, err)

	// WHEN: Two concurrent redemptions race for that balance
	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ops.RedeemReward(ctx, "u1", "r1")
		}(i)
	}
	wg.Wait()

	// THEN: Exactly one succeeds, one fails on balance, one tx recorded
	var succeeded, failed int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, document.ErrInsufficientBalance)
			failed++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 0, userPoints(t, store, "u1"))

	doc, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Transactions, 1, "exactly one transaction for the winning redemption")
}
