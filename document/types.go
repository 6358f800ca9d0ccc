/*
types.go - Data model for the marketplace document

PURPOSE:
  Defines every record type stored in the marketplace document and the
  Document itself: the complete persisted state treated as one atomic
  unit of read/write.

COLLECTIONS:
  Users:        Members of the marketplace. Never deleted.
  Listings:     Plant offers (Have) and requests (Want).
  Messages:     Direct messages between two users.
  Guides:       Static plant-care guide catalog.
  Quests:       Point-awarding quest catalog (read-only, seeded).
  Rewards:      Point-costing reward catalog (read-only, seeded).
  Transactions: Append-only redemption audit log.
  Sellers:      Static local-seller directory.

MUTATION DISCIPLINE:
  User.Points and User.Badges are mutated only by the economy package,
  always inside a single Store.Transact call. Catalog collections are
  seeded once and never mutated through the API.

SEE ALSO:
  - store.go: The Store contract that owns a Document
  - ../economy: The only writer of points and badges
*/
package document

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type (
	UserID   string
	QuestID  string
	RewardID string
)

// =============================================================================
// ENUMS
// =============================================================================

// Tier is the membership level of a user. Only TierFree is issued today.
type Tier string

const (
	TierFree Tier = "free"
	TierPaid Tier = "paid"
)

// ListingType distinguishes offers from requests.
type ListingType string

const (
	ListingHave ListingType = "Have"
	ListingWant ListingType = "Want"
)

// ValidListingType reports whether t is one of the two known listing types.
func ValidListingType(t ListingType) bool {
	return t == ListingHave || t == ListingWant
}

// =============================================================================
// RECORDS
// =============================================================================

// User is a marketplace member. Points are always non-negative and a given
// quest contributes at most one badge.
type User struct {
	ID        UserID    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Email     string    `json:"email" yaml:"email"`
	Location  string    `json:"location,omitempty" yaml:"location,omitempty"`
	Bio       string    `json:"bio,omitempty" yaml:"bio,omitempty"`
	Interests []string  `json:"interests,omitempty" yaml:"interests,omitempty"`
	Tier      Tier      `json:"tier" yaml:"tier"`
	Points    int       `json:"points" yaml:"points"`
	Badges    []QuestID `json:"badges" yaml:"badges"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// HasBadge reports whether the user already earned the badge for questID.
func (u *User) HasBadge(questID QuestID) bool {
	for _, b := range u.Badges {
		if b == questID {
			return true
		}
	}
	return false
}

// Listing is a plant offer or request posted by a user.
type Listing struct {
	ID          string      `json:"id" yaml:"id"`
	OwnerID     UserID      `json:"ownerId" yaml:"ownerId"`
	PlantName   string      `json:"plantName" yaml:"plantName"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Type        ListingType `json:"type" yaml:"type"`
	Location    string      `json:"location,omitempty" yaml:"location,omitempty"`
	RadiusKm    float64     `json:"radiusKm,omitempty" yaml:"radiusKm,omitempty"`
	PhotoURL    string      `json:"photoUrl,omitempty" yaml:"photoUrl,omitempty"`
	CreatedAt   time.Time   `json:"createdAt" yaml:"createdAt"`
}

// Message is a direct message between two users.
type Message struct {
	ID        string    `json:"id" yaml:"id"`
	FromID    UserID    `json:"fromId" yaml:"fromId"`
	ToID      UserID    `json:"toId" yaml:"toId"`
	Text      string    `json:"text" yaml:"text"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Quest is a read-only catalog entry describing a point-awarding task.
type Quest struct {
	ID          QuestID `json:"id" yaml:"id"`
	Description string  `json:"description" yaml:"description"`
	Points      int     `json:"points" yaml:"points"`
}

// Reward is a read-only catalog entry describing a point redemption.
type Reward struct {
	ID          RewardID `json:"id" yaml:"id"`
	Description string   `json:"description" yaml:"description"`
	Cost        int      `json:"cost" yaml:"cost"`
}

// Transaction is an immutable audit record of a reward redemption.
// CashAmount is always zero today; cash purchases are out of scope.
type Transaction struct {
	ID          string          `json:"id" yaml:"id"`
	UserID      UserID          `json:"userId" yaml:"userId"`
	RewardID    RewardID        `json:"rewardId" yaml:"rewardId"`
	PointsSpent int             `json:"pointsSpent" yaml:"pointsSpent"`
	CashAmount  decimal.Decimal `json:"cashAmount" yaml:"cashAmount"`
	CreatedAt   time.Time       `json:"createdAt" yaml:"createdAt"`
}

// Guide is a static plant-care guide entry.
type Guide struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Summary string `json:"summary" yaml:"summary"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Seller is a static directory entry for a local plant seller.
type Seller struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Location  string `json:"location,omitempty" yaml:"location,omitempty"`
	Specialty string `json:"specialty,omitempty" yaml:"specialty,omitempty"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty"`
}

// =============================================================================
// DOCUMENT
// =============================================================================

// Document is the complete persisted state. A Store reads and writes it as
// one atomic unit; no reader ever observes a partially written Document.
type Document struct {
	Users        []User        `json:"users"`
	Listings     []Listing     `json:"listings"`
	Messages     []Message     `json:"messages"`
	Guides       []Guide       `json:"guides"`
	Quests       []Quest       `json:"quests"`
	Rewards      []Reward      `json:"rewards"`
	Transactions []Transaction `json:"transactions"`
	Sellers      []Seller      `json:"sellers"`
}

// New returns an empty Document.
func New() *Document {
	return &Document{}
}

// Clone returns a deep copy. Stores hand the copy to a transaction callback
// so a failed callback cannot corrupt committed state.
func (d *Document) Clone() *Document {
	c := &Document{
		Users:        make([]User, len(d.Users)),
		Listings:     append([]Listing(nil), d.Listings...),
		Messages:     append([]Message(nil), d.Messages...),
		Guides:       append([]Guide(nil), d.Guides...),
		Quests:       append([]Quest(nil), d.Quests...),
		Rewards:      append([]Reward(nil), d.Rewards...),
		Transactions: append([]Transaction(nil), d.Transactions...),
		Sellers:      append([]Seller(nil), d.Sellers...),
	}
	for i, u := range d.Users {
		u.Interests = append([]string(nil), u.Interests...)
		u.Badges = append([]QuestID(nil), u.Badges...)
		c.Users[i] = u
	}
	return c
}

// =============================================================================
// LOOKUPS
// =============================================================================

// UserByID returns a pointer to the user record, or nil if absent.
// The pointer aliases the Document; mutate it only inside a transaction.
func (d *Document) UserByID(id UserID) *User {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i]
		}
	}
	return nil
}

// UserByEmail returns a pointer to the user with the given email, or nil.
// Email comparison is case-insensitive.
func (d *Document) UserByEmail(email string) *User {
	for i := range d.Users {
		if strings.EqualFold(d.Users[i].Email, email) {
			return &d.Users[i]
		}
	}
	return nil
}

// QuestByID looks up a quest catalog entry.
func (d *Document) QuestByID(id QuestID) (Quest, bool) {
	for _, q := range d.Quests {
		if q.ID == id {
			return q, true
		}
	}
	return Quest{}, false
}

// RewardByID looks up a reward catalog entry.
func (d *Document) RewardByID(id RewardID) (Reward, bool) {
	for _, r := range d.Rewards {
		if r.ID == id {
			return r, true
		}
	}
	return Reward{}, false
}

// TransactionsForUser returns the user's redemption history, oldest first.
func (d *Document) TransactionsForUser(id UserID) []Transaction {
	out := make([]Transaction, 0)
	for _, tx := range d.Transactions {
		if tx.UserID == id {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// MessagesBetween returns both directions of the a<->b thread, oldest first.
func (d *Document) MessagesBetween(a, b UserID) []Message {
	out := make([]Message, 0)
	for _, m := range d.Messages {
		if (m.FromID == a && m.ToID == b) || (m.FromID == b && m.ToID == a) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
