/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal document model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - ../document/types.go: The internal records these mirror
*/
package api

import (
	"time"

	"github.com/plantswap/marketplace/document"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// SignupRequest creates a new user. Email is required and unique.
type SignupRequest struct {
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Location  string   `json:"location"`
	Bio       string   `json:"bio"`
	Interests []string `json:"interests"`
}

// LoginRequest resolves an existing user by email.
type LoginRequest struct {
	Email string `json:"email"`
}

// CreateListingRequest posts a new listing. PlantName and Type are required.
type CreateListingRequest struct {
	PlantName   string  `json:"plantName"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	RadiusKm    float64 `json:"radiusKm"`
	PhotoURL    string  `json:"photoUrl"`
}

// SendMessageRequest sends a message to a peer.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ErrorResponse is the structured error body for all failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// UserDTO represents a user in API responses.
type UserDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Location  string   `json:"location,omitempty"`
	Bio       string   `json:"bio,omitempty"`
	Interests []string `json:"interests"`
	Tier      string   `json:"tier"`
	Points    int      `json:"points"`
	Badges    []string `json:"badges"`
	CreatedAt string   `json:"createdAt"`
}

// AuthResponse returns the user together with the opaque caller token.
// The token is the user identifier; it is not a security credential.
type AuthResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token"`
}

// ListingDTO represents a listing in API responses.
type ListingDTO struct {
	ID          string  `json:"id"`
	OwnerID     string  `json:"ownerId"`
	PlantName   string  `json:"plantName"`
	Description string  `json:"description,omitempty"`
	Type        string  `json:"type"`
	Location    string  `json:"location,omitempty"`
	RadiusKm    float64 `json:"radiusKm,omitempty"`
	PhotoURL    string  `json:"photoUrl,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

// MessageDTO represents a message in API responses.
type MessageDTO struct {
	ID        string `json:"id"`
	FromID    string `json:"fromId"`
	ToID      string `json:"toId"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// QuestDTO represents a quest catalog entry.
type QuestDTO struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

// RewardDTO represents a reward catalog entry.
type RewardDTO struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Cost        int    `json:"cost"`
}

// GuideDTO represents a guide catalog entry.
type GuideDTO struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url,omitempty"`
}

// SellerDTO represents a seller directory entry.
type SellerDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location,omitempty"`
	Specialty string `json:"specialty,omitempty"`
	URL       string `json:"url,omitempty"`
}

// TransactionDTO represents a redemption audit record.
type TransactionDTO struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	RewardID    string `json:"rewardId"`
	PointsSpent int    `json:"pointsSpent"`
	CashAmount  string `json:"cashAmount"`
	CreatedAt   string `json:"createdAt"`
}

// QuestCompletionDTO is the result of completing a quest.
type QuestCompletionDTO struct {
	Points int      `json:"points"`
	Badges []string `json:"badges"`
}

// RedemptionDTO is the result of redeeming a reward.
type RedemptionDTO struct {
	RemainingPoints int `json:"remainingPoints"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func userDTO(u document.User) UserDTO {
	badges := make([]string, 0, len(u.Badges))
	for _, b := range u.Badges {
		badges = append(badges, string(b))
	}
	interests := u.Interests
	if interests == nil {
		interests = []string{}
	}
	return UserDTO{
		ID:        string(u.ID),
		Name:      u.Name,
		Email:     u.Email,
		Location:  u.Location,
		Bio:       u.Bio,
		Interests: interests,
		Tier:      string(u.Tier),
		Points:    u.Points,
		Badges:    badges,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func listingDTO(l document.Listing) ListingDTO {
	return ListingDTO{
		ID:          l.ID,
		OwnerID:     string(l.OwnerID),
		PlantName:   l.PlantName,
		Description: l.Description,
		Type:        string(l.Type),
		Location:    l.Location,
		RadiusKm:    l.RadiusKm,
		PhotoURL:    l.PhotoURL,
		CreatedAt:   l.CreatedAt.Format(time.RFC3339),
	}
}

func messageDTO(m document.Message) MessageDTO {
	return MessageDTO{
		ID:        m.ID,
		FromID:    string(m.FromID),
		ToID:      string(m.ToID),
		Text:      m.Text,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}

func transactionDTO(tx document.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:          tx.ID,
		UserID:      string(tx.UserID),
		RewardID:    string(tx.RewardID),
		PointsSpent: tx.PointsSpent,
		CashAmount:  tx.CashAmount.String(),
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339),
	}
}
