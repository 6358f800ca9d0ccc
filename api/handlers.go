/*
handlers.go - HTTP API handlers for the marketplace

PURPOSE:
  Exposes the marketplace via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the document store and the
  economy operations.

ENDPOINTS:
  Auth:
    POST   /api/auth/signup           Create user, returns user+token
    POST   /api/auth/login            Resolve user by email

  Listings:
    GET    /api/listings              List (filter: type, q)
    POST   /api/listings              Create listing (+10 points, atomic)

  Messages:
    GET    /api/messages/{peerId}     Thread with peer, oldest first
    POST   /api/messages/{peerId}     Send message

  Catalogs:
    GET    /api/guides | /api/quests | /api/rewards | /api/sellers

  Economy:
    POST   /api/quests/complete/{questId}   Award points + badge
    POST   /api/rewards/redeem/{rewardId}   Debit points + audit record

  Profile:
    GET    /api/users/me                    Caller profile
    GET    /api/users/me/transactions       Redemption history

ERROR HANDLING:
  Errors are returned as JSON {error, details?} with appropriate status:
  - 400: Validation errors, insufficient balance
  - 401: Missing/unresolvable caller identity
  - 404: User, quest, reward, peer not found
  - 409: Duplicate email
  - 503: Store contention (busy lock / conflict budget), retryable
  - 500: Storage failures

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (before any mutation is attempted)
  3. Call economy operations / store transactions
  4. Serialize response

SEE ALSO:
  - dto.go: Request/response data structures
  - auth.go: Caller identity middleware
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/plantswap/marketplace/document"
	"github.com/plantswap/marketplace/economy"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   document.Store
	Economy *economy.Operations
	Log     *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewHandler creates a handler over the given store.
func NewHandler(store document.Store, ops *economy.Operations, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		Store:   store,
		Economy: ops,
		Log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Signup creates a new user. Email is required and must be unused.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Missing email", nil)
		return
	}

	user := document.User{
		ID:        document.UserID(h.newID()),
		Name:      req.Name,
		Email:     req.Email,
		Location:  req.Location,
		Bio:       req.Bio,
		Interests: req.Interests,
		Tier:      document.TierFree,
		Points:    0,
		Badges:    []document.QuestID{},
		CreatedAt: h.now().UTC(),
	}

	err := h.Store.Transact(r.Context(), func(doc *document.Document) error {
		if doc.UserByEmail(req.Email) != nil {
			return document.ErrEmailExists
		}
		doc.Users = append(doc.Users, user)
		return nil
	})
	if err != nil {
		h.writeDomainError(w, "Signup failed", err)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: userDTO(user), Token: string(user.ID)})
}

// Login resolves a user by email. 404 if unknown.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, http.StatusBadRequest, "Missing email", nil)
		return
	}

	doc, err := h.Store.Load(r.Context())
	if err != nil {
		h.writeDomainError(w, "Login failed", err)
		return
	}
	user := doc.UserByEmail(req.Email)
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: userDTO(*user), Token: string(user.ID)})
}

// =============================================================================
// LISTING HANDLERS
// =============================================================================

// ListListings returns listings, optionally filtered by type and a
// case-insensitive substring over plant name and description.
func (h *Handler) ListListings(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Store.Load(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list listings", err)
		return
	}

	typeFilter := r.URL.Query().Get("type")
	q := strings.ToLower(r.URL.Query().Get("q"))

	dtos := make([]ListingDTO, 0, len(doc.Listings))
	for _, l := range doc.Listings {
		if typeFilter != "" && string(l.Type) != typeFilter {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(l.PlantName), q) &&
			!strings.Contains(strings.ToLower(l.Description), q) {
			continue
		}
		dtos = append(dtos, listingDTO(l))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateListing appends a listing and awards the listing points to the
// caller, atomically.
func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.PlantName) == "" {
		writeError(w, http.StatusBadRequest, "Missing plantName", nil)
		return
	}
	listingType := document.ListingType(req.Type)
	if !document.ValidListingType(listingType) {
		writeError(w, http.StatusBadRequest, "Invalid type (use Have or Want)", nil)
		return
	}

	listing, err := h.Economy.RecordListingCreated(r.Context(), callerID(r), economy.NewListing{
		PlantName:   req.PlantName,
		Description: req.Description,
		Type:        listingType,
		Location:    req.Location,
		RadiusKm:    req.RadiusKm,
		PhotoURL:    req.PhotoURL,
	})
	if err != nil {
		h.writeDomainError(w, "Failed to create listing", err)
		return
	}

	writeJSON(w, http.StatusOK, listingDTO(listing))
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

// GetMessages returns the caller's thread with the peer, oldest first.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	peerID := document.UserID(chi.URLParam(r, "peerId"))

	doc, err := h.Store.Load(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to get messages", err)
		return
	}

	msgs := doc.MessagesBetween(callerID(r), peerID)
	dtos := make([]MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		dtos = append(dtos, messageDTO(m))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SendMessage appends a message from the caller to the peer.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	peerID := document.UserID(chi.URLParam(r, "peerId"))

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Missing text", nil)
		return
	}

	msg := document.Message{
		ID:        h.newID(),
		FromID:    callerID(r),
		ToID:      peerID,
		Text:      req.Text,
		CreatedAt: h.now().UTC(),
	}

	err := h.Store.Transact(r.Context(), func(doc *document.Document) error {
		if doc.UserByID(peerID) == nil {
			return document.ErrUserNotFound
		}
		doc.Messages = append(doc.Messages, msg)
		return nil
	})
	if err != nil {
		h.writeDomainError(w, "Failed to send message", err)
		return
	}

	writeJSON(w, http.StatusOK, messageDTO(msg))
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// ListGuides returns the guide catalog.
func (h *Handler) ListGuides(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Store.Load(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list guides", err)
		return
	}
	dtos := make([]GuideDTO, 0, len(doc.Guides))
	for _, g := range doc.Guides {
		dtos = append(dtos, GuideDTO{ID: g.ID, Title: g.Title, Summary: g.Summary, URL: g.URL})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListQuests returns the quest catalog.
func (h *Handler) ListQuests(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Store.Load(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list quests", err)
		return
	}
	dtos := make([]QuestDTO, 0, len(doc.Quests))
	for _, q := range doc.Quests {
		dtos = append(dtos, QuestDTO{ID: string(q.ID), Description: q.Description, Points: q.Points})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListRewards returns the reward catalog.
func (h *Handler) ListRewards(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Store.Load(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list rewards", err)
		return
	}
	dtos := make([]RewardDTO, 0, len(doc.Rewards))
	for _, rw := range doc.Rewards {
		dtos = append(dtos, RewardDTO{ID: string(rw.ID), Description: rw.Description, Cost: rw.Cost})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListSellers returns the seller directory.
func (h *Handler) ListSellers(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Store.Load(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list sellers", err)
		return
	}
	dtos := make([]SellerDTO, 0, len(doc.Sellers))
	for _, s := range doc.Sellers {
		dtos = append(dtos, SellerDTO{ID: s.ID, Name: s.Name, Location: s.Location, Specialty: s.Specialty, URL: s.URL})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ECONOMY HANDLERS
// =============================================================================

// CompleteQuest awards a quest's points and badge to the caller.
func (h *Handler) CompleteQuest(w http.ResponseWriter, r *http.Request) {
	questID := document.QuestID(chi.URLParam(r, "questId"))

	result, err := h.Economy.CompleteQuest(r.Context(), callerID(r), questID)
	if err != nil {
		h.writeDomainError(w, "Failed to complete quest", err)
		return
	}

	badges := make([]string, 0, len(result.Badges))
	for _, b := range result.Badges {
		badges = append(badges, string(b))
	}
	writeJSON(w, http.StatusOK, QuestCompletionDTO{Points: result.Points, Badges: badges})
}

// RedeemReward debits the reward cost and records the transaction.
func (h *Handler) RedeemReward(w http.ResponseWriter, r *http.Request) {
	rewardID := document.RewardID(chi.URLParam(r, "rewardId"))

	result, err := h.Economy.RedeemReward(r.Context(), callerID(r), rewardID)
	if err != nil {
		h.writeDomainError(w, "Failed to redeem reward", err)
		return
	}

	writeJSON(w, http.StatusOK, RedemptionDTO{RemainingPoints: result.RemainingPoints})
}

// =============================================================================
// PROFILE HANDLERS
// =============================================================================

// Me returns the caller's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Store.Load(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to load profile", err)
		return
	}
	user := doc.UserByID(callerID(r))
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, userDTO(*user))
}

// MyTransactions returns the caller's redemption history, oldest first.
func (h *Handler) MyTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.Economy.TransactionsForUser(r.Context(), callerID(r))
	if err != nil {
		h.writeDomainError(w, "Failed to load transactions", err)
		return
	}
	dtos := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		dtos = append(dtos, transactionDTO(tx))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// =============================================================================
// HELPERS
// =============================================================================

// writeDomainError maps domain errors to HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case document.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, document.ErrEmailExists):
		writeError(w, http.StatusConflict, message, err)
	case errors.Is(err, document.ErrInsufficientBalance):
		writeError(w, http.StatusBadRequest, message, err)
	case document.IsRetryable(err):
		writeError(w, http.StatusServiceUnavailable, message, err)
	default:
		h.Log.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
