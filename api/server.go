/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/auth/*       Signup/login (public)
  /api/listings     Browse (public), create (caller required)
  /api/messages/*   Caller required
  /api/quests/*     Catalog public, completion caller required
  /api/rewards/*    Catalog public, redemption caller required
  /api/users/me*    Caller required
  /api/guides, /api/sellers, /api/health   Public

SEE ALSO:
  - handlers.go: Handler implementations
  - auth.go: RequireCaller middleware
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Auth-Token"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Auth routes
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.Signup)
			r.Post("/login", h.Login)
		})

		// Listing routes
		r.Route("/listings", func(r chi.Router) {
			r.Get("/", h.ListListings)
			r.With(h.RequireCaller).Post("/", h.CreateListing)
		})

		// Message routes
		r.Route("/messages", func(r chi.Router) {
			r.Use(h.RequireCaller)
			r.Get("/{peerId}", h.GetMessages)
			r.Post("/{peerId}", h.SendMessage)
		})

		// Quest routes
		r.Route("/quests", func(r chi.Router) {
			r.Get("/", h.ListQuests)
			r.With(h.RequireCaller).Post("/complete/{questId}", h.CompleteQuest)
		})

		// Reward routes
		r.Route("/rewards", func(r chi.Router) {
			r.Get("/", h.ListRewards)
			r.With(h.RequireCaller).Post("/redeem/{rewardId}", h.RedeemReward)
		})

		// Profile routes
		r.Route("/users/me", func(r chi.Router) {
			r.Use(h.RequireCaller)
			r.Get("/", h.Me)
			r.Get("/transactions", h.MyTransactions)
		})

		// Catalog routes
		r.Get("/guides", h.ListGuides)
		r.Get("/sellers", h.ListSellers)

		r.Get("/health", h.Health)
	})

	return r
}
