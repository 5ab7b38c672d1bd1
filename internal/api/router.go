package api

import (
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RouterConfig holds settings for the API router.
// Passed from main.go so the router can configure CORS and auth from env vars.
type RouterConfig struct {
	// BackendAPIKey is the key that must be provided in X-API-Key or Authorization: Bearer <key>.
	// If empty, auth middleware is skipped (development mode).
	BackendAPIKey string

	// CorsAllowedOrigins is a comma-separated list of allowed origins.
	// If empty, defaults to "*" (development mode).
	CorsAllowedOrigins string
}

func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (applied to all routes including /health)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// CORS: restrict origins when configured, otherwise allow all (dev mode)
	allowedOrigins := []string{"*"}
	if cfg.CorsAllowedOrigins != "" {
		origins := strings.Split(cfg.CorsAllowedOrigins, ",")
		trimmed := make([]string, 0, len(origins))
		for _, o := range origins {
			if s := strings.TrimSpace(o); s != "" {
				trimmed = append(trimmed, s)
			}
		}
		if len(trimmed) > 0 {
			allowedOrigins = trimmed
		}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check — public, no auth required
	r.Get("/health", h.Health)

	// API routes — protected by API key auth
	r.Route("/v1", func(r chi.Router) {
		if cfg.BackendAPIKey != "" {
			r.Use(APIKeyAuth(cfg.BackendAPIKey))
		}

		// Decks
		r.Get("/decks", h.ListDecks)
		r.Post("/decks", h.CreateDeck)
		r.Get("/decks/{id}", h.GetDeck)
		r.Put("/decks/{id}/scenes", h.UpdateScenes)
		r.Get("/decks/{id}/export", h.ExportDeck)
		r.Get("/decks/{id}/debug/jobs", h.GetDeckJobs)

		// Pipeline stage triggers
		r.Post("/decks/{id}/narrate", h.TriggerNarrate)
		r.Post("/decks/{id}/markup", h.TriggerMarkup)
		r.Post("/decks/{id}/synthesize", h.TriggerSynthesize)

		// Voice presets available for synthesis
		r.Get("/voices", h.ListVoices)
	})

	return r
}
