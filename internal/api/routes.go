package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		if s.RateLimiter != nil {
			r.Use(rateLimitMiddleware(s.RateLimiter))
		}
		if s.RequestTimeout > 0 {
			r.Use(timeoutMiddleware(s.RequestTimeout))
		}

		r.Get("/decks", s.handleListDecks)
		r.Post("/decks", s.handleCreateDeck)
		r.Route("/decks/{id}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteDeck)
			r.Get("/summary", s.handleDeckSummary)
			r.Get("/cards", s.handleListCards)
			r.Post("/cards", s.handleAddCard)
			r.Post("/sessions", s.handleStartSession)
		})
		r.Get("/cards/{id}/history", s.handleCardHistory)

		r.Get("/sessions/{id}", s.handleGetSession)
		r.Post("/sessions/{id}/grades", s.handleSubmitGrade)
		r.Post("/sessions/{id}/abort", s.handleAbortSession)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errNoRoute(r))
	})
	return r
}
