package auth

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers registration and session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/api/register", h.Register)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Get("/session", h.Session)
	})
}
