package conversation

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers conversation routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/conversations", func(r chi.Router) {
		r.Get("/", h.ListConversations)
		r.Post("/", h.CreateConversation)

		r.Route("/{conversation_id}", func(r chi.Router) {
			r.Get("/", h.GetConversation)
			r.Put("/", h.RenameConversation)
			r.Delete("/", h.DeleteConversation)
			r.Post("/update-title", h.UpdateTitle)
			r.Get("/messages", h.ListMessages)
			r.Post("/messages", h.AddMessage)
			r.Get("/export", h.ExportConversation)
		})
	})
}
