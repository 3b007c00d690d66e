package chat

import (
	"github.com/go-chi/chi/v5"
)

// RegisterStreamRoutes registers the streaming chat route. It must stay out
// of any request timeout middleware.
func RegisterStreamRoutes(r chi.Router, h *Handler) {
	r.Post("/api/chat/send", h.SendMessage)
}

// RegisterRoutes registers the remaining chat routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/api/chat", func(r chi.Router) {
		r.Post("/upload", h.UploadFile)
		r.Get("/uploads/{filename}", h.GetUpload)

		r.Route("/python-rag", func(r chi.Router) {
			r.Post("/", h.AskChatbot)
			r.Put("/", h.BuildChatbot)
			r.Get("/{chatbot_id}/status", h.ChatbotStatus)
		})
	})
}
