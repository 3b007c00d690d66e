package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	authapi "github.com/webchat/chat-relay/internal/api/auth"
	chatapi "github.com/webchat/chat-relay/internal/api/chat"
	conversationapi "github.com/webchat/chat-relay/internal/api/conversation"
	"github.com/webchat/chat-relay/internal/api/docs"
	"github.com/webchat/chat-relay/internal/api/middleware"
	"go.uber.org/zap"
)

const requestTimeout = 60 * time.Second

// Handlers groups the HTTP handlers mounted by SetupRouter
type Handlers struct {
	Chat         *chatapi.Handler
	Conversation *conversationapi.Handler
	Auth         *authapi.Handler
}

// RouterOptions carries the cross-cutting policies of the router
type RouterOptions struct {
	AllowedOrigin string
	RateLimiter   *middleware.RateLimiter
	Authenticator middleware.Authenticator
	AuthRequired  bool
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(h Handlers, opts RouterOptions, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)             // Recover from panics
	r.Use(chimiddleware.RequestID)             // Add request ID
	r.Use(middleware.Logger(logger))           // Log requests
	r.Use(middleware.CORS(opts.AllowedOrigin)) // Handle CORS

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	requireAuth := middleware.RequireAuth(opts.Authenticator, opts.AuthRequired)

	// Chat routes are bounded by their upstream client timeouts; a streamed
	// answer must not be cut by the request timeout.
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Group(func(r chi.Router) {
			r.Use(opts.RateLimiter.Middleware)
			chatapi.RegisterStreamRoutes(r, h.Chat)
		})
		chatapi.RegisterRoutes(r, h.Chat)
	})

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(requestTimeout))

		authapi.RegisterRoutes(r, h.Auth)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			conversationapi.RegisterRoutes(r, h.Conversation)
		})
	})

	return r
}
