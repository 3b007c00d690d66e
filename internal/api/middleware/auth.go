package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/webchat/chat-relay/internal/entity"
	"github.com/webchat/chat-relay/internal/pkg/logger"
	"github.com/webchat/chat-relay/internal/pkg/response"
	"go.uber.org/zap"
)

type contextKey string

const userKey contextKey = "user"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header,
// or "" when the header is missing or malformed.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// UserFromContext returns the user attached by RequireAuth.
func UserFromContext(ctx context.Context) (*entity.User, bool) {
	user, ok := ctx.Value(userKey).(*entity.User)
	return user, ok
}

// RequireAuth rejects requests without a valid bearer token. When required is
// false every request passes through untouched.
func RequireAuth(auth Authenticator, required bool) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !required {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				response.Error(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				ctxzap.Warn(r.Context(), "rejected bearer token", zap.Error(err))
				response.Error(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := logger.AddFields(r.Context(), zap.String("user_id", user.ID))
			ctx = context.WithValue(ctx, userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
