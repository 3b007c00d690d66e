package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authapi "github.com/webchat/chat-relay/internal/api/auth"
	chatapi "github.com/webchat/chat-relay/internal/api/chat"
	conversationapi "github.com/webchat/chat-relay/internal/api/conversation"
	"github.com/webchat/chat-relay/internal/api/middleware"
	"github.com/webchat/chat-relay/internal/config"
	"github.com/webchat/chat-relay/internal/entity"
	"go.uber.org/zap/zaptest"
)

type rejectAll struct{}

func (rejectAll) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	return nil, errors.New("no users")
}

func newTestServer(t *testing.T, authRequired bool) http.Handler {
	t.Helper()
	return SetupRouter(
		Handlers{
			Chat:         chatapi.NewHandler(nil, nil, nil, config.UploadConfig{MaxFileSize: 1 << 20}),
			Conversation: conversationapi.NewHandler(nil),
			Auth:         authapi.NewHandler(nil),
		},
		RouterOptions{
			AllowedOrigin: "*",
			RateLimiter:   middleware.NewRateLimiter(2, time.Minute),
			Authenticator: rejectAll{},
			AuthRequired:  authRequired,
		},
		zaptest.NewLogger(t),
	)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, false)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != `{"status":"healthy"}` {
		t.Errorf("unexpected health answer %d %s", rec.Code, rec.Body.String())
	}
}

func TestDocs_ServesOpenAPIDocument(t *testing.T) {
	srv := newTestServer(t, true)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/swagger.yaml", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "openapi: 3.0.3") || !strings.Contains(rec.Body.String(), "/api/chat/send:") {
		t.Errorf("unexpected document %.80q", rec.Body.String())
	}
}

func TestPreflight_AnsweredBeforeAuth(t *testing.T) {
	srv := newTestServer(t, true)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat/send", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("unexpected origin header %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != http.MethodPost {
		t.Errorf("unexpected allowed methods %q", got)
	}
}

func TestSendRoute_IsRateLimited(t *testing.T) {
	srv := newTestServer(t, false)

	var codes []int
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/chat/send", strings.NewReader("{"))
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusBadRequest || codes[1] != http.StatusBadRequest || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected status sequence %v", codes)
	}
}

func TestAuthRequired_ProtectsChatAndConversations(t *testing.T) {
	srv := newTestServer(t, true)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodPost, "/api/chat/send", http.StatusUnauthorized},
		{http.MethodGet, "/api/conversations", http.StatusUnauthorized},
		{http.MethodGet, "/api/chat/uploads/a.pdf", http.StatusUnauthorized},
		{http.MethodPost, "/api/auth/login", http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, strings.NewReader("{")))
			if rec.Code != tc.status {
				t.Errorf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
}
