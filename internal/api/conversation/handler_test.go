package conversation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/webchat/chat-relay/internal/config"
	"github.com/webchat/chat-relay/internal/entity"
	"github.com/webchat/chat-relay/internal/pkg/formatter"
	"github.com/webchat/chat-relay/internal/pkg/validator"
	"github.com/webchat/chat-relay/internal/repository"
	convuc "github.com/webchat/chat-relay/internal/usecase/conversation"
	"go.uber.org/zap/zaptest"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zaptest.NewLogger(t)
	repo := repository.OpenConversationFile(filepath.Join(t.TempDir(), "conversations.json"), logger)
	uc := convuc.NewUsecase(repo, validator.NewValidator(config.UploadConfig{}), formatter.NewFactory(), logger)

	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(uc))
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestConversationLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := do(t, router, http.MethodPost, "/api/conversations", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var conv entity.Conversation
	json.NewDecoder(rec.Body).Decode(&conv)
	if conv.Title != entity.DefaultConversationTitle {
		t.Errorf("expected default title, got %q", conv.Title)
	}
	base := "/api/conversations/" + conv.ID

	rec = do(t, router, http.MethodPost, base+"/update-title", `{"message":"como configuro mi router wifi en casa"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update-title: expected 200, got %d", rec.Code)
	}
	var titled entity.UpdateTitleResponse
	json.NewDecoder(rec.Body).Decode(&titled)
	if titled.Title != "Como configuro mi router..." {
		t.Errorf("unexpected generated title %q", titled.Title)
	}

	rec = do(t, router, http.MethodPost, base+"/messages", `{"content":"hola"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("add message: expected 200, got %d", rec.Code)
	}
	var added entity.AddMessageResponse
	json.NewDecoder(rec.Body).Decode(&added)
	if !added.Success || added.Message.Role != entity.RoleUser || added.Message.ID == "" {
		t.Errorf("unexpected add response %+v", added)
	}

	rec = do(t, router, http.MethodGet, base+"/messages", "")
	var msgs []*entity.Message
	json.NewDecoder(rec.Body).Decode(&msgs)
	if len(msgs) != 1 || msgs[0].Content != "hola" {
		t.Errorf("unexpected messages %+v", msgs)
	}

	rec = do(t, router, http.MethodPut, base, `{"title":"Router"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"title":"Router"`) {
		t.Errorf("rename: unexpected response %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodDelete, base, "")
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"success":true}` {
		t.Errorf("delete: unexpected response %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodGet, base, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestConversationErrors(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"unknown conversation", http.MethodGet, "/api/conversations/nope", "", http.StatusNotFound},
		{"rename without title", http.MethodPut, "/api/conversations/1", `{"title":"  "}`, http.StatusBadRequest},
		{"rename malformed body", http.MethodPut, "/api/conversations/1", `{`, http.StatusBadRequest},
		{"empty message", http.MethodPost, "/api/conversations/1/messages", `{"content":""}`, http.StatusBadRequest},
		{"message to unknown conversation", http.MethodPost, "/api/conversations/nope/messages", `{"content":"x"}`, http.StatusNotFound},
		{"unknown export format", http.MethodGet, "/api/conversations/1/export?format=odt", "", http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, router, tc.method, tc.path, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			var resp entity.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil || resp.Error == "" {
				t.Errorf("expected {error} body, got %s", rec.Body.String())
			}
		})
	}
}

func TestExportConversation_DefaultsToMarkdown(t *testing.T) {
	router := newTestRouter(t)

	do(t, router, http.MethodPost, "/api/conversations/1/messages", `{"content":"hola"}`)

	rec := do(t, router, http.MethodGet, "/api/conversations/1/export", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="conversation-1.md"` {
		t.Errorf("unexpected disposition %q", got)
	}
	if !strings.Contains(rec.Body.String(), "hola") {
		t.Errorf("expected transcript to contain the message, got %q", rec.Body.String())
	}
}
