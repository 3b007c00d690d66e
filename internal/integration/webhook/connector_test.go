package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/webchat/chat-relay/internal/config"
	"github.com/webchat/chat-relay/internal/entity"
	"go.uber.org/zap/zaptest"
)

func TestSend_PostsEnvelopeOnce(t *testing.T) {
	var calls int
	var got entity.WebhookRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("X-N8N-Key") != "k" {
			t.Errorf("expected header auth, got %q", r.Header.Get("X-N8N-Key"))
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Hola mundo"}`))
	}))
	defer srv.Close()

	c := NewConnector(config.HTTPClientConfig{}, config.N8NConfig{AuthHeader: "X-N8N-Key", AuthValue: "k"}, zaptest.NewLogger(t))
	resp, err := c.Send(context.Background(), srv.URL+"/webhook/chat", &entity.WebhookRequest{
		Message:        "Hola",
		ConversationID: "c1",
		Settings:       json.RawMessage(`{"temperature":0.2}`),
		AIModel:        entity.AIModelOpenAI,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"message":"Hola mundo"}` || resp.IsEventStream() {
		t.Errorf("unexpected answer %q (%s)", body, resp.ContentType)
	}
	if calls != 1 {
		t.Errorf("expected exactly one call, got %d", calls)
	}
	if got.Message != "Hola" || got.ConversationID != "c1" || got.AIModel != entity.AIModelOpenAI || string(got.Settings) != `{"temperature":0.2}` {
		t.Errorf("unexpected envelope %+v", got)
	}
}

func TestSend_NonSuccessIsUpstreamErrorWithoutRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer srv.Close()

	c := NewConnector(config.HTTPClientConfig{}, config.N8NConfig{}, zaptest.NewLogger(t))
	_, err := c.Send(context.Background(), srv.URL, &entity.WebhookRequest{Message: "m", ConversationID: "c"})

	var upstreamErr *entity.UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("expected *entity.UpstreamError, got %T (%v)", err, err)
	}
	if upstreamErr.StatusCode != 500 || upstreamErr.Body != "boom" {
		t.Errorf("unexpected upstream error %+v", upstreamErr)
	}
	if !errors.Is(err, entity.ErrUpstream) {
		t.Error("expected error to match ErrUpstream")
	}
	if calls != 1 {
		t.Errorf("expected no retry, got %d calls", calls)
	}
}

func TestSend_EventStreamAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: x\n\n"))
	}))
	defer srv.Close()

	c := NewConnector(config.HTTPClientConfig{}, config.N8NConfig{}, zaptest.NewLogger(t))
	resp, err := c.Send(context.Background(), srv.URL, &entity.WebhookRequest{Message: "m", ConversationID: "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if !resp.IsEventStream() {
		t.Errorf("expected event stream, got %q", resp.ContentType)
	}
}
