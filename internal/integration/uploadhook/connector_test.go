package uploadhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/webchat/chat-relay/internal/config"
	"github.com/webchat/chat-relay/internal/entity"
	pkgRetry "github.com/webchat/chat-relay/internal/pkg/retry"
	"go.uber.org/zap/zaptest"
)

var testFile = entity.FileData{Filename: "informe.pdf", ContentType: "application/pdf", Content: []byte("%PDF-1.4")}

func newTestConnector(t *testing.T, formURL string) *Connector {
	t.Helper()
	retryCfg := pkgRetry.RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: time.Millisecond}
	return NewConnector(config.HTTPClientConfig{}, config.N8NConfig{UploadFormURL: formURL}, retryCfg, zaptest.NewLogger(t))
}

func TestNotify_SendsFileAndMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("expected file part: %v", err)
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)

		if header.Filename != "informe.pdf" || header.Header.Get("Content-Type") != "application/pdf" || string(content) != "%PDF-1.4" {
			t.Errorf("unexpected file part %s %s %q", header.Filename, header.Header.Get("Content-Type"), content)
		}
		if r.FormValue("conversationId") != "c1" || r.FormValue("fileName") != "informe.pdf" || r.FormValue("fileType") != "application/pdf" {
			t.Errorf("unexpected metadata %v", r.MultipartForm.Value)
		}
	}))
	defer srv.Close()

	if err := newTestConnector(t, srv.URL).Notify(context.Background(), "c1", testFile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNotify_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	if err := newTestConnector(t, srv.URL).Notify(context.Background(), "c1", testFile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestNotify_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if err := newTestConnector(t, srv.URL).Notify(context.Background(), "c1", testFile); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single attempt, got %d", calls.Load())
	}
}

func TestNotify_SkipsWithoutFormURL(t *testing.T) {
	if err := newTestConnector(t, "").Notify(context.Background(), "c1", testFile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
