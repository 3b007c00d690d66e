package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/webchat/chat-relay/internal/entity"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiter_RejectsAfterLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	h := rl.Middleware(okHandler)

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("request %d: expected %d, got %d", i, want[i], codes[i])
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("other client should not be limited, got %d", rec.Code)
	}
}

func TestRateLimiter_CountsPerHostNotPerPort(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	h := rl.Middleware(okHandler)

	for i, addr := range []string{"10.0.0.1:1000", "10.0.0.1:2000"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if i == 1 && rec.Code != http.StatusTooManyRequests {
			t.Errorf("expected 429 for the second connection, got %d", rec.Code)
		}
	}
}

type fakeAuth struct{}

func (fakeAuth) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &entity.User{ID: "u1"}, nil
}

func TestRequireAuth(t *testing.T) {
	var seen *entity.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		required bool
		header   string
		status   int
	}{
		{"not required", false, "", http.StatusOK},
		{"missing header", true, "", http.StatusUnauthorized},
		{"wrong scheme", true, "Basic good", http.StatusUnauthorized},
		{"bad token", true, "Bearer nope", http.StatusUnauthorized},
		{"good token", true, "Bearer good", http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			RequireAuth(fakeAuth{}, tc.required)(next).ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if tc.name == "good token" && (seen == nil || seen.ID != "u1") {
				t.Errorf("expected user in context, got %+v", seen)
			}
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS("https://app.example")(okHandler)

	tests := []struct {
		name   string
		origin string
		allow  string
	}{
		{"allowed origin", "https://app.example", "https://app.example"},
		{"foreign origin", "https://evil.example", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/api/chat/send", nil)
			req.Header.Set("Origin", tc.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("expected 200, got %d", rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.allow {
				t.Errorf("expected origin header %q, got %q", tc.allow, got)
			}
		})
	}
}

func TestCORS_ExposesContentDisposition(t *testing.T) {
	h := CORS("*")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/1/export", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Expose-Headers"); got != "Content-Disposition" {
		t.Errorf("expected exposed Content-Disposition, got %q", got)
	}
}
