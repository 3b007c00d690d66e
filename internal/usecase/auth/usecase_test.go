package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/webchat/chat-relay/internal/config"
	"github.com/webchat/chat-relay/internal/entity"
	"github.com/webchat/chat-relay/internal/pkg/validator"
	"github.com/webchat/chat-relay/internal/repository"
	"go.uber.org/zap/zaptest"
)

func newTestUsecase(t *testing.T) *AuthUsecase {
	t.Helper()
	return NewUsecase(repository.NewUserMemory(), validator.NewValidator(config.UploadConfig{}), "test-secret", time.Hour, zaptest.NewLogger(t))
}

var ana = &entity.RegisterRequest{Name: "Ana", Email: "ana@example.com", Password: "secreto1"}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	uc := newTestUsecase(t)

	user, err := uc.Register(ctx, ana)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID == "" || user.PasswordHash == ana.Password {
		t.Errorf("expected hashed password and id, got %+v", user)
	}

	dup := *ana
	dup.Email = "ANA@example.com"
	if _, err := uc.Register(ctx, &dup); !errors.Is(err, entity.ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
}

func TestLoginAndSession(t *testing.T) {
	ctx := context.Background()
	uc := newTestUsecase(t)
	if _, err := uc.Register(ctx, ana); err != nil {
		t.Fatal(err)
	}

	login, err := uc.Login(ctx, &entity.LoginRequest{Email: ana.Email, Password: ana.Password})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	session := uc.Session(ctx, login.Token)
	if session.Status != entity.SessionAuthenticated || session.User.Email != ana.Email {
		t.Errorf("unexpected session %+v", session)
	}

	if got := uc.Session(ctx, ""); got.Status != entity.SessionUnauthenticated {
		t.Errorf("expected unauthenticated without token, got %s", got.Status)
	}
	if got := uc.Session(ctx, "garbage"); got.Status != entity.SessionUnauthenticated {
		t.Errorf("expected unauthenticated for bad token, got %s", got.Status)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	uc := newTestUsecase(t)
	uc.Register(ctx, ana)

	tests := []entity.LoginRequest{
		{Email: ana.Email, Password: "wrong-password"},
		{Email: "nobody@example.com", Password: ana.Password},
		{},
	}
	for _, req := range tests {
		if _, err := uc.Login(ctx, &req); !errors.Is(err, entity.ErrInvalidCredentials) {
			t.Errorf("Login(%+v): expected ErrInvalidCredentials, got %v", req, err)
		}
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	uc := newTestUsecase(t)
	uc.Register(ctx, ana)

	login, err := uc.Login(ctx, &entity.LoginRequest{Email: ana.Email, Password: ana.Password})
	if err != nil {
		t.Fatal(err)
	}

	uc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := uc.Authenticate(ctx, login.Token); !errors.Is(err, entity.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated for expired token, got %v", err)
	}
}
