package auth

import (
	"context"

	"github.com/webchat/chat-relay/internal/entity"
)

type AuthUsecase interface {
	Register(ctx context.Context, req *entity.RegisterRequest) (*entity.User, error)
	Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error)
	Session(ctx context.Context, token string) *entity.SessionResponse
}
