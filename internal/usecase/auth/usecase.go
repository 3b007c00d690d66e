package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/webchat/chat-relay/internal/entity"
	"github.com/webchat/chat-relay/internal/pkg/validator"
	"github.com/webchat/chat-relay/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost = 12
	issuer     = "chat-relay"
)

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthUsecase is the credentials provider: registration, login and session
// lookup backed by HS256 tokens.
type AuthUsecase struct {
	users     repository.UserRepository
	validator *validator.Validator
	secret    []byte
	tokenTTL  time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func NewUsecase(
	users repository.UserRepository,
	validator *validator.Validator,
	secret string,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:     users,
		validator: validator,
		secret:    []byte(secret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
		logger:    logger,
	}
}

func (uc *AuthUsecase) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.User, error) {
	if err := uc.validator.ValidateRegister(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    uc.now().UTC(),
	}
	if err := uc.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "user registered", zap.String("user_id", user.ID))
	return user, nil
}

func (uc *AuthUsecase) Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, entity.ErrInvalidCredentials
	}

	user, err := uc.users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, entity.ErrUserNotFound) {
		return nil, entity.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, entity.ErrInvalidCredentials
	}

	token, expiresAt, err := uc.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &entity.LoginResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (uc *AuthUsecase) issueToken(user *entity.User) (string, time.Time, error) {
	now := uc.now()
	expiresAt := now.Add(uc.tokenTTL)

	claims := tokenClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Authenticate verifies a bearer token and returns the user it belongs to.
func (uc *AuthUsecase) Authenticate(ctx context.Context, token string) (*entity.User, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return uc.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(uc.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrUnauthenticated, err)
	}

	user, err := uc.users.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrUnauthenticated, err)
	}
	return user, nil
}

// Session reports the session status for an optional bearer token. A bad or
// missing token is an unauthenticated session, not an error.
func (uc *AuthUsecase) Session(ctx context.Context, token string) *entity.SessionResponse {
	if token == "" {
		return &entity.SessionResponse{Status: entity.SessionUnauthenticated}
	}

	user, err := uc.Authenticate(ctx, token)
	if err != nil {
		ctxzap.Debug(ctx, "session token rejected", zap.Error(err))
		return &entity.SessionResponse{Status: entity.SessionUnauthenticated}
	}
	return &entity.SessionResponse{Status: entity.SessionAuthenticated, User: user}
}
