package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/webchat/chat-relay/internal/api/middleware"
	"github.com/webchat/chat-relay/internal/entity"
	"github.com/webchat/chat-relay/internal/pkg/logger"
	"github.com/webchat/chat-relay/internal/pkg/response"
	"go.uber.org/zap"
)

type Handler struct {
	usecase AuthUsecase
}

func NewHandler(usecase AuthUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// Register handles POST /api/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Register")

	var req entity.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.usecase.Register(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, &entity.RegisterResponse{
		Message: "User registered successfully",
		User:    user,
	})
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Login")

	var req entity.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := h.usecase.Login(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, res)
}

// Session handles GET /api/auth/session
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Session")
	response.Success(w, h.usecase.Session(ctx, middleware.BearerToken(r)))
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	ctxzap.Warn(ctx, message, zap.Error(err))
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrUserExists):
		h.respondError(ctx, w, http.StatusBadRequest, "User already exists", err)
	case errors.Is(err, entity.ErrMissingField), errors.Is(err, entity.ErrInvalidFormat):
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, entity.ErrInvalidCredentials):
		h.respondError(ctx, w, http.StatusUnauthorized, "Invalid email or password", err)
	default:
		ctxzap.Error(ctx, "auth request failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}
