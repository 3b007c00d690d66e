package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/webchat/chat-relay/internal/entity"
	"github.com/webchat/chat-relay/internal/pkg/logger"
	"github.com/webchat/chat-relay/internal/pkg/response"
	"go.uber.org/zap"
)

type Handler struct {
	usecase ConversationUsecase
}

func NewHandler(usecase ConversationUsecase) *Handler {
	return &Handler{usecase: usecase}
}

// ListConversations handles GET /api/conversations
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ListConversations")

	convs, err := h.usecase.ListConversations(ctx)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Debug(ctx, "conversations listed", zap.Int("count", len(convs)))
	response.Success(w, convs)
}

// CreateConversation handles POST /api/conversations. The body is optional.
func (h *Handler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateConversation")

	var req entity.CreateConversationRequest
	if err := decodeOptional(r, &req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	conv, err := h.usecase.CreateConversation(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Created(w, conv)
}

// GetConversation handles GET /api/conversations/{conversation_id}
func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	ctx := h.conversationContext(r, "GetConversation")

	conv, err := h.usecase.GetConversation(ctx, chi.URLParam(r, "conversation_id"))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, conv)
}

// RenameConversation handles PUT /api/conversations/{conversation_id}
func (h *Handler) RenameConversation(w http.ResponseWriter, r *http.Request) {
	ctx := h.conversationContext(r, "RenameConversation")

	var req entity.UpdateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	conv, err := h.usecase.RenameConversation(ctx, chi.URLParam(r, "conversation_id"), &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, conv)
}

// DeleteConversation handles DELETE /api/conversations/{conversation_id}
func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	ctx := h.conversationContext(r, "DeleteConversation")

	if err := h.usecase.DeleteConversation(ctx, chi.URLParam(r, "conversation_id")); err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, map[string]bool{"success": true})
}

// UpdateTitle handles POST /api/conversations/{conversation_id}/update-title
func (h *Handler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	ctx := h.conversationContext(r, "UpdateTitle")

	var req entity.UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := h.usecase.UpdateTitleFromMessage(ctx, chi.URLParam(r, "conversation_id"), req.Message)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, res)
}

// ListMessages handles GET /api/conversations/{conversation_id}/messages
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	ctx := h.conversationContext(r, "ListMessages")

	msgs, err := h.usecase.ListMessages(ctx, chi.URLParam(r, "conversation_id"))
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, msgs)
}

// AddMessage handles POST /api/conversations/{conversation_id}/messages
func (h *Handler) AddMessage(w http.ResponseWriter, r *http.Request) {
	ctx := h.conversationContext(r, "AddMessage")

	var req entity.AddMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	msg, err := h.usecase.AddMessage(ctx, chi.URLParam(r, "conversation_id"), &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, &entity.AddMessageResponse{Success: true, Message: msg})
}

// ExportConversation handles GET /api/conversations/{conversation_id}/export
func (h *Handler) ExportConversation(w http.ResponseWriter, r *http.Request) {
	ctx := h.conversationContext(r, "ExportConversation")

	format := entity.ResultFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = entity.FormatMarkdown
	}

	res, err := h.usecase.ExportConversation(ctx, chi.URLParam(r, "conversation_id"), format)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "conversation exported",
		zap.String("format", string(format)),
		zap.Int("bytes", len(res.Content)),
	)
	response.File(w, res.ContentType, fmt.Sprintf("attachment; filename=%q", res.Filename), res.Content)
}

func (h *Handler) conversationContext(r *http.Request, action string) context.Context {
	ctx := logger.WithAction(r.Context(), action)
	return logger.WithConversation(ctx, chi.URLParam(r, "conversation_id"))
}

// decodeOptional decodes a JSON body, treating an empty one as zero values.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (h *Handler) respondError(ctx context.Context, w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		ctxzap.Error(ctx, message, zap.Error(err))
	} else {
		ctxzap.Error(ctx, message)
	}
	response.Error(w, status, message)
}

func (h *Handler) handleUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrConversationNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "Conversation not found", err)
	case errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidFormat),
		errors.Is(err, entity.ErrValidation):
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "Internal server error", err)
	}
}
