package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/webchat/chat-relay/internal/config"
	"github.com/webchat/chat-relay/internal/entity"
	"github.com/webchat/chat-relay/internal/pkg/logger"
	"github.com/webchat/chat-relay/internal/pkg/response"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for the form fields around the file part.
const multipartOverhead = 1 << 20

type Handler struct {
	chat    ChatUsecase
	uploads UploadUsecase
	rag     RAGUsecase
	cfg     config.UploadConfig
}

func NewHandler(chat ChatUsecase, uploads UploadUsecase, rag RAGUsecase, cfg config.UploadConfig) *Handler {
	return &Handler{
		chat:    chat,
		uploads: uploads,
		rag:     rag,
		cfg:     cfg,
	}
}

// SendMessage handles POST /api/chat/send
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SendMessage")

	var req entity.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	stream, err := h.chat.Start(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	if err := response.Stream(w, stream.Status, stream.Header, stream.Body); err != nil {
		ctxzap.Debug(ctx, "chat stream interrupted", zap.Error(err))
	}
}

// UploadFile handles POST /api/chat/upload
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "UploadFile")

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(h.cfg.MaxFileSize); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "Invalid form data or file too large", err)
		return
	}

	req := entity.UploadRequest{
		ConversationID: r.FormValue("conversationId"),
	}

	file, err := readFormFile(r, "file")
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		h.respondError(ctx, w, http.StatusBadRequest, "Invalid file", err)
		return
	}
	req.File = file

	res, err := h.uploads.Upload(ctx, &req)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.Success(w, res)
}

// GetUpload handles GET /api/chat/uploads/{filename}
func (h *Handler) GetUpload(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "GetUpload")
	name := chi.URLParam(r, "filename")

	file, err := h.uploads.GetFile(ctx, name)
	if err != nil {
		h.handleUsecaseError(ctx, w, err)
		return
	}

	response.File(w, file.ContentType, fmt.Sprintf("inline; filename=%q", file.Name), file.Content)
}

// AskChatbot handles POST /api/chat/python-rag
func (h *Handler) AskChatbot(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "AskChatbot")

	var req entity.RAGRelayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	answer, err := h.rag.Ask(ctx, &req)
	if err != nil {
		h.handleRAGError(ctx, w, err)
		return
	}

	response.Success(w, answer)
}

// BuildChatbot handles PUT /api/chat/python-rag
func (h *Handler) BuildChatbot(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "BuildChatbot")

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(h.cfg.MaxFileSize); err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "Invalid form data or file too large", err)
		return
	}

	file, err := readFormFile(r, "file")
	if err != nil {
		h.respondError(ctx, w, http.StatusBadRequest, "No file uploaded", err)
		return
	}

	res, err := h.rag.BuildChatbot(ctx, file)
	if err != nil {
		h.handleRAGError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "chatbot built", zap.String("chatbot_id", res.ChatbotID))
	response.Success(w, res)
}

// ChatbotStatus handles GET /api/chat/python-rag/{chatbot_id}/status
func (h *Handler) ChatbotStatus(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ChatbotStatus")

	res, err := h.rag.Status(ctx, chi.URLParam(r, "chatbot_id"))
	if err != nil {
		h.handleRAGError(ctx, w, err)
		return
	}

	response.Success(w, res)
}

func readFormFile(r *http.Request, field string) (entity.FileData, error) {
	f, header, err := r.FormFile(field)
	if err != nil {
		return entity.FileData{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return entity.FileData{}, err
	}

	return entity.FileData{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, nil
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
	case errors.Is(err, entity.ErrValidation),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrInvalidFileType),
		errors.Is(err, entity.ErrFileTooLarge),
		errors.Is(err, entity.ErrInvalidFilename):
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, entity.ErrFileNotFound):
		h.respondError(ctx, w, http.StatusNotFound, "File not found", err)
	case errors.Is(err, entity.ErrConfiguration):
		h.respondError(ctx, w, http.StatusInternalServerError, "Chat backend is not configured", err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "Internal server error", err)
	}
}

func (h *Handler) handleRAGError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidAction), errors.Is(err, entity.ErrMissingField):
		h.respondError(ctx, w, http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, entity.ErrUpstream), errors.Is(err, entity.ErrParse):
		msg := "Failed to get response from Python RAG service: " + strings.TrimSpace(err.Error())
		h.respondError(ctx, w, http.StatusInternalServerError, msg, err)
	default:
		h.respondError(ctx, w, http.StatusInternalServerError, "Internal server error", err)
	}
}
