package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/webchat/chat-relay/internal/entity"
	"github.com/webchat/chat-relay/internal/pkg/validator"
	"github.com/webchat/chat-relay/internal/repository"
	"go.uber.org/zap"
)

// ConversationUsecase implements conversation business logic
type ConversationUsecase struct {
	repo       repository.ConversationRepository
	validator  *validator.Validator
	formatters FormatterFactory
	logger     *zap.Logger
}

// NewUsecase creates a new conversation use case
func NewUsecase(
	repo repository.ConversationRepository,
	validator *validator.Validator,
	formatters FormatterFactory,
	logger *zap.Logger,
) *ConversationUsecase {
	return &ConversationUsecase{
		repo:       repo,
		validator:  validator,
		formatters: formatters,
		logger:     logger,
	}
}

func (uc *ConversationUsecase) ListConversations(ctx context.Context) ([]*entity.Conversation, error) {
	convs, err := uc.repo.ListConversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return convs, nil
}

// CreateConversation starts an empty conversation, titled with the default
// title unless one is given.
func (uc *ConversationUsecase) CreateConversation(ctx context.Context, req *entity.CreateConversationRequest) (*entity.Conversation, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = entity.DefaultConversationTitle
	}

	now := time.Now().UTC()
	conv, err := uc.repo.CreateConversation(ctx, &entity.Conversation{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []*entity.Message{},
	})
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}

	ctxzap.Info(ctx, "conversation created", zap.String("conversation_id", conv.ID))
	return conv, nil
}

func (uc *ConversationUsecase) GetConversation(ctx context.Context, id string) (*entity.Conversation, error) {
	return uc.repo.GetConversation(ctx, id)
}

func (uc *ConversationUsecase) RenameConversation(ctx context.Context, id string, req *entity.UpdateConversationRequest) (*entity.Conversation, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title", entity.ErrMissingField)
	}
	return uc.repo.UpdateConversationTitle(ctx, id, title)
}

func (uc *ConversationUsecase) DeleteConversation(ctx context.Context, id string) error {
	if err := uc.repo.DeleteConversation(ctx, id); err != nil {
		return err
	}
	ctxzap.Info(ctx, "conversation deleted", zap.String("conversation_id", id))
	return nil
}

// UpdateTitleFromMessage replaces a placeholder title with one generated from
// message. Conversations that already have a real title are left untouched.
func (uc *ConversationUsecase) UpdateTitleFromMessage(ctx context.Context, conversationID, message string) (*entity.UpdateTitleResponse, error) {
	if strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("%w: message", entity.ErrMissingField)
	}

	conv, err := uc.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if !entity.IsDefaultTitle(conv.Title) {
		return &entity.UpdateTitleResponse{Success: true, Title: conv.Title, Message: "Title already set"}, nil
	}

	updated, err := uc.repo.UpdateConversationTitle(ctx, conversationID, GenerateTitle(message))
	if err != nil {
		return nil, fmt.Errorf("update title: %w", err)
	}

	ctxzap.Debug(ctx, "conversation title generated", zap.String("title", updated.Title))
	return &entity.UpdateTitleResponse{Success: true, Title: updated.Title}, nil
}

// AddMessage appends a message, defaulting its id, role and timestamp.
func (uc *ConversationUsecase) AddMessage(ctx context.Context, conversationID string, req *entity.AddMessageRequest) (*entity.Message, error) {
	if err := uc.validator.ValidateAddMessage(req); err != nil {
		return nil, err
	}

	msg := &entity.Message{
		ID:        req.ID,
		Role:      req.Role,
		Content:   req.Content,
		CreatedAt: time.Now().UTC(),
		File:      req.File,
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Role == "" {
		msg.Role = entity.RoleUser
	}
	if req.CreatedAt != nil {
		msg.CreatedAt = *req.CreatedAt
	}

	if err := uc.repo.AppendMessage(ctx, conversationID, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (uc *ConversationUsecase) ListMessages(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	conv, err := uc.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.Messages == nil {
		return []*entity.Message{}, nil
	}
	return conv.Messages, nil
}

// ExportResult is a rendered transcript ready to be downloaded.
type ExportResult struct {
	Filename    string
	ContentType string
	Content     []byte
}

func (uc *ConversationUsecase) ExportConversation(ctx context.Context, id string, format entity.ResultFormat) (*ExportResult, error) {
	f, err := uc.formatters.Create(format)
	if err != nil {
		return nil, err
	}

	conv, err := uc.repo.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}

	content, err := f.Format(conv)
	if err != nil {
		return nil, fmt.Errorf("format %s transcript: %w", format, err)
	}

	return &ExportResult{
		Filename:    "conversation-" + conv.ID + f.FileExtension(),
		ContentType: f.ContentType(),
		Content:     content,
	}, nil
}
