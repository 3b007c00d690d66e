package conversation

import (
	"context"

	"github.com/webchat/chat-relay/internal/entity"
	convuc "github.com/webchat/chat-relay/internal/usecase/conversation"
)

type ConversationUsecase interface {
	ListConversations(ctx context.Context) ([]*entity.Conversation, error)
	CreateConversation(ctx context.Context, req *entity.CreateConversationRequest) (*entity.Conversation, error)
	GetConversation(ctx context.Context, id string) (*entity.Conversation, error)
	RenameConversation(ctx context.Context, id string, req *entity.UpdateConversationRequest) (*entity.Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	UpdateTitleFromMessage(ctx context.Context, conversationID, message string) (*entity.UpdateTitleResponse, error)
	AddMessage(ctx context.Context, conversationID string, req *entity.AddMessageRequest) (*entity.Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]*entity.Message, error)
	ExportConversation(ctx context.Context, id string, format entity.ResultFormat) (*convuc.ExportResult, error)
}
