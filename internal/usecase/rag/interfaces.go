package rag

import (
	"context"

	"github.com/webchat/chat-relay/internal/entity"
)

type RAGConnector interface {
	Ask(ctx context.Context, chatbotID, question string) (string, error)
	BuildChatbot(ctx context.Context, file entity.FileData) (*entity.RAGBuildResponse, error)
	Status(ctx context.Context, chatbotID string) (*entity.RAGStatusResponse, error)
}
