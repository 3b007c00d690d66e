package chat

import (
	"context"

	"github.com/webchat/chat-relay/internal/entity"
	chatuc "github.com/webchat/chat-relay/internal/usecase/chat"
)

type ChatUsecase interface {
	Start(ctx context.Context, req *entity.ChatRequest) (*chatuc.StreamResponse, error)
}

type UploadUsecase interface {
	Upload(ctx context.Context, req *entity.UploadRequest) (*entity.UploadResponse, error)
	GetFile(ctx context.Context, name string) (*entity.StoredFile, error)
}

type RAGUsecase interface {
	Ask(ctx context.Context, req *entity.RAGRelayRequest) (*entity.RAGAnswerResponse, error)
	BuildChatbot(ctx context.Context, file entity.FileData) (*entity.RAGBuildResponse, error)
	Status(ctx context.Context, chatbotID string) (*entity.RAGStatusResponse, error)
}
