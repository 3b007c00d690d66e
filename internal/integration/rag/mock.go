package rag

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/webchat/chat-relay/internal/entity"
	"go.uber.org/zap"
)

// MockConnector stands in for the Python RAG service when mocks are enabled
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Ask(ctx context.Context, chatbotID, question string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] asking chatbot", zap.String("chatbot_id", chatbotID))
	return fmt.Sprintf("Respuesta simulada del chatbot %s a: %s", chatbotID, question), nil
}

func (m *MockConnector) BuildChatbot(ctx context.Context, file entity.FileData) (*entity.RAGBuildResponse, error) {
	ctxzap.Info(ctx, "[MOCK] building chatbot", zap.String("filename", file.Filename))
	return &entity.RAGBuildResponse{ChatbotID: uuid.NewString()}, nil
}

func (m *MockConnector) Status(ctx context.Context, chatbotID string) (*entity.RAGStatusResponse, error) {
	ctxzap.Info(ctx, "[MOCK] getting chatbot status", zap.String("chatbot_id", chatbotID))
	return &entity.RAGStatusResponse{Status: "Embeddings ready"}, nil
}
