package uploadhook

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/webchat/chat-relay/internal/entity"
	"go.uber.org/zap"
)

type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Notify(ctx context.Context, conversationID string, file entity.FileData) error {
	ctxzap.Info(ctx, "[MOCK] notifying upload form",
		zap.String("conversation_id", conversationID),
		zap.String("filename", file.Filename),
	)
	return nil
}
