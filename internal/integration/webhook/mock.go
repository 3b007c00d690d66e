package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/webchat/chat-relay/internal/entity"
	"go.uber.org/zap"
)

// MockConnector answers every webhook call with a canned JSON payload
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Send(ctx context.Context, url string, req *entity.WebhookRequest) (*entity.UpstreamResponse, error) {
	ctxzap.Info(ctx, "[MOCK] sending message to webhook",
		zap.String("url", url),
		zap.String("ai_model", string(req.AIModel)),
	)

	body, err := json.Marshal(entity.UpstreamPayload{
		Message: fmt.Sprintf("Respuesta simulada para: %s", req.Message),
	})
	if err != nil {
		return nil, err
	}

	return &entity.UpstreamResponse{
		ContentType: "application/json",
		Body:        io.NopCloser(bytes.NewReader(body)),
	}, nil
}
