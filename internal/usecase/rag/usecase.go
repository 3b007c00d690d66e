package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/webchat/chat-relay/internal/entity"
	pkgRetry "github.com/webchat/chat-relay/internal/pkg/retry"
	"go.uber.org/zap"
)

const buildStatus = "Chatbot created successfully"

// RAGUsecase fronts the Python RAG service: asking an existing chatbot,
// building one from a document and polling its status.
type RAGUsecase struct {
	connector RAGConnector
	retry     pkgRetry.RetryConfig
	logger    *zap.Logger
}

func NewUsecase(connector RAGConnector, retry pkgRetry.RetryConfig, logger *zap.Logger) *RAGUsecase {
	return &RAGUsecase{
		connector: connector,
		retry:     retry,
		logger:    logger,
	}
}

// Ask handles the action-tagged relay envelope. Only ask_chatbot with a
// chatbot id is served; building goes through BuildChatbot.
func (uc *RAGUsecase) Ask(ctx context.Context, req *entity.RAGRelayRequest) (*entity.RAGAnswerResponse, error) {
	switch {
	case req.Action == entity.RAGActionBuild:
		return nil, fmt.Errorf("%w: build_chatbot needs a document, send it with PUT", entity.ErrInvalidAction)
	case req.Action != entity.RAGActionAsk || strings.TrimSpace(req.ChatbotID) == "":
		return nil, fmt.Errorf("%w: invalid action or missing chatbotId for ask_chatbot", entity.ErrInvalidAction)
	case strings.TrimSpace(req.Message) == "":
		return nil, fmt.Errorf("%w: message", entity.ErrMissingField)
	}

	answer, err := uc.connector.Ask(ctx, req.ChatbotID, req.Message)
	if err != nil {
		return nil, err
	}

	return &entity.RAGAnswerResponse{Message: answer, Sources: []entity.Source{}}, nil
}

// Relay answers a chat message for the python model as a JSON upstream
// response, so the chat relay can tokenize it like any webhook answer.
func (uc *RAGUsecase) Relay(ctx context.Context, req *entity.RAGRelayRequest) (*entity.UpstreamResponse, error) {
	answer, err := uc.Ask(ctx, req)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(answer)
	if err != nil {
		return nil, fmt.Errorf("encode RAG answer: %w", err)
	}

	return &entity.UpstreamResponse{
		ContentType: "application/json",
		Body:        io.NopCloser(bytes.NewReader(body)),
	}, nil
}

func (uc *RAGUsecase) BuildChatbot(ctx context.Context, file entity.FileData) (*entity.RAGBuildResponse, error) {
	if file.Filename == "" || len(file.Content) == 0 {
		return nil, fmt.Errorf("%w: file", entity.ErrMissingField)
	}

	resp, err := uc.connector.BuildChatbot(ctx, file)
	if err != nil {
		return nil, err
	}

	ctxzap.Info(ctx, "chatbot created", zap.String("chatbot_id", resp.ChatbotID))
	return &entity.RAGBuildResponse{ChatbotID: resp.ChatbotID, Status: buildStatus}, nil
}

// Status polls the chatbot status, retrying transient failures.
func (uc *RAGUsecase) Status(ctx context.Context, chatbotID string) (*entity.RAGStatusResponse, error) {
	if strings.TrimSpace(chatbotID) == "" {
		return nil, fmt.Errorf("%w: chatbotId", entity.ErrMissingField)
	}

	var status *entity.RAGStatusResponse
	err := uc.retry.Do(ctx, func() error {
		var err error
		status, err = uc.connector.Status(ctx, chatbotID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}
