package rag

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/webchat/chat-relay/internal/config"
	"github.com/webchat/chat-relay/internal/entity"
	"github.com/webchat/chat-relay/internal/integration/common"
	pkghttp "github.com/webchat/chat-relay/pkg/http"
	"go.uber.org/zap"
)

const backendName = "python RAG service"

type Connector struct {
	config    config.RAGConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.RAGConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

func (c *Connector) chatbotEndpoint(template, chatbotID string) string {
	return strings.Replace(template, "{chatbot_id}", url.PathEscape(chatbotID), 1)
}

// Ask sends a question to an existing chatbot
// POST {ask_endpoint} with {chatbot_id} substituted
func (c *Connector) Ask(ctx context.Context, chatbotID, question string) (string, error) {
	ctxzap.Info(ctx, "asking chatbot in RAG service", zap.String("chatbot_id", chatbotID))

	var resp entity.RAGAskResponse
	endpoint := c.chatbotEndpoint(c.config.AskEndpoint, chatbotID)
	err := c.connector.DoRequest(ctx, http.MethodPost, endpoint, &entity.RAGAskRequest{Question: question}, &resp)
	if err != nil {
		ctxzap.Error(ctx, "failed to ask chatbot", zap.Error(err))
		return "", common.UpstreamError(backendName, err)
	}

	ctxzap.Debug(ctx, "chatbot answered", zap.Int("answer_length", len(resp.Answer)))
	return resp.Answer, nil
}

// BuildChatbot uploads a document and creates a chatbot over its embeddings
// POST {build_endpoint} with multipart/form-data
func (c *Connector) BuildChatbot(ctx context.Context, file entity.FileData) (*entity.RAGBuildResponse, error) {
	ctxzap.Info(ctx, "building chatbot in RAG service",
		zap.String("filename", file.Filename),
		zap.Int("size", len(file.Content)),
	)

	prepareBody := func(writer *multipart.Writer) error {
		part, err := writer.CreateFormFile("file", file.Filename)
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return fmt.Errorf("write file content: %w", err)
		}
		return nil
	}

	var resp entity.RAGBuildResponse
	err := c.connector.DoMultipartRequest(ctx, http.MethodPost, c.config.BuildEndpoint, prepareBody, &resp)
	if err != nil {
		ctxzap.Error(ctx, "failed to build chatbot", zap.Error(err))
		return nil, common.UpstreamError(backendName, err)
	}
	if resp.ChatbotID == "" {
		return nil, fmt.Errorf("%w: build response without chatbot_id", entity.ErrParse)
	}

	ctxzap.Info(ctx, "chatbot built successfully", zap.String("chatbot_id", resp.ChatbotID))
	return &resp, nil
}

// Status reports the embedding status of a chatbot
// GET {status_endpoint} with {chatbot_id} substituted
func (c *Connector) Status(ctx context.Context, chatbotID string) (*entity.RAGStatusResponse, error) {
	var resp entity.RAGStatusResponse
	endpoint := c.chatbotEndpoint(c.config.StatusEndpoint, chatbotID)
	if err := c.connector.DoRequest(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, common.UpstreamError(backendName, err)
	}
	return &resp, nil
}
