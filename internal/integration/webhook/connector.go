package webhook

import (
	"context"
	"net/http"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/webchat/chat-relay/internal/config"
	"github.com/webchat/chat-relay/internal/entity"
	"github.com/webchat/chat-relay/internal/integration/common"
	pkghttp "github.com/webchat/chat-relay/pkg/http"
	"go.uber.org/zap"
)

const acceptAnswer = "application/json, text/event-stream"

// Connector posts chat envelopes to n8n-style webhooks. The target URL comes
// with every call because each AI model has its own webhook.
type Connector struct {
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.HTTPClientConfig,
	n8nCfg config.N8NConfig,
	logger *zap.Logger,
) *Connector {
	opts := []pkghttp.HttpOpts{pkghttp.WithStreaming()}
	if n8nCfg.AuthValue != "" {
		opts = append(opts, pkghttp.WithHeaderAuth(n8nCfg.AuthHeader, n8nCfg.AuthValue))
	}

	return &Connector{
		connector: common.NewBaseConnector(cfg, logger, opts...),
		logger:    logger,
	}
}

// Send performs exactly one POST and hands back the open answer. A non-2xx
// status or a transport failure is returned as *entity.UpstreamError.
func (c *Connector) Send(ctx context.Context, url string, req *entity.WebhookRequest) (*entity.UpstreamResponse, error) {
	ctxzap.Info(ctx, "sending message to webhook", zap.String("url", url))

	resp, err := c.connector.DoStream(ctx, http.MethodPost, "", req,
		pkghttp.WithURL(url),
		pkghttp.WithAccept(acceptAnswer),
	)
	if err != nil {
		ctxzap.Error(ctx, "webhook call failed", zap.Error(err))
		return nil, common.UpstreamError("webhook", err)
	}

	return &entity.UpstreamResponse{
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
	}, nil
}
