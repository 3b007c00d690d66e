package common

import (
	"errors"

	"github.com/webchat/chat-relay/internal/config"
	"github.com/webchat/chat-relay/internal/entity"
	pkgHTTP "github.com/webchat/chat-relay/pkg/http"
	"go.uber.org/zap"
)

func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger, extra ...pkgHTTP.HttpOpts) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	opts := []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithAuthToken(cfg.Token),
	}

	return pkgHTTP.NewConnector(connCfg, append(opts, extra...)...)
}

// UpstreamError converts a connector failure into the domain error the chat
// relay reports to clients.
func UpstreamError(backend string, err error) error {
	if err == nil {
		return nil
	}

	upstreamErr := &entity.UpstreamError{Backend: backend, Err: err}

	var httpErr *pkgHTTP.HTTPError
	if errors.As(err, &httpErr) {
		upstreamErr.StatusCode = httpErr.StatusCode
		upstreamErr.Body = httpErr.Message
	}
	return upstreamErr
}
