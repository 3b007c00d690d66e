package uploadhook

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/avast/retry-go/v4"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/webchat/chat-relay/internal/config"
	"github.com/webchat/chat-relay/internal/entity"
	"github.com/webchat/chat-relay/internal/integration/common"
	pkgRetry "github.com/webchat/chat-relay/internal/pkg/retry"
	pkghttp "github.com/webchat/chat-relay/pkg/http"
	"go.uber.org/zap"
)

// Connector activates the n8n "upload your file" form for stored documents.
type Connector struct {
	formURL   string
	retry     pkgRetry.RetryConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	httpCfg config.HTTPClientConfig,
	n8nCfg config.N8NConfig,
	retryCfg pkgRetry.RetryConfig,
	logger *zap.Logger,
) *Connector {
	var opts []pkghttp.HttpOpts
	if n8nCfg.AuthValue != "" {
		opts = append(opts, pkghttp.WithHeaderAuth(n8nCfg.AuthHeader, n8nCfg.AuthValue))
	}

	return &Connector{
		formURL:   n8nCfg.UploadFormURL,
		retry:     retryCfg,
		connector: common.NewBaseConnector(httpCfg, logger, opts...),
		logger:    logger,
	}
}

// Notify posts the file with its conversation metadata to the upload form.
// Transient failures are retried according to the upload retry policy.
func (c *Connector) Notify(ctx context.Context, conversationID string, file entity.FileData) error {
	if c.formURL == "" {
		ctxzap.Debug(ctx, "upload form URL not configured, skipping notification")
		return nil
	}

	prepareBody := func(writer *multipart.Writer) error {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Filename))
		header.Set("Content-Type", file.ContentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			return fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return fmt.Errorf("write file content: %w", err)
		}

		fields := [][2]string{
			{"conversationId", conversationID},
			{"fileName", file.Filename},
			{"fileType", file.ContentType},
		}
		for _, f := range fields {
			if err := writer.WriteField(f[0], f[1]); err != nil {
				return fmt.Errorf("write field %s: %w", f[0], err)
			}
		}
		return nil
	}

	err := c.retry.Do(ctx, func() error {
		return c.connector.DoMultipartRequest(ctx, http.MethodPost, "", prepareBody, nil, pkghttp.WithURL(c.formURL))
	}, retry.RetryIf(isTransient))
	if err != nil {
		return common.UpstreamError("upload form", err)
	}

	ctxzap.Info(ctx, "upload form notified", zap.String("filename", file.Filename))
	return nil
}

// isTransient keeps retrying network failures and 5xx answers only.
func isTransient(err error) bool {
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}
