package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/webchat/chat-relay/internal/config"
	"github.com/webchat/chat-relay/internal/entity"
	"github.com/webchat/chat-relay/internal/pkg/logger"
	"go.uber.org/zap"
)

const passthroughBufferSize = 4 * 1024

type state string

const (
	stateInit        state = "init"
	stateInvoking    state = "invoking"
	statePassthrough state = "streaming_passthrough"
	stateTokenizing  state = "tokenizing"
	stateError       state = "error"
	stateCompleting  state = "completing"
	stateClosed      state = "closed"
)

// ChatUsecase relays one chat message to the backend chosen for its model
// and republishes the answer as server-sent events.
type ChatUsecase struct {
	selector     *Selector
	webhook      WebhookConnector
	rag          RAGRelay
	titles       TitleUpdater
	chunkDelay   time.Duration
	errorMessage string
	logger       *zap.Logger
}

// NewUsecase creates a new chat use case
func NewUsecase(
	cfg config.RelayConfig,
	selector *Selector,
	webhook WebhookConnector,
	rag RAGRelay,
	titles TitleUpdater,
	logger *zap.Logger,
) *ChatUsecase {
	return &ChatUsecase{
		selector:     selector,
		webhook:      webhook,
		rag:          rag,
		titles:       titles,
		chunkDelay:   cfg.ChunkDelay,
		errorMessage: cfg.ErrorMessage,
		logger:       logger,
	}
}

// Start validates the request and resolves its backend before anything is
// sent to the client, so both failures can still become HTTP errors. On
// success the upstream call runs in the background under ctx and the events
// are produced into the returned body, which always ends with a complete
// event.
func (uc *ChatUsecase) Start(ctx context.Context, req *entity.ChatRequest) (*StreamResponse, error) {
	if req.Message == "" || req.ConversationID == "" {
		return nil, fmt.Errorf("%w: message and conversationId are required", entity.ErrValidation)
	}

	chatbotID := req.ResolveChatbotID()
	if req.AIModel == entity.AIModelPython && chatbotID == "" {
		return nil, fmt.Errorf("%w: chatbotId is required for the python model", entity.ErrValidation)
	}

	target, err := uc.selector.Resolve(req.AIModel)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithConversation(ctx, req.ConversationID)
	ctx = logger.AddFields(ctx, zap.String("ai_model", string(target.Model)))

	uc.updateTitle(ctx, req)

	pr, pw := io.Pipe()
	go func() {
		defer pw.Close()
		uc.run(ctx, target, req, chatbotID, newEventWriter(pw))
	}()

	return &StreamResponse{
		Status: http.StatusOK,
		Header: sseHeader(),
		Body:   pr,
	}, nil
}

func (uc *ChatUsecase) updateTitle(ctx context.Context, req *entity.ChatRequest) {
	if uc.titles == nil {
		return
	}
	if _, err := uc.titles.UpdateTitleFromMessage(ctx, req.ConversationID, req.Message); err != nil {
		ctxzap.Extract(ctx).Debug("Could not update conversation title", zap.Error(err))
	}
}

func (uc *ChatUsecase) run(ctx context.Context, target Target, req *entity.ChatRequest, chatbotID string, w *eventWriter) {
	log := ctxzap.Extract(ctx)
	start := time.Now()
	current := stateInit

	defer func() {
		log.Info("Chat relay finished",
			zap.String("state", string(current)),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	}()

	current = stateInvoking
	upstream, err := uc.invoke(ctx, target, req, chatbotID)
	if err == nil {
		defer upstream.Body.Close()

		if upstream.IsEventStream() {
			current = statePassthrough
			err = uc.passthrough(upstream.Body, w)
		} else {
			current = stateTokenizing
			err = uc.tokenize(ctx, upstream.Body, w)
		}
	}

	if err != nil {
		current = stateError
		log.Error("Chat relay failed", zap.Error(err))
		w.Send(entity.NewErrorEvent(uc.userMessage(err)))
	}

	current = stateCompleting
	if err := w.Send(entity.NewCompleteEvent()); err != nil {
		log.Debug("Client went away before the stream completed", zap.Error(err))
	}
	current = stateClosed
}

func (uc *ChatUsecase) invoke(ctx context.Context, target Target, req *entity.ChatRequest, chatbotID string) (*entity.UpstreamResponse, error) {
	if target.Kind == TargetRAG {
		return uc.rag.Relay(ctx, &entity.RAGRelayRequest{
			Action:         entity.RAGActionAsk,
			Message:        req.Message,
			ConversationID: req.ConversationID,
			ChatbotID:      chatbotID,
		})
	}

	return uc.webhook.Send(ctx, target.URL, &entity.WebhookRequest{
		Message:        req.Message,
		ConversationID: req.ConversationID,
		Settings:       req.Settings,
		AIModel:        req.AIModel,
	})
}

// passthrough forwards the upstream event stream byte for byte.
func (uc *ChatUsecase) passthrough(body io.Reader, w *eventWriter) error {
	buf := make([]byte, passthroughBufferSize)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			if werr := w.Raw(buf[:n]); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return &entity.UpstreamError{Backend: "event stream", Err: err}
		}
	}
}

func (uc *ChatUsecase) tokenize(ctx context.Context, body io.Reader, w *eventWriter) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return &entity.UpstreamError{Backend: "webhook", Err: err}
	}

	var payload entity.UpstreamPayload
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			ctxzap.Extract(ctx).Warn("Upstream answer is not a JSON object, relaying an empty message",
				zap.Error(fmt.Errorf("%w: %w", entity.ErrParse, err)),
				zap.Int("bytes", len(raw)),
			)
			payload = entity.UpstreamPayload{}
		}
	}

	for i, content := range accumulate(Tokenize(payload.Text())) {
		if i > 0 {
			if err := uc.pause(ctx); err != nil {
				return err
			}
		}
		if err := w.Send(entity.NewMessageEvent(content)); err != nil {
			return err
		}
	}

	if payload.HasSources() {
		return w.Send(entity.NewSourcesEvent(payload.Sources))
	}
	return nil
}

func (uc *ChatUsecase) pause(ctx context.Context) error {
	if uc.chunkDelay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(uc.chunkDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (uc *ChatUsecase) userMessage(err error) string {
	var upstreamErr *entity.UpstreamError
	if errors.As(err, &upstreamErr) && upstreamErr.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d)", uc.errorMessage, upstreamErr.StatusCode)
	}
	return uc.errorMessage
}
