package builder

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/webchat/chat-relay/internal/api"
	authapi "github.com/webchat/chat-relay/internal/api/auth"
	chatapi "github.com/webchat/chat-relay/internal/api/chat"
	conversationapi "github.com/webchat/chat-relay/internal/api/conversation"
	"github.com/webchat/chat-relay/internal/api/middleware"
	"github.com/webchat/chat-relay/internal/config"
	"github.com/webchat/chat-relay/internal/integration/rag"
	"github.com/webchat/chat-relay/internal/integration/uploadhook"
	"github.com/webchat/chat-relay/internal/integration/webhook"
	"github.com/webchat/chat-relay/internal/pkg/formatter"
	"github.com/webchat/chat-relay/internal/pkg/validator"
	"github.com/webchat/chat-relay/internal/repository"
	"github.com/webchat/chat-relay/internal/usecase/auth"
	"github.com/webchat/chat-relay/internal/usecase/chat"
	"github.com/webchat/chat-relay/internal/usecase/conversation"
	ragusecase "github.com/webchat/chat-relay/internal/usecase/rag"
	"github.com/webchat/chat-relay/internal/usecase/upload"
	"go.uber.org/zap"
)

func Build() (*App, error) {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	logger.Info("Building application",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.String("store_driver", cfg.StoreCfg.Driver),
	)

	// Initialize repositories
	conversationRepo, db, err := setupConversationStore(ctx, cfg.StoreCfg, logger)
	if err != nil {
		return nil, err
	}

	uploadStorage, err := repository.NewUploadDisk(cfg.UploadCfg.Dir)
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, fmt.Errorf("setup upload storage: %w", err)
	}

	userRepo := repository.NewUserMemory()
	logger.Info("Repositories initialized")

	// Initialize external service connectors (with mock support)
	var webhookConnector chat.WebhookConnector
	var ragConnector ragusecase.RAGConnector
	var uploadNotifier upload.UploadNotifier

	if cfg.EnableMocks {
		logger.Info("Using mock connectors for external services")
		webhookConnector = webhook.NewMockConnector(logger)
		ragConnector = rag.NewMockConnector(logger)
		uploadNotifier = uploadhook.NewMockConnector(logger)
	} else {
		logger.Info("Using real connectors for external services")
		webhookConnector = webhook.NewConnector(cfg.WebhookHTTP, cfg.N8NCfg, logger)
		ragConnector = rag.NewConnector(cfg.RAGCfg, logger)
		uploadNotifier = uploadhook.NewConnector(cfg.WebhookHTTP, cfg.N8NCfg, cfg.UploadCfg.Retry, logger)
	}

	if cfg.N8NCfg.DefaultWebhookURL() == "" {
		logger.Warn("N8N_BASE_URL or N8N_WEBHOOK_PATH is not set, default model requests will fail")
	}

	requestValidator := validator.NewValidator(cfg.UploadCfg)

	// Initialize use cases
	conversationUC := conversation.NewUsecase(conversationRepo, requestValidator, formatter.NewFactory(), logger)
	ragUC := ragusecase.NewUsecase(ragConnector, cfg.RAGCfg.Retry, logger)
	uploadUC := upload.NewUsecase(uploadStorage, uploadNotifier, requestValidator, cfg.UploadCfg.Notify, logger)
	authUC := auth.NewUsecase(userRepo, requestValidator, jwtSecret(cfg.AuthCfg, logger), cfg.AuthCfg.TokenTTL, logger)

	selector := chat.NewSelector(cfg.RelayCfg, cfg.N8NCfg, cfg.RAGCfg.Url)
	chatUC := chat.NewUsecase(cfg.RelayCfg, selector, webhookConnector, ragUC, conversationUC, logger)
	logger.Info("Use cases initialized")

	// Setup router
	router := api.SetupRouter(
		api.Handlers{
			Chat:         chatapi.NewHandler(chatUC, uploadUC, ragUC, cfg.UploadCfg),
			Conversation: conversationapi.NewHandler(conversationUC),
			Auth:         authapi.NewHandler(authUC),
		},
		api.RouterOptions{
			AllowedOrigin: cfg.CORSAllowedOrigin,
			RateLimiter:   middleware.NewRateLimiter(cfg.RateLimitCfg.Requests, cfg.RateLimitCfg.Window),
			Authenticator: authUC,
			AuthRequired:  cfg.AuthCfg.Required,
		},
		logger,
	)
	logger.Info("HTTP router configured")

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("Application built successfully",
		zap.String("environment", cfg.Environment),
	)

	return &App{
		server: server,
		db:     db,
		logger: logger,
	}, nil
}

// jwtSecret returns the configured signing secret, or a random one that lives
// as long as the process when auth is optional and none is set.
func jwtSecret(cfg config.AuthConfig, logger *zap.Logger) string {
	if cfg.JWTSecret != "" {
		return cfg.JWTSecret
	}

	buf := make([]byte, 32)
	rand.Read(buf)
	logger.Warn("AUTH_JWT_SECRET is not set, issued tokens will not survive a restart")
	return hex.EncodeToString(buf)
}
