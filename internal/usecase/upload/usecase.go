package upload

import (
	"context"
	"fmt"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/webchat/chat-relay/internal/entity"
	"github.com/webchat/chat-relay/internal/pkg/validator"
	"go.uber.org/zap"
)

// FileRoute is the path prefix under which stored uploads are served.
const FileRoute = "/api/chat/uploads/"

// UploadUsecase stores chat attachments and tells the n8n form about them
type UploadUsecase struct {
	storage   FileStorage
	notifier  UploadNotifier
	validator *validator.Validator
	notify    bool
	now       func() time.Time
	logger    *zap.Logger
}

func NewUsecase(
	storage FileStorage,
	notifier UploadNotifier,
	validator *validator.Validator,
	notify bool,
	logger *zap.Logger,
) *UploadUsecase {
	return &UploadUsecase{
		storage:   storage,
		notifier:  notifier,
		validator: validator,
		notify:    notify,
		now:       time.Now,
		logger:    logger,
	}
}

// Upload stores the document as <conversationId>-<unixMillis><ext>. The
// form notification is best-effort: its failure is logged, never returned.
func (uc *UploadUsecase) Upload(ctx context.Context, req *entity.UploadRequest) (*entity.UploadResponse, error) {
	if err := uc.validator.ValidateUpload(req); err != nil {
		return nil, err
	}

	ext := validator.SanitizeExtension(req.File.Filename, req.File.ContentType)
	name := fmt.Sprintf("%s-%d%s", req.ConversationID, uc.now().UnixMilli(), ext)
	if err := validator.ValidateStoredFilename(name); err != nil {
		return nil, fmt.Errorf("%w: conversationId", entity.ErrInvalidFilename)
	}

	if err := uc.storage.SaveFile(ctx, name, req.File.Content); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	ctxzap.Info(ctx, "file uploaded",
		zap.String("stored_as", name),
		zap.String("content_type", req.File.ContentType),
		zap.Int("size", len(req.File.Content)),
	)

	if uc.notify {
		if err := uc.notifier.Notify(ctx, req.ConversationID, req.File); err != nil {
			ctxzap.Warn(ctx, "failed to notify upload form", zap.Error(err))
		}
	}

	return &entity.UploadResponse{
		Message:  "File uploaded successfully",
		FileURL:  FileRoute + name,
		FileName: req.File.Filename,
		FileType: req.File.ContentType,
	}, nil
}

func (uc *UploadUsecase) GetFile(ctx context.Context, name string) (*entity.StoredFile, error) {
	if err := validator.ValidateStoredFilename(name); err != nil {
		return nil, err
	}

	content, err := uc.storage.ReadFile(ctx, name)
	if err != nil {
		return nil, err
	}

	return &entity.StoredFile{
		Name:        name,
		ContentType: validator.ContentTypeByName(name),
		Content:     content,
	}, nil
}
