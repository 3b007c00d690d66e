package upload

import (
	"context"

	"github.com/webchat/chat-relay/internal/entity"
)

type UploadNotifier interface {
	Notify(ctx context.Context, conversationID string, file entity.FileData) error
}

type FileStorage interface {
	SaveFile(ctx context.Context, name string, content []byte) error
	ReadFile(ctx context.Context, name string) ([]byte, error)
}
