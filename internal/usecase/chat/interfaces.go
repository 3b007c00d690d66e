package chat

import (
	"context"

	"github.com/webchat/chat-relay/internal/entity"
)

type WebhookConnector interface {
	Send(ctx context.Context, url string, req *entity.WebhookRequest) (*entity.UpstreamResponse, error)
}

// RAGRelay answers python-model messages from the in-process RAG relay.
type RAGRelay interface {
	Relay(ctx context.Context, req *entity.RAGRelayRequest) (*entity.UpstreamResponse, error)
}

type TitleUpdater interface {
	UpdateTitleFromMessage(ctx context.Context, conversationID, message string) (*entity.UpdateTitleResponse, error)
}
