package repository

import (
	"context"

	"github.com/webchat/chat-relay/internal/entity"
)

// ConversationRepository persists conversations and their messages.
// Lookups of unknown ids fail with entity.ErrConversationNotFound.
type ConversationRepository interface {
	ListConversations(ctx context.Context) ([]*entity.Conversation, error)
	CreateConversation(ctx context.Context, conv *entity.Conversation) (*entity.Conversation, error)
	GetConversation(ctx context.Context, id string) (*entity.Conversation, error)
	UpdateConversationTitle(ctx context.Context, id, title string) (*entity.Conversation, error)
	AppendMessage(ctx context.Context, conversationID string, msg *entity.Message) error
	DeleteConversation(ctx context.Context, id string) error
}

// DefaultConversationID is the id of the conversation seeded into an empty store.
const DefaultConversationID = "1"

func cloneConversation(c *entity.Conversation) *entity.Conversation {
	out := *c
	if c.Messages != nil {
		out.Messages = make([]*entity.Message, len(c.Messages))
		for i, m := range c.Messages {
			msg := *m
			if m.File != nil {
				file := *m.File
				msg.File = &file
			}
			out.Messages[i] = &msg
		}
	}
	return &out
}
