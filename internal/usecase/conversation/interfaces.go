package conversation

import (
	"github.com/webchat/chat-relay/internal/entity"
	"github.com/webchat/chat-relay/internal/pkg/formatter"
)

type FormatterFactory interface {
	Create(format entity.ResultFormat) (formatter.Formatter, error)
}
