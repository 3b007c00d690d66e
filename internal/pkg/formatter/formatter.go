package formatter

import (
	"fmt"
	"strings"

	"github.com/webchat/chat-relay/internal/entity"
)

const timeLayout = "2006-01-02 15:04"

// Formatter renders a conversation transcript into a downloadable document.
type Formatter interface {
	Format(conv *entity.Conversation) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", entity.ErrInvalidFormat, format)
	}
}

func roleLabel(role entity.MessageRole) string {
	if role == entity.RoleUser {
		return "Usuario"
	}
	return "Asistente"
}

// messageHeading is the "<role> · <time>" line shown above every message.
func messageHeading(msg *entity.Message) string {
	return fmt.Sprintf("%s · %s", roleLabel(msg.Role), msg.CreatedAt.Format(timeLayout))
}

// messageBody returns the message content followed by an attachment line when
// a file was sent with it.
func messageBody(msg *entity.Message) string {
	body := strings.TrimSpace(msg.Content)
	if msg.File != nil {
		body += fmt.Sprintf("\n[%s: %s]", msg.File.Type, msg.File.Name)
	}
	return body
}
