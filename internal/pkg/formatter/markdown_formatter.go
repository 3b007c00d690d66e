package formatter

import (
	"bytes"
	"fmt"

	"github.com/webchat/chat-relay/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(conv *entity.Conversation) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n", conv.Title)

	for _, msg := range conv.Messages {
		fmt.Fprintf(&buf, "\n### %s\n\n%s\n", messageHeading(msg), messageBody(msg))
	}
	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
