package entity

import "time"

const (
	DefaultConversationTitle = "Nueva conversación"
	ExampleConversationTitle = "Conversación de ejemplo"
)

// IsDefaultTitle reports whether a conversation still carries a placeholder
// title that the first user message may replace.
func IsDefaultTitle(title string) bool {
	return title == DefaultConversationTitle || title == ExampleConversationTitle
}

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

func (r MessageRole) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

type Conversation struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Messages  []*Message `json:"messages,omitempty"`
}

type Message struct {
	ID        string       `json:"id"`
	Role      MessageRole  `json:"role"`
	Content   string       `json:"content"`
	CreatedAt time.Time    `json:"createdAt"`
	File      *MessageFile `json:"file,omitempty"`
}

type MessageFile struct {
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

type CreateConversationRequest struct {
	Title string `json:"title"`
}

type UpdateConversationRequest struct {
	Title string `json:"title"`
}

type UpdateTitleRequest struct {
	Message string `json:"message"`
}

type UpdateTitleResponse struct {
	Success bool   `json:"success"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}

type AddMessageRequest struct {
	ID        string       `json:"id,omitempty"`
	Role      MessageRole  `json:"role,omitempty"`
	Content   string       `json:"content"`
	CreatedAt *time.Time   `json:"createdAt,omitempty"`
	File      *MessageFile `json:"file,omitempty"`
}

type AddMessageResponse struct {
	Success bool     `json:"success"`
	Message *Message `json:"message"`
}
