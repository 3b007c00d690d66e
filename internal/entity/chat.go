package entity

import (
	"encoding/json"
	"io"
	"mime"
	"strings"
)

// AIModel selects the upstream backend that answers a chat message.
type AIModel string

const (
	AIModelDefault AIModel = "default"
	AIModelOpenAI  AIModel = "openai"
	AIModelGemini  AIModel = "gemini"
	AIModelPython  AIModel = "python"
)

// ChatRequest is the body of POST /api/chat/send.
type ChatRequest struct {
	Message        string          `json:"message"`
	ConversationID string          `json:"conversationId"`
	Settings       json.RawMessage `json:"settings,omitempty"`
	AIModel        AIModel         `json:"aiModel,omitempty"`
	ChatbotID      string          `json:"chatbotId,omitempty"`
}

// ResolveChatbotID returns the explicit chatbotId or, failing that, the
// chatbotId carried inside settings.
func (r *ChatRequest) ResolveChatbotID() string {
	if r.ChatbotID != "" {
		return r.ChatbotID
	}
	if len(r.Settings) == 0 {
		return ""
	}

	var s struct {
		ChatbotID string `json:"chatbotId"`
	}
	if err := json.Unmarshal(r.Settings, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s.ChatbotID)
}

// WebhookRequest is the envelope posted to n8n-style webhooks.
type WebhookRequest struct {
	Message        string          `json:"message"`
	ConversationID string          `json:"conversationId"`
	Settings       json.RawMessage `json:"settings,omitempty"`
	AIModel        AIModel         `json:"aiModel,omitempty"`
}

// Source is a citation attached to an assistant answer.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// UpstreamPayload is the single-object answer of a non-streaming backend.
// Sources stays raw so it can be relayed verbatim.
type UpstreamPayload struct {
	Message string          `json:"message,omitempty"`
	Output  string          `json:"output,omitempty"`
	Sources json.RawMessage `json:"sources,omitempty"`
}

// Text returns message, falling back to output.
func (p *UpstreamPayload) Text() string {
	if p.Message != "" {
		return p.Message
	}
	return p.Output
}

// HasSources reports whether sources is a non-empty JSON array.
func (p *UpstreamPayload) HasSources() bool {
	if len(p.Sources) == 0 {
		return false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(p.Sources, &items); err != nil {
		return false
	}
	return len(items) > 0
}

// UpstreamResponse is the undecoded answer of the backend that served a chat
// message. The receiver owns Body.
type UpstreamResponse struct {
	ContentType string
	Body        io.ReadCloser
}

// IsEventStream reports whether the backend answered with server-sent events.
func (r *UpstreamResponse) IsEventStream() bool {
	mediaType, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(r.ContentType), "text/event-stream")
	}
	return mediaType == "text/event-stream"
}
