package entity

import "encoding/json"

// RelayEventType tags the variants streamed to the browser.
type RelayEventType string

const (
	RelayEventMessage  RelayEventType = "message"
	RelayEventSources  RelayEventType = "sources"
	RelayEventError    RelayEventType = "error"
	RelayEventComplete RelayEventType = "complete"
)

// RelayEvent is one SSE frame payload: {"type": ..., "data": ...}.
type RelayEvent struct {
	Type RelayEventType `json:"type"`
	Data any            `json:"data,omitempty"`
}

type RelayMessageData struct {
	Content string `json:"content"`
}

type RelaySourcesData struct {
	Sources json.RawMessage `json:"sources"`
}

type RelayErrorData struct {
	Message string `json:"message"`
}

func NewMessageEvent(content string) RelayEvent {
	return RelayEvent{Type: RelayEventMessage, Data: RelayMessageData{Content: content}}
}

func NewSourcesEvent(sources json.RawMessage) RelayEvent {
	return RelayEvent{Type: RelayEventSources, Data: RelaySourcesData{Sources: sources}}
}

func NewErrorEvent(message string) RelayEvent {
	return RelayEvent{Type: RelayEventError, Data: RelayErrorData{Message: message}}
}

func NewCompleteEvent() RelayEvent {
	return RelayEvent{Type: RelayEventComplete}
}
