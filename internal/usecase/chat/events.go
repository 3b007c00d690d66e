package chat

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/webchat/chat-relay/internal/entity"
)

// StreamResponse describes the HTTP answer of a relayed chat message. The
// caller must copy Body to the client and close it.
type StreamResponse struct {
	Status int
	Header http.Header
	Body   io.ReadCloser
}

func sseHeader() http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	return h
}

// eventWriter frames relay events as "data: <json>\n\n". After the first
// failed write every call returns that error without writing.
type eventWriter struct {
	w   io.Writer
	err error
}

func newEventWriter(w io.Writer) *eventWriter {
	return &eventWriter{w: w}
}

func (ew *eventWriter) Send(ev entity.RelayEvent) error {
	if ew.err != nil {
		return ew.err
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}

	frame := make([]byte, 0, len(payload)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, payload...)
	frame = append(frame, "\n\n"...)
	return ew.Raw(frame)
}

// Raw forwards bytes that are already framed.
func (ew *eventWriter) Raw(p []byte) error {
	if ew.err != nil {
		return ew.err
	}
	_, ew.err = ew.w.Write(p)
	return ew.err
}
