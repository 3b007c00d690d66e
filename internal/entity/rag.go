package entity

type RAGAction string

const (
	RAGActionAsk   RAGAction = "ask_chatbot"
	RAGActionBuild RAGAction = "build_chatbot"
)

// RAGRelayRequest is the action-tagged envelope of the Python RAG relay.
type RAGRelayRequest struct {
	Action         RAGAction `json:"action"`
	Message        string    `json:"message"`
	ConversationID string    `json:"conversationId,omitempty"`
	ChatbotID      string    `json:"chatbotId,omitempty"`
}

type RAGAskRequest struct {
	Question string `json:"question"`
}

type RAGAskResponse struct {
	Answer string `json:"answer"`
}

type RAGBuildResponse struct {
	ChatbotID string `json:"chatbot_id"`
	Status    string `json:"status,omitempty"`
}

type RAGStatusResponse struct {
	Status string `json:"status"`
}

type FileData struct {
	Filename    string
	ContentType string
	Content     []byte
}

// RAGAnswerResponse is the relay's answer to ask_chatbot, shaped like a
// non-streaming chat backend payload.
type RAGAnswerResponse struct {
	Message string   `json:"message"`
	Sources []Source `json:"sources"`
}
