package chat

import (
	"fmt"

	"github.com/webchat/chat-relay/internal/config"
	"github.com/webchat/chat-relay/internal/entity"
)

type TargetKind int

const (
	TargetWebhook TargetKind = iota
	TargetRAG
)

// Target is the backend resolved for one chat request.
type Target struct {
	Kind  TargetKind
	URL   string
	Model entity.AIModel
}

// Selector maps an AI model to the backend that serves it.
type Selector struct {
	openAIURL  string
	geminiURL  string
	defaultURL string
	ragURL     string
}

func NewSelector(relayCfg config.RelayConfig, n8nCfg config.N8NConfig, ragURL string) *Selector {
	return &Selector{
		openAIURL:  relayCfg.OpenAIWebhookURL,
		geminiURL:  relayCfg.GeminiWebhookURL,
		defaultURL: n8nCfg.DefaultWebhookURL(),
		ragURL:     ragURL,
	}
}

// Resolve applies the first matching rule: python goes to the RAG relay,
// openai and gemini to their own webhooks, anything else to the default
// webhook. Model-specific webhooks never fall back to the default one.
func (s *Selector) Resolve(model entity.AIModel) (Target, error) {
	var target Target
	switch model {
	case entity.AIModelPython:
		target = Target{Kind: TargetRAG, URL: s.ragURL, Model: model}
	case entity.AIModelOpenAI:
		target = Target{Kind: TargetWebhook, URL: s.openAIURL, Model: model}
	case entity.AIModelGemini:
		target = Target{Kind: TargetWebhook, URL: s.geminiURL, Model: model}
	default:
		target = Target{Kind: TargetWebhook, URL: s.defaultURL, Model: entity.AIModelDefault}
	}

	if target.URL == "" {
		return Target{}, fmt.Errorf("%w: no backend URL for model %q", entity.ErrConfiguration, target.Model)
	}
	return target, nil
}
