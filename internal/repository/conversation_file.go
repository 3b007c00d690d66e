package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/webchat/chat-relay/internal/entity"
	"go.uber.org/zap"
)

var _ ConversationRepository = &ConversationFile{}

// ConversationFile keeps every conversation in memory and rewrites the whole
// JSON file after each mutation. Newest conversations come first.
type ConversationFile struct {
	path   string
	mu     sync.RWMutex
	data   []*entity.Conversation
	logger *zap.Logger
}

// OpenConversationFile loads path. A missing or unreadable file yields a store
// holding one default conversation; the file is only written on the first
// mutation.
func OpenConversationFile(path string, logger *zap.Logger) *ConversationFile {
	s := &ConversationFile{path: path, logger: logger}

	data, err := s.load()
	if err != nil {
		logger.Warn("Conversation file not loaded, starting with the default conversation",
			zap.String("path", path),
			zap.Error(err),
		)
		now := time.Now().UTC()
		data = []*entity.Conversation{{
			ID:        DefaultConversationID,
			Title:     entity.DefaultConversationTitle,
			CreatedAt: now,
			UpdatedAt: now,
		}}
	}

	s.data = data
	logger.Info("Conversation file opened", zap.String("path", path), zap.Int("conversations", len(data)))
	return s
}

func (s *ConversationFile) load() ([]*entity.Conversation, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	var data []*entity.Conversation
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return data, nil
}

// flush must be called with the write lock held.
func (s *ConversationFile) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode conversations: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write conversations: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *ConversationFile) indexOf(id string) int {
	for i, c := range s.data {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (s *ConversationFile) ListConversations(ctx context.Context) ([]*entity.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entity.Conversation, len(s.data))
	for i, c := range s.data {
		out[i] = cloneConversation(c)
	}
	return out, nil
}

func (s *ConversationFile) CreateConversation(ctx context.Context, conv *entity.Conversation) (*entity.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(conv.ID) >= 0 {
		return nil, fmt.Errorf("conversation %s already exists", conv.ID)
	}

	stored := cloneConversation(conv)
	s.data = append([]*entity.Conversation{stored}, s.data...)
	if err := s.flush(); err != nil {
		s.data = s.data[1:]
		return nil, err
	}
	return cloneConversation(stored), nil
}

func (s *ConversationFile) GetConversation(ctx context.Context, id string) (*entity.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, entity.ErrConversationNotFound
	}
	return cloneConversation(s.data[i]), nil
}

func (s *ConversationFile) UpdateConversationTitle(ctx context.Context, id, title string) (*entity.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, entity.ErrConversationNotFound
	}

	prev := s.data[i]
	updated := cloneConversation(prev)
	updated.Title = title
	updated.UpdatedAt = time.Now().UTC()

	s.data[i] = updated
	if err := s.flush(); err != nil {
		s.data[i] = prev
		return nil, err
	}
	return cloneConversation(updated), nil
}

func (s *ConversationFile) AppendMessage(ctx context.Context, conversationID string, msg *entity.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(conversationID)
	if i < 0 {
		return entity.ErrConversationNotFound
	}

	prev := s.data[i]
	updated := cloneConversation(prev)
	stored := *msg
	updated.Messages = append(updated.Messages, &stored)
	updated.UpdatedAt = time.Now().UTC()

	s.data[i] = updated
	if err := s.flush(); err != nil {
		s.data[i] = prev
		return err
	}
	return nil
}

func (s *ConversationFile) DeleteConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return entity.ErrConversationNotFound
	}

	prev := s.data
	s.data = append(append([]*entity.Conversation{}, s.data[:i]...), s.data[i+1:]...)
	if err := s.flush(); err != nil {
		s.data = prev
		return err
	}
	return nil
}
