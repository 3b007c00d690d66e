package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/webchat/chat-relay/internal/entity"
	"go.uber.org/zap/zaptest"
)

func openTestStore(t *testing.T) (*ConversationFile, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conversations.json")
	return OpenConversationFile(path, zaptest.NewLogger(t)), path
}

func readFile(t *testing.T, path string) []*entity.Conversation {
	t.Helper()
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read store file: %v", err)
	}
	var data []*entity.Conversation
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("decode store file: %v", err)
	}
	return data
}

func TestOpenConversationFile_SeedsDefaultConversation(t *testing.T) {
	store, path := openTestStore(t)

	list, err := store.ListConversations(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].ID != DefaultConversationID || list[0].Title != entity.DefaultConversationTitle {
		t.Fatalf("unexpected seed %+v", list)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("seed must not be written before the first mutation, stat err = %v", err)
	}
}

func TestOpenConversationFile_CorruptFileFallsBackToSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conversations.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := OpenConversationFile(path, zaptest.NewLogger(t))
	list, _ := store.ListConversations(context.Background())
	if len(list) != 1 || list[0].ID != DefaultConversationID {
		t.Errorf("expected seeded store, got %+v", list)
	}
}

func TestConversationFile_MutationsArePersisted(t *testing.T) {
	ctx := context.Background()
	store, path := openTestStore(t)
	now := time.Now().UTC()

	created, err := store.CreateConversation(ctx, &entity.Conversation{ID: "a", Title: "Primera", CreatedAt: now, UpdatedAt: now})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "a" {
		t.Errorf("unexpected created conversation %+v", created)
	}

	data := readFile(t, path)
	if len(data) != 2 || data[0].ID != "a" || data[1].ID != DefaultConversationID {
		t.Fatalf("expected newest first on disk, got %+v", data)
	}

	if err := store.AppendMessage(ctx, "a", &entity.Message{ID: "m1", Role: entity.RoleUser, Content: "hola", CreatedAt: now}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if _, err := store.UpdateConversationTitle(ctx, "a", "Renombrada"); err != nil {
		t.Fatalf("update title: %v", err)
	}

	reopened := OpenConversationFile(path, zaptest.NewLogger(t))
	got, err := reopened.GetConversation(ctx, "a")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if got.Title != "Renombrada" || len(got.Messages) != 1 || got.Messages[0].Content != "hola" {
		t.Errorf("unexpected conversation after reopen %+v", got)
	}

	if err := store.DeleteConversation(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if data := readFile(t, path); len(data) != 1 {
		t.Errorf("expected delete to be flushed, got %d conversations", len(data))
	}
}

func TestConversationFile_NotFound(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	if _, err := store.GetConversation(ctx, "x"); !errors.Is(err, entity.ErrConversationNotFound) {
		t.Errorf("get: expected ErrConversationNotFound, got %v", err)
	}
	if _, err := store.UpdateConversationTitle(ctx, "x", "t"); !errors.Is(err, entity.ErrConversationNotFound) {
		t.Errorf("update: expected ErrConversationNotFound, got %v", err)
	}
	if err := store.AppendMessage(ctx, "x", &entity.Message{}); !errors.Is(err, entity.ErrConversationNotFound) {
		t.Errorf("append: expected ErrConversationNotFound, got %v", err)
	}
	if err := store.DeleteConversation(ctx, "x"); !errors.Is(err, entity.ErrConversationNotFound) {
		t.Errorf("delete: expected ErrConversationNotFound, got %v", err)
	}
}

func TestConversationFile_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	got, _ := store.GetConversation(ctx, DefaultConversationID)
	got.Title = "mutated"

	again, _ := store.GetConversation(ctx, DefaultConversationID)
	if again.Title != entity.DefaultConversationTitle {
		t.Errorf("store state leaked through returned value: %q", again.Title)
	}
}
