package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/webchat/chat-relay/internal/entity"
)

// UserRepository stores registered users
type UserRepository interface {
	CreateUser(ctx context.Context, user *entity.User) error
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
}

var _ UserRepository = &UserMemory{}

// UserMemory keeps users for the lifetime of the process. Emails are
// compared case-insensitively.
type UserMemory struct {
	mu      sync.RWMutex
	byEmail map[string]*entity.User
	byID    map[string]*entity.User
}

func NewUserMemory() *UserMemory {
	return &UserMemory{
		byEmail: make(map[string]*entity.User),
		byID:    make(map[string]*entity.User),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *UserMemory) CreateUser(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := normalizeEmail(user.Email)
	if _, ok := r.byEmail[key]; ok {
		return entity.ErrUserExists
	}

	stored := *user
	r.byEmail[key] = &stored
	r.byID[user.ID] = &stored
	return nil
}

func (r *UserMemory) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r *UserMemory) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	out := *u
	return &out, nil
}
