package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/webchat/chat-relay/internal/entity"
)

var _ ConversationRepository = &ConversationPostgres{}

// ConversationPostgres implements ConversationRepository using PostgreSQL
type ConversationPostgres struct {
	db *pgxpool.Pool
}

func NewConversationPostgres(db *pgxpool.Pool) *ConversationPostgres {
	return &ConversationPostgres{db: db}
}

const (
	selectConversations = `
		SELECT id, title, created_at, updated_at
		FROM conversations
		ORDER BY created_at DESC, id`

	selectConversation = `
		SELECT id, title, created_at, updated_at
		FROM conversations
		WHERE id = $1`

	selectMessages = `
		SELECT conversation_id, id, role, content, created_at, file_name, file_type, file_url
		FROM messages
		WHERE conversation_id = ANY($1)
		ORDER BY conversation_id, seq`
)

func scanConversation(row pgx.Row) (*entity.Conversation, error) {
	var c entity.Conversation
	if err := row.Scan(&c.ID, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrConversationNotFound
		}
		return nil, err
	}
	return &c, nil
}

// attachMessages loads the messages of convs in one query.
func (r *ConversationPostgres) attachMessages(ctx context.Context, convs []*entity.Conversation) error {
	if len(convs) == 0 {
		return nil
	}

	ids := make([]string, len(convs))
	byID := make(map[string]*entity.Conversation, len(convs))
	for i, c := range convs {
		ids[i] = c.ID
		byID[c.ID] = c
		c.Messages = []*entity.Message{}
	}

	rows, err := r.db.Query(ctx, selectMessages, ids)
	if err != nil {
		return fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			conversationID              string
			msg                         entity.Message
			fileName, fileType, fileURL *string
		)
		if err := rows.Scan(&conversationID, &msg.ID, &msg.Role, &msg.Content, &msg.CreatedAt, &fileName, &fileType, &fileURL); err != nil {
			return fmt.Errorf("scan message: %w", err)
		}
		if fileName != nil {
			msg.File = &entity.MessageFile{Name: *fileName}
			if fileType != nil {
				msg.File.Type = *fileType
			}
			if fileURL != nil {
				msg.File.URL = *fileURL
			}
		}
		byID[conversationID].Messages = append(byID[conversationID].Messages, &msg)
	}
	return rows.Err()
}

func (r *ConversationPostgres) ListConversations(ctx context.Context) ([]*entity.Conversation, error) {
	rows, err := r.db.Query(ctx, selectConversations)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	var convs []*entity.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}
	rows.Close()

	if err := r.attachMessages(ctx, convs); err != nil {
		return nil, err
	}
	return convs, nil
}

func (r *ConversationPostgres) CreateConversation(ctx context.Context, conv *entity.Conversation) (*entity.Conversation, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO conversations (id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, title, created_at, updated_at`,
		conv.ID, conv.Title, conv.CreatedAt, conv.UpdatedAt,
	)

	created, err := scanConversation(row)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	created.Messages = []*entity.Message{}
	return created, nil
}

func (r *ConversationPostgres) GetConversation(ctx context.Context, id string) (*entity.Conversation, error) {
	c, err := scanConversation(r.db.QueryRow(ctx, selectConversation, id))
	if err != nil {
		return nil, err
	}

	if err := r.attachMessages(ctx, []*entity.Conversation{c}); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ConversationPostgres) UpdateConversationTitle(ctx context.Context, id, title string) (*entity.Conversation, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE conversations
		SET title = $2, updated_at = $3
		WHERE id = $1
		RETURNING id, title, created_at, updated_at`,
		id, title, time.Now().UTC(),
	)

	c, err := scanConversation(row)
	if err != nil {
		return nil, err
	}

	if err := r.attachMessages(ctx, []*entity.Conversation{c}); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ConversationPostgres) AppendMessage(ctx context.Context, conversationID string, msg *entity.Message) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE conversations SET updated_at = $2 WHERE id = $1`, conversationID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrConversationNotFound
	}

	var fileName, fileType, fileURL *string
	if msg.File != nil {
		fileName, fileType, fileURL = &msg.File.Name, &msg.File.Type, &msg.File.URL
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, role, content, created_at, file_name, file_type, file_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		msg.ID, conversationID, string(msg.Role), msg.Content, msg.CreatedAt, fileName, fileType, fileURL,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *ConversationPostgres) DeleteConversation(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrConversationNotFound
	}
	return nil
}
