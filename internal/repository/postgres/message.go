package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/doctaba/telehealth-api/internal/model"
	"github.com/doctaba/telehealth-api/internal/repository"
)

const messageColumns = `id, sender_id, receiver_id, content, "timestamp", "read"`

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) repository.MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE sender_id = $1 OR receiver_id = $1`

	var messages []*model.Message
	if err := r.db.SelectContext(ctx, &messages, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (r *messageRepository) Conversation(ctx context.Context, user1, user2 int64) ([]*model.Message, error) {
	query := `
		SELECT ` + messageColumns + ` FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY "timestamp", id
	`

	var messages []*model.Message
	if err := r.db.SelectContext(ctx, &messages, query, user1, user2); err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return messages, nil
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	query := `
		INSERT INTO messages (sender_id, receiver_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, "timestamp", "read"
	`

	err := r.db.QueryRowxContext(ctx, query, message.SenderID, message.ReceiverID, message.Content).
		Scan(&message.ID, &message.Timestamp, &message.Read)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *messageRepository) MarkRead(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE messages SET "read" = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}
	return nil
}
