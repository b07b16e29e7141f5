package messaging

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists chat history.
type Repository interface {
	Insert(ctx context.Context, msg *Message) error
	// ListConversation returns up to limit messages of one conversation,
	// newest first.
	ListConversation(ctx context.Context, conversationID string, limit int) ([]*Message, error)
}

// PgxPool is the subset of pgxpool.Pool used here; pgxmock satisfies it.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const defaultHistoryLimit = 50

// PostgresRepository stores messages in the messages table.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("messaging: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Insert stores one message.
func (r *PostgresRepository) Insert(ctx context.Context, msg *Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	query := `
		INSERT INTO messages (id, conversation_id, sender_id, recipient_id, body)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		msg.ID, msg.ConversationID, msg.SenderID, msg.RecipientID, msg.Body,
	).Scan(&msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("messaging: insert failed: %w", err)
	}
	return nil
}

// ListConversation returns the newest messages of a conversation.
func (r *PostgresRepository) ListConversation(ctx context.Context, conversationID string, limit int) ([]*Message, error) {
	if limit <= 0 || limit > 500 {
		limit = defaultHistoryLimit
	}
	query := `
		SELECT id, conversation_id, sender_id, recipient_id, body, created_at
		FROM messages WHERE conversation_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("messaging: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(
			&msg.ID, &msg.ConversationID, &msg.SenderID,
			&msg.RecipientID, &msg.Body, &msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("messaging: scan failed: %w", err)
		}
		out = append(out, &msg)
	}
	return out, rows.Err()
}
