package notifications

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when no notification matches the id and user.
var ErrNotFound = errors.New("notification not found")

// ErrAlreadyStored is returned by Insert when a row with the same id exists.
// Queue redelivery replays events with their original ids, so the dispatcher
// treats this as processed rather than failing the message forever.
var ErrAlreadyStored = errors.New("notification already stored")

// Repository persists the notification feed.
type Repository interface {
	Insert(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*Notification, error)
	// MarkRead flips the read flag; scoped to the owner.
	MarkRead(ctx context.Context, id, userID string) error
}

// PgxPool is the subset of pgxpool.Pool used here; pgxmock satisfies it.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const defaultFeedLimit = 100

// PostgresRepository stores notifications in the notifications table.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("notifications: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Insert stores one notification.
func (r *PostgresRepository) Insert(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	query := `
		INSERT INTO notifications (id, user_id, title, body, appointment_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		n.ID, n.UserID, n.Title, n.Body, n.AppointmentID,
	).Scan(&n.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyStored
	}
	if err != nil {
		return fmt.Errorf("notifications: insert failed: %w", err)
	}
	return nil
}

// ListByUser returns the user's feed, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*Notification, error) {
	if limit <= 0 || limit > 500 {
		limit = defaultFeedLimit
	}
	query := `
		SELECT id, user_id, title, body, appointment_id, read, created_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("notifications: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(
			&n.ID, &n.UserID, &n.Title, &n.Body,
			&n.AppointmentID, &n.Read, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("notifications: scan failed: %w", err)
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// MarkRead flips the read flag for the owner's notification.
func (r *PostgresRepository) MarkRead(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("notifications: mark read failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
