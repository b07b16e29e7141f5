package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists record metadata.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	// GetForOwner returns the record only when it belongs to ownerID.
	GetForOwner(ctx context.Context, id, ownerID string) (*Record, error)
	ListByOwner(ctx context.Context, ownerID string, category Category) ([]*Record, error)
	DeleteForOwner(ctx context.Context, id, ownerID string) (*Record, error)
}

// PgxPool is the subset of pgxpool.Pool used here; pgxmock satisfies it.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores record metadata in the health_records table.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("records: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const recordColumns = `id, owner_id, category, name, file_name, content_type,
	size_bytes, storage_key, created_at`

// Create inserts a metadata row.
func (r *PostgresRepository) Create(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	query := `
		INSERT INTO health_records (id, owner_id, category, name, file_name,
			content_type, size_bytes, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		rec.ID, rec.OwnerID, rec.Category, rec.Name, rec.FileName,
		rec.ContentType, rec.SizeBytes, rec.StorageKey,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("records: insert failed: %w", err)
	}
	return nil
}

// GetForOwner fetches one record scoped to its owner.
func (r *PostgresRepository) GetForOwner(ctx context.Context, id, ownerID string) (*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM health_records WHERE id = $1 AND owner_id = $2`
	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("records: select failed: %w", err)
	}
	return rec, nil
}

// ListByOwner returns the owner's records, newest first, optionally narrowed
// to one category.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, category Category) ([]*Record, error) {
	query := `SELECT ` + recordColumns + `
		FROM health_records WHERE owner_id = $1
		AND ($2 = '' OR category = $2)
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, ownerID, category)
	if err != nil {
		return nil, fmt.Errorf("records: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("records: scan failed: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteForOwner removes the metadata row and returns it so the caller can
// clean up the stored object.
func (r *PostgresRepository) DeleteForOwner(ctx context.Context, id, ownerID string) (*Record, error) {
	query := `DELETE FROM health_records WHERE id = $1 AND owner_id = $2
		RETURNING ` + recordColumns
	rec, err := scanRecord(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("records: delete failed: %w", err)
	}
	return rec, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	if err := row.Scan(
		&rec.ID,
		&rec.OwnerID,
		&rec.Category,
		&rec.Name,
		&rec.FileName,
		&rec.ContentType,
		&rec.SizeBytes,
		&rec.StorageKey,
		&rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}
