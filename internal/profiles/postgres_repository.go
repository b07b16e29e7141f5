package profiles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/careloop/clinic-platform/internal/identity"
)

// PgxPool is the subset of pgxpool.Pool used here; pgxmock satisfies it.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository reads and writes profile fields on the users table.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("profiles: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const profileColumns = `id, email, role, first_name, last_name, phone,
	age, blood_type, weight, height, allergies, medical_history,
	specialization, hospital, experience, schedule_weekday, schedule_weekend,
	created_at, updated_at`

// GetByID fetches one profile.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM users WHERE id = $1`
	p, err := scanProfile(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("profiles: select failed: %w", err)
	}
	return p, nil
}

// Update persists the profile fields of an existing user.
func (r *PostgresRepository) Update(ctx context.Context, p *Profile) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, phone = $4,
			age = $5, blood_type = $6, weight = $7, height = $8,
			allergies = $9, medical_history = $10,
			specialization = $11, hospital = $12, experience = $13,
			schedule_weekday = $14, schedule_weekend = $15,
			updated_at = now()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		p.ID,
		p.FirstName,
		p.LastName,
		p.Phone,
		p.Age,
		p.BloodType,
		p.Weight,
		p.Height,
		p.Allergies,
		p.MedicalHistory,
		p.Specialization,
		p.Hospital,
		p.Experience,
		p.Schedule.Weekday,
		p.Schedule.Weekend,
	)
	if err != nil {
		return fmt.Errorf("profiles: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByRole returns all profiles with the given role, optionally narrowed to
// one doctor specialization.
func (r *PostgresRepository) ListByRole(ctx context.Context, role identity.Role, specialization string) ([]*Profile, error) {
	query := `SELECT ` + profileColumns + `
		FROM users WHERE role = $1
		AND ($2 = '' OR specialization = $2)
		ORDER BY last_name, first_name`
	rows, err := r.pool.Query(ctx, query, role, specialization)
	if err != nil {
		return nil, fmt.Errorf("profiles: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("profiles: scan failed: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProfile(row pgx.Row) (*Profile, error) {
	var p Profile
	if err := row.Scan(
		&p.ID,
		&p.Email,
		&p.Role,
		&p.FirstName,
		&p.LastName,
		&p.Phone,
		&p.Age,
		&p.BloodType,
		&p.Weight,
		&p.Height,
		&p.Allergies,
		&p.MedicalHistory,
		&p.Specialization,
		&p.Hospital,
		&p.Experience,
		&p.Schedule.Weekday,
		&p.Schedule.Weekend,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
