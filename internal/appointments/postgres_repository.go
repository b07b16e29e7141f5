package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the subset of pgxpool.Pool used by the repository; pgxmock
// satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

const appointmentColumns = `id, client_id, doctor_id, doctor_name, specialization,
	visit_date, visit_time, description, status, scheduled_for, created_at, updated_at`

// Create inserts a new row. The id is assigned here when empty.
func (r *PostgresRepository) Create(ctx context.Context, appt *Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	query := `
		INSERT INTO appointments (id, client_id, doctor_id, doctor_name, specialization,
			visit_date, visit_time, description, status, scheduled_for)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		appt.ID,
		appt.ClientID,
		appt.DoctorID,
		appt.DoctorName,
		appt.Specialization,
		appt.Date,
		appt.Time,
		appt.Description,
		appt.Status,
		appt.ScheduledFor,
	).Scan(&appt.CreatedAt, &appt.UpdatedAt); err != nil {
		return fmt.Errorf("appointments: insert failed: %w", err)
	}
	return nil
}

// GetByID fetches a single appointment.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	appt, err := scanAppointment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return appt, nil
}

// UpdateDetails overwrites the mutable fields while the row is still pending.
func (r *PostgresRepository) UpdateDetails(ctx context.Context, appt *Appointment) error {
	query := `
		UPDATE appointments
		SET doctor_id = $2, doctor_name = $3, specialization = $4,
			visit_date = $5, visit_time = $6, description = $7,
			scheduled_for = $8, updated_at = now()
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := r.pool.Exec(ctx, query,
		appt.ID,
		appt.DoctorID,
		appt.DoctorName,
		appt.Specialization,
		appt.Date,
		appt.Time,
		appt.Description,
		appt.ScheduledFor,
	)
	if err != nil {
		return fmt.Errorf("appointments: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleStatus
	}
	return nil
}

// UpdateStatus is a compare-and-set on the status column.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, from, to Status) error {
	query := `
		UPDATE appointments
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("appointments: status update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleStatus
	}
	return nil
}

// DeletePending permanently removes a still-pending row.
func (r *PostgresRepository) DeletePending(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("appointments: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleStatus
	}
	return nil
}

// ListByClient returns the client's appointments, newest created first.
func (r *PostgresRepository) ListByClient(ctx context.Context, clientID string) ([]*Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments WHERE client_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, clientID)
}

// ListByDoctor returns the doctor's incoming appointments, newest created first.
func (r *PostgresRepository) ListByDoctor(ctx context.Context, doctorID string) ([]*Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments WHERE doctor_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, doctorID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	var appts []*Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		appts = append(appts, appt)
	}
	return appts, rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var appt Appointment
	var scheduledFor, createdAt, updatedAt time.Time
	if err := row.Scan(
		&appt.ID,
		&appt.ClientID,
		&appt.DoctorID,
		&appt.DoctorName,
		&appt.Specialization,
		&appt.Date,
		&appt.Time,
		&appt.Description,
		&appt.Status,
		&scheduledFor,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	appt.ScheduledFor = scheduledFor
	appt.CreatedAt = createdAt
	appt.UpdatedAt = updatedAt
	return &appt, nil
}
