package clinic

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DoctorDashboard summarizes a doctor's caseload over a reporting window.
type DoctorDashboard struct {
	DoctorID         string  `json:"doctor_id"`
	PeriodStart      string  `json:"period_start"`
	PeriodEnd        string  `json:"period_end"`
	Pending          int64   `json:"pending"`
	Approved         int64   `json:"approved"`
	Rejected         int64   `json:"rejected"`
	Completed        int64   `json:"completed"`
	DistinctPatients int64   `json:"distinct_patients"`
	CompletionPct    float64 `json:"completion_pct"`
}

// DashboardRepository aggregates appointment rows for the dashboard. It runs
// over database/sql rather than the pgx pool because the reporting queries are
// read-only and occasionally pointed at a replica.
type DashboardRepository struct {
	db *sql.DB
}

func NewDashboardRepository(db *sql.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Enabled reports whether a database was configured.
func (r *DashboardRepository) Enabled() bool {
	return r != nil && r.db != nil
}

// DoctorDashboard computes the per-status counts, distinct patient count and
// completion rate for one doctor. start/end are optional; nil means all time.
func (r *DashboardRepository) DoctorDashboard(ctx context.Context, doctorID string, start, end *time.Time) (*DoctorDashboard, error) {
	doctorID = strings.TrimSpace(doctorID)
	if doctorID == "" {
		return nil, fmt.Errorf("clinic: doctor id required")
	}

	counts, err := r.countByStatus(ctx, doctorID, start, end)
	if err != nil {
		return nil, err
	}
	patients, err := r.countDistinctPatients(ctx, doctorID, start, end)
	if err != nil {
		return nil, err
	}

	d := &DoctorDashboard{
		DoctorID:         doctorID,
		Pending:          counts["pending"],
		Approved:         counts["approved"],
		Rejected:         counts["rejected"],
		Completed:        counts["completed"],
		DistinctPatients: patients,
	}
	total := d.Pending + d.Approved + d.Rejected + d.Completed
	if total > 0 {
		d.CompletionPct = (float64(d.Completed) / float64(total)) * 100.0
	}
	return d, nil
}

func (r *DashboardRepository) countByStatus(ctx context.Context, doctorID string, start, end *time.Time) (map[string]int64, error) {
	query := `SELECT status, COUNT(*) FROM appointments WHERE doctor_id = $1`
	args := []any{doctorID}
	if start != nil && end != nil {
		query += ` AND scheduled_for >= $2 AND scheduled_for < $3`
		args = append(args, *start, *end)
	}
	query += ` GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("clinic: count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("clinic: scan status count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *DashboardRepository) countDistinctPatients(ctx context.Context, doctorID string, start, end *time.Time) (int64, error) {
	query := `SELECT COUNT(DISTINCT client_id) FROM appointments WHERE doctor_id = $1`
	args := []any{doctorID}
	if start != nil && end != nil {
		query += ` AND scheduled_for >= $2 AND scheduled_for < $3`
		args = append(args, *start, *end)
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("clinic: count distinct patients: %w", err)
	}
	return count, nil
}

// parseWindow reads the optional start/end query params. Both or neither must
// be present.
func parseWindow(r *http.Request) (*time.Time, *time.Time, string, string, error) {
	q := r.URL.Query()
	startRaw := strings.TrimSpace(q.Get("start"))
	endRaw := strings.TrimSpace(q.Get("end"))

	if (startRaw == "") != (endRaw == "") {
		return nil, nil, "", "", fmt.Errorf("both start and end must be provided, or neither")
	}
	if startRaw == "" {
		return nil, nil, "all-time", "now", nil
	}

	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return nil, nil, "", "", fmt.Errorf("invalid start time, use RFC3339 format")
	}
	end, err := time.Parse(time.RFC3339, endRaw)
	if err != nil {
		return nil, nil, "", "", fmt.Errorf("invalid end time, use RFC3339 format")
	}
	if !end.After(start) {
		return nil, nil, "", "", fmt.Errorf("end must be after start")
	}
	start = start.UTC()
	end = end.UTC()

	return &start, &end, start.Format(time.RFC3339), end.Format(time.RFC3339), nil
}
