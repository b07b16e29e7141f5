package main

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/jackc/pgx/v5/stdlib"

	appconfig "github.com/careloop/clinic-platform/internal/config"
	"github.com/careloop/clinic-platform/internal/notifications"
	"github.com/careloop/clinic-platform/internal/profiles"
	"github.com/careloop/clinic-platform/pkg/logging"
)

// profileResolver adapts the profile service to the notification dispatcher's
// recipient lookup.
type profileResolver struct {
	profiles *profiles.Service
}

func (r *profileResolver) Resolve(ctx context.Context, userID string) (*notifications.Recipient, error) {
	p, err := r.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &notifications.Recipient{Name: p.DisplayName(), Email: p.Email}, nil
}

// profileDirectory adapts the profile service to the messaging recipient
// existence check.
type profileDirectory struct {
	profiles *profiles.Service
}

func (d *profileDirectory) Exists(ctx context.Context, userID string) (bool, error) {
	_, err := d.profiles.Get(ctx, userID)
	if errors.Is(err, profiles.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// openReportingDB opens a database/sql handle for the dashboard queries.
// Returns nil when no database is configured, which disables the dashboard.
func openReportingDB(cfg *appconfig.Config, logger *logging.Logger) *sql.DB {
	if cfg.DatabaseURL == "" {
		return nil
	}
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open reporting database", "error", err)
		return nil
	}
	db.SetMaxOpenConns(4)
	return db
}
