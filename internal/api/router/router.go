package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/careloop/clinic-platform/internal/appointments"
	"github.com/careloop/clinic-platform/internal/auth"
	"github.com/careloop/clinic-platform/internal/clinic"
	"github.com/careloop/clinic-platform/internal/hospitals"
	httpmiddleware "github.com/careloop/clinic-platform/internal/http/middleware"
	"github.com/careloop/clinic-platform/internal/identity"
	"github.com/careloop/clinic-platform/internal/messaging"
	"github.com/careloop/clinic-platform/internal/notifications"
	"github.com/careloop/clinic-platform/internal/profiles"
	"github.com/careloop/clinic-platform/internal/records"
	"github.com/careloop/clinic-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger *logging.Logger

	AuthHandler          *auth.Handler
	AppointmentsHandler  *appointments.Handler
	ProfilesHandler      *profiles.Handler
	MessagingHandler     *messaging.Handler
	RecordsHandler       *records.Handler
	HospitalsHandler     *hospitals.Handler
	NotificationsHandler *notifications.Handler
	DashboardHandler     *clinic.DashboardHandler

	// SessionSecret signs and verifies the HS256 session tokens.
	SessionSecret string

	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// RateLimitPerSecond throttles per client IP; zero disables.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}
	if cfg.RateLimitPerSecond > 0 {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.AuthHandler != nil {
			cfg.AuthHandler.Routes(public)
		}
	})

	// Authenticated endpoints
	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Authenticate(cfg.SessionSecret))

		if cfg.AppointmentsHandler != nil {
			cfg.AppointmentsHandler.Routes(private)
		}
		if cfg.ProfilesHandler != nil {
			cfg.ProfilesHandler.Routes(private)
		}
		if cfg.MessagingHandler != nil {
			cfg.MessagingHandler.Routes(private)
		}
		if cfg.RecordsHandler != nil {
			cfg.RecordsHandler.Routes(private)
		}
		if cfg.HospitalsHandler != nil {
			cfg.HospitalsHandler.Routes(private)
		}
		if cfg.NotificationsHandler != nil {
			cfg.NotificationsHandler.Routes(private)
		}

		// Doctor-only endpoints
		private.Group(func(doctors chi.Router) {
			doctors.Use(httpmiddleware.RequireRole(identity.RoleDoctor))
			if cfg.ProfilesHandler != nil {
				cfg.ProfilesHandler.ClientDirectoryRoutes(doctors)
			}
			if cfg.DashboardHandler != nil {
				cfg.DashboardHandler.Routes(doctors)
			}
		})
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
