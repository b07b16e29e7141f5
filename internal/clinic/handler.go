package clinic

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/careloop/clinic-platform/internal/identity"
	"github.com/careloop/clinic-platform/pkg/logging"
)

// DashboardHandler serves the doctor's caseload summary.
type DashboardHandler struct {
	repo   *DashboardRepository
	logger *logging.Logger
}

func NewDashboardHandler(repo *DashboardRepository, logger *logging.Logger) *DashboardHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DashboardHandler{repo: repo, logger: logger}
}

// Routes mounts the dashboard endpoint on a doctor-only router group.
func (h *DashboardHandler) Routes(r chi.Router) {
	r.Get("/dashboard", h.GetDashboard)
}

// GetDashboard returns the caller's appointment counts and patient reach.
// GET /dashboard
// Query params:
//   - start: RFC3339 timestamp (optional, requires end)
//   - end: RFC3339 timestamp (optional, requires start)
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		jsonError(w, "authentication required", http.StatusUnauthorized)
		return
	}
	if !h.repo.Enabled() {
		jsonError(w, "dashboard disabled", http.StatusServiceUnavailable)
		return
	}

	start, end, periodStart, periodEnd, err := parseWindow(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	dashboard, err := h.repo.DoctorDashboard(r.Context(), actor.UserID, start, end)
	if err != nil {
		h.logger.Error("failed to build doctor dashboard", "doctor_id", actor.UserID, "error", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
		return
	}
	dashboard.PeriodStart = periodStart
	dashboard.PeriodEnd = periodEnd

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(dashboard)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
