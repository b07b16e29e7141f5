package profiles

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/careloop/clinic-platform/internal/identity"
	"github.com/careloop/clinic-platform/pkg/logging"
)

// Handler exposes profile and directory endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a profiles HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the profile endpoints on an authenticated router group.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/profiles/me", h.GetMe)
	r.Put("/profiles/me", h.UpdateMe)
	r.Get("/doctors", h.ListDoctors)
}

// ClientDirectoryRoutes mounts the doctor-only patient directory.
func (h *Handler) ClientDirectoryRoutes(r chi.Router) {
	r.Get("/patients", h.ListClients)
}

// GetMe returns the caller's own profile.
// GET /profiles/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	p, err := h.service.Get(r.Context(), actor.UserID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdateMe applies a partial profile update for the caller.
// PUT /profiles/me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.service.Update(r.Context(), actor, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListDoctors returns the doctor directory for the booking screen.
// GET /doctors?specialization=Cardiology
func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.ListDoctors(r.Context(), r.URL.Query().Get("specialization"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if docs == nil {
		docs = []*Profile{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"doctors": docs})
}

// ListClients returns the patient directory for doctors.
// GET /patients
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListClients(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	if clients == nil {
		clients = []*Profile{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"patients": clients})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "profile not found")
	case errors.Is(err, ErrMissingName),
		errors.Is(err, ErrMissingPhone),
		errors.Is(err, ErrMissingSpecialization),
		errors.Is(err, ErrUnknownSpecialization),
		errors.Is(err, ErrMissingHospital):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("profile request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
