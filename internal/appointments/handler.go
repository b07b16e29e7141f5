package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/careloop/clinic-platform/internal/identity"
	"github.com/careloop/clinic-platform/pkg/logging"
)

// Handler exposes the appointment lifecycle over HTTP. All routes assume the
// authentication middleware has already placed an identity on the context.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an appointments HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the appointment endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/appointments", h.Book)
	r.Get("/appointments", h.List)
	r.Get("/appointments/{appointmentID}", h.Get)
	r.Put("/appointments/{appointmentID}", h.Edit)
	r.Delete("/appointments/{appointmentID}", h.Cancel)
	r.Post("/appointments/{appointmentID}/approve", h.decide(StatusApproved))
	r.Post("/appointments/{appointmentID}/reject", h.decide(StatusRejected))
	r.Post("/appointments/{appointmentID}/complete", h.decide(StatusCompleted))
}

// Book creates a pending appointment for the authenticated client.
// POST /appointments
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	appt, err := h.service.Book(r.Context(), actor, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, appt)
}

// List returns the caller's appointments, newest first.
// GET /appointments
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	appts, err := h.service.List(r.Context(), actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appts})
}

// Get returns a single appointment the caller participates in.
// GET /appointments/{appointmentID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	appt, err := h.service.Get(r.Context(), actor, chi.URLParam(r, "appointmentID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// Edit rewrites the booking details of a pending appointment.
// PUT /appointments/{appointmentID}
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	appt, err := h.service.Edit(r.Context(), actor, chi.URLParam(r, "appointmentID"), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// Cancel deletes a pending appointment owned by the caller.
// DELETE /appointments/{appointmentID}
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.service.Cancel(r.Context(), actor, chi.URLParam(r, "appointmentID")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decide(to Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := identity.FromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		appt, err := h.service.Transition(r.Context(), actor, chi.URLParam(r, "appointmentID"), to)
		if err != nil {
			h.respondError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, appt)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var transition *TransitionError
	switch {
	case IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "appointment not found")
	case errors.Is(err, ErrNotParticipant):
		writeError(w, http.StatusForbidden, "not a participant of this appointment")
	case errors.As(err, &transition), errors.Is(err, ErrNotPending), errors.Is(err, ErrStaleStatus):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("appointment request failed", "error", err)
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
