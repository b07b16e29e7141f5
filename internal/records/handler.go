package records

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/careloop/clinic-platform/internal/identity"
	"github.com/careloop/clinic-platform/pkg/logging"
)

// Handler exposes health record endpoints. The multipart form mirrors the
// upload screen: a file part plus name and category fields.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a records HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the record endpoints on an authenticated router group.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/records", h.Upload)
	r.Get("/records", h.List)
	r.Get("/records/{recordID}/file", h.Download)
	r.Delete("/records/{recordID}", h.Delete)
}

// Upload accepts a multipart form with file, name and category parts.
// POST /records
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+4096)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, ErrTooLarge.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrMissingFile.Error())
		return
	}
	defer file.Close()

	rec, err := h.service.Save(r.Context(), actor.UserID, Upload{
		Name:        r.FormValue("name"),
		Category:    Category(r.FormValue("category")),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		SizeBytes:   header.Size,
		Body:        file,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// List returns the caller's records.
// GET /records?category=prescription
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	recs, err := h.service.List(r.Context(), actor.UserID, Category(r.URL.Query().Get("category")))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if recs == nil {
		recs = []*Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": recs})
}

// Download streams the stored file back to its owner.
// GET /records/{recordID}/file
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	rec, body, err := h.service.Open(r.Context(), actor.UserID, chi.URLParam(r, "recordID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", rec.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+rec.FileName+`"`)
	if rec.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(rec.SizeBytes, 10))
	}
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Error("record download interrupted", "record_id", rec.ID, "error", err)
	}
}

// Delete removes a record and its file.
// DELETE /records/{recordID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.service.Delete(r.Context(), actor.UserID, chi.URLParam(r, "recordID")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingFile),
		errors.Is(err, ErrMissingName),
		errors.Is(err, ErrUnknownCategory),
		errors.Is(err, ErrTooLarge):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	default:
		h.logger.Error("record request failed", "error", err)
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
