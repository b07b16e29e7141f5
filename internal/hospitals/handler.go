package hospitals

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/careloop/clinic-platform/pkg/logging"
)

// Handler exposes the nearby-hospital lookup.
type Handler struct {
	client *Client
	logger *logging.Logger
}

// NewHandler creates a hospitals HTTP handler.
func NewHandler(client *Client, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{client: client, logger: logger}
}

// Routes mounts the hospital endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/hospitals/nearby", h.Nearby)
}

// Nearby returns hospitals around a coordinate, nearest first.
// GET /hospitals/nearby?lat=13.45&lon=-16.57&radius=5000
func (h *Handler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		writeError(w, http.StatusBadRequest, "lat and lon are required coordinates")
		return
	}
	radius := 0
	if raw := q.Get("radius"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "radius must be a positive number of meters")
			return
		}
		radius = parsed
	}

	hospitals, err := h.client.Nearby(r.Context(), lat, lon, radius)
	if err != nil {
		if errors.Is(err, ErrUpstream) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		h.logger.Error("hospital lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hospitals": hospitals})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
