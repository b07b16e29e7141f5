package messaging

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/careloop/clinic-platform/internal/identity"
	"github.com/careloop/clinic-platform/pkg/logging"
)

// Handler exposes chat endpoints plus the live WebSocket feed.
type Handler struct {
	service  *Service
	upgrader websocket.Upgrader
	logger   *logging.Logger
}

// NewHandler creates a messaging HTTP handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser origin enforcement happens in the CORS middleware.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Routes mounts the messaging endpoints on an authenticated router group.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/messages", h.Send)
	r.Get("/messages", h.History)
	r.Get("/messages/ws", h.Subscribe)
}

// Send posts one message.
// POST /messages
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	msg, err := h.service.Send(r.Context(), actor, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// History returns the newest messages of one conversation.
// GET /messages?with=<user-id>&limit=50
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	msgs, err := h.service.History(r.Context(), actor, r.URL.Query().Get("with"), limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if msgs == nil {
		msgs = []*Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

// Subscribe upgrades to a WebSocket and streams new messages for the caller
// until the client disconnects.
// GET /messages/ws
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	sess := h.service.Subscribe(actor, conn)
	defer sess.Close()

	// Drain inbound frames so pings and close messages are processed. The
	// feed is one-way; client payloads are discarded.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				sess.Close()
				return
			}
		}
	}()
	sess.Wait()
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnknownRecipient):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("messaging request failed", "error", err)
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
