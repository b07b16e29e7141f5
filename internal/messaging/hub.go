package messaging

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/careloop/clinic-platform/pkg/logging"
)

// Conn abstracts a WebSocket connection so the hub is testable without a
// network socket.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

const textMessage = 1 // websocket.TextMessage

// session is one live connection belonging to a user.
type session struct {
	userID string
	conn   Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

// writeLoop drains the send channel onto the socket. Slow consumers are
// disconnected instead of blocking the hub.
func (s *session) writeLoop() {
	for {
		select {
		case payload, ok := <-s.send:
			if !ok {
				s.close()
				return
			}
			if err := s.conn.WriteMessage(textMessage, payload); err != nil {
				s.close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// Hub tracks live connections per user and fans messages out to all of a
// user's devices. With a redis client it also relays deliveries across
// instances via pub/sub; without one delivery stays process-local.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*session]struct{}

	redis  *redis.Client
	logger *logging.Logger
}

const redisChannelPrefix = "messaging:user:"

// NewHub creates a hub. redisClient may be nil.
func NewHub(redisClient *redis.Client, logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Default()
	}
	return &Hub{
		sessions: make(map[string]map[*session]struct{}),
		redis:    redisClient,
		logger:   logger,
	}
}

// Attach registers conn as a live session for userID and blocks until the
// session ends. The caller owns reading from the socket.
func (h *Hub) Attach(userID string, conn Conn) *Session {
	s := &session{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, 32),
		done:   make(chan struct{}),
	}
	h.mu.Lock()
	if h.sessions[userID] == nil {
		h.sessions[userID] = make(map[*session]struct{})
	}
	h.sessions[userID][s] = struct{}{}
	h.mu.Unlock()

	go s.writeLoop()
	return &Session{hub: h, inner: s}
}

// Session is the caller-facing handle for one attached connection.
type Session struct {
	hub   *Hub
	inner *session
}

// Wait blocks until the session is closed.
func (s *Session) Wait() {
	<-s.inner.done
}

// Close detaches the session and closes the socket.
func (s *Session) Close() {
	s.hub.detach(s.inner)
}

func (h *Hub) detach(s *session) {
	h.mu.Lock()
	if set, ok := h.sessions[s.userID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.sessions, s.userID)
		}
	}
	h.mu.Unlock()
	s.close()
}

// Deliver pushes a message to every live session of userID. With redis the
// message goes through pub/sub so every instance, this one included, sees it
// exactly once via Run; without redis it goes straight to local sessions.
func (h *Hub) Deliver(ctx context.Context, userID string, msg *Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode message for delivery", "error", err)
		return
	}
	if h.redis == nil {
		h.deliverLocal(userID, payload)
		return
	}
	if err := h.redis.Publish(ctx, redisChannelPrefix+userID, payload).Err(); err != nil {
		h.logger.Error("failed to publish message to redis", "user_id", userID, "error", err)
		h.deliverLocal(userID, payload)
	}
}

func (h *Hub) deliverLocal(userID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.sessions[userID] {
		select {
		case s.send <- payload:
		default:
			// Buffer full: the reader is stuck, drop the session.
			go h.detach(s)
		}
	}
}

// Run subscribes to the cross-instance channel and relays deliveries to local
// sessions until ctx is cancelled. It is a no-op without redis.
func (h *Hub) Run(ctx context.Context) {
	if h.redis == nil {
		return
	}
	sub := h.redis.PSubscribe(ctx, redisChannelPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-ch:
			if !ok {
				return
			}
			userID := m.Channel[len(redisChannelPrefix):]
			h.deliverLocal(userID, []byte(m.Payload))
		}
	}
}
