package service

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/fittracker-api/internal/models"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 25 * time.Second
	sendBuffer   = 32 // events queued per subscriber before it is dropped
)

// EventPublisher receives activity change notifications
type EventPublisher interface {
	Publish(userID uint, event models.ActivityEvent)
}

type noopPublisher struct{}

func (noopPublisher) Publish(uint, models.ActivityEvent) {}

// WSClient is one WebSocket subscriber to a user's activity feed. Only its
// writer goroutine writes to the connection.
type WSClient struct {
	UserID uint
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

// NewWSClient wraps an upgraded connection
func NewWSClient(userID uint, conn *websocket.Conn) *WSClient {
	return &WSClient{
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// Conn returns the underlying connection for the reader side
func (c *WSClient) Conn() *websocket.Conn {
	return c.conn
}

func (c *WSClient) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// enqueue hands msg to the writer without blocking. It reports false when
// the buffer is full or the client is closed.
func (c *WSClient) enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *WSClient) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// RealtimeHub fans activity events out to the subscribers of each user
type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[uint]map[*WSClient]struct{}
	logger  *zap.Logger
}

// NewRealtimeHub creates an empty hub
func NewRealtimeHub(logger *zap.Logger) *RealtimeHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RealtimeHub{
		clients: make(map[uint]map[*WSClient]struct{}),
		logger:  logger,
	}
}

// Register adds a subscriber and starts its writer
func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*WSClient]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(c)
}

// Unregister removes a subscriber and closes its connection. Safe to call twice.
func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	c.close()
}

// Subscribers returns the number of subscribers of a user
func (h *RealtimeHub) Subscribers(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Publish implements EventPublisher. It never blocks on a subscriber; one
// whose buffer is full is disconnected.
func (h *RealtimeHub) Publish(userID uint, event models.ActivityEvent) {
	msg, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("realtime_marshal_failed", zap.String("type", string(event.Type)), zap.Error(err))
		return
	}

	h.mu.RLock()
	targets := make([]*WSClient, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if !c.enqueue(msg) {
			h.logger.Warn("realtime_subscriber_dropped", zap.Uint("user_id", userID))
			h.Unregister(c)
		}
	}
}

func (h *RealtimeHub) writeLoop(c *WSClient) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				h.logger.Debug("realtime_write_failed", zap.Uint("user_id", c.UserID), zap.Error(err))
				h.Unregister(c)
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				h.Unregister(c)
				return
			}
		}
	}
}
