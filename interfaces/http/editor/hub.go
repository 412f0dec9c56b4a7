package editor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mediagraph/application/ports"
	"mediagraph/application/projection"
)

// keepAliveInterval is how often idle streams receive a comment line
const keepAliveInterval = 30 * time.Second

// clientBuffer is how many scenes may wait for a slow client
const clientBuffer = 64

type client struct {
	id     string
	events chan []byte
}

// Hub fans rendered scenes out to the SSE clients of one session.
// New clients immediately receive the latest scene.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	last    []byte
	closed  bool
	logger  *zap.Logger
}

var _ ports.RenderSink = (*Hub)(nil)

// NewHub creates an empty hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

// Render implements ports.RenderSink
func (h *Hub) Render(_ context.Context, scene projection.Scene) error {
	data, err := json.Marshal(scene)
	if err != nil {
		return fmt.Errorf("failed to marshal scene: %w", err)
	}
	msg := []byte(fmt.Sprintf("event: scene\ndata: %s\n\n", data))

	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = msg
	for c := range h.clients {
		h.offer(c, msg)
	}
	return nil
}

// offer queues msg for c. Every frame carries a whole scene, so a full
// buffer gives up its oldest frame and the newest scene always gets through.
// Callers hold h.mu, so no other sender can refill the freed slot.
func (h *Hub) offer(c *client, msg []byte) {
	select {
	case c.events <- msg:
		return
	default:
	}
	select {
	case <-c.events:
		h.logger.Debug("SSE client is slow, dropped its oldest scene", zap.String("clientID", c.id))
	default:
	}
	select {
	case c.events <- msg:
	default:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.events)
	}
}

func (h *Hub) subscribe() (*client, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, false
	}
	c := &client{id: uuid.NewString(), events: make(chan []byte, clientBuffer)}
	if h.last != nil {
		c.events <- h.last
	}
	h.clients[c] = struct{}{}
	h.logger.Debug("SSE client connected", zap.String("clientID", c.id), zap.Int("total", len(h.clients)))
	return c, true
}

func (h *Hub) unsubscribe(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.events)
	}
	h.logger.Debug("SSE client disconnected", zap.String("clientID", c.id), zap.Int("total", len(h.clients)))
}

// ServeHTTP streams scenes as server-sent events
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	c, ok := h.subscribe()
	if !ok {
		http.Error(w, "session closed", http.StatusGone)
		return
	}
	defer h.unsubscribe(c)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.events:
			if !ok {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := fmt.Fprintf(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
