package ws

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Hub tracks the live WebSocket clients of each project and fans
// frames out to them. Delivery is best-effort: a client whose send
// buffer is full is dropped and closed rather than blocking the
// broadcast.
type Hub struct {
	mu       sync.RWMutex
	projects map[uuid.UUID]map[*Client]struct{}
	logger   *zap.Logger
}

// NewHub creates an empty hub
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		projects: make(map[uuid.UUID]map[*Client]struct{}),
		logger:   logger,
	}
}

// Register adds a client to its project's set
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.projects[c.projectID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.projects[c.projectID] = clients
	}
	clients[c] = struct{}{}

	h.logger.Info("WebSocket client connected",
		zap.String("project_id", c.projectID.String()),
		zap.String("user_id", c.userID.String()),
		zap.Int("project_clients", len(clients)),
	)
}

// Unregister removes a client and closes its send channel. Safe to
// call more than once for the same client.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	clients, ok := h.projects[c.projectID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.projects, c.projectID)
	}
	close(c.send)

	h.logger.Info("WebSocket client disconnected",
		zap.String("project_id", c.projectID.String()),
		zap.String("user_id", c.userID.String()),
	)
}

// Broadcast sends a frame to every client of a project. Clients that
// cannot keep up are evicted.
func (h *Hub) Broadcast(projectID uuid.UUID, frame Frame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("Failed to marshal frame",
			zap.String("type", frame.Type),
			zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.projects[projectID] {
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("Dropping slow WebSocket client",
				zap.String("project_id", projectID.String()),
				zap.String("user_id", c.userID.String()),
			)
			h.removeLocked(c)
		}
	}
}

// ClientCount reports the number of live clients on a project
func (h *Hub) ClientCount(projectID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.projects[projectID])
}
