package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// writeWait is how long a single write may take
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong before dropping the peer
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize caps inbound chat frames
	maxMessageSize = 64 * 1024

	// sendBufferSize is the per-client outbound queue; token streams
	// are bursty so this needs headroom
	sendBufferSize = 256
)

// Client is one WebSocket connection bound to a project
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	projectID uuid.UUID
	userID    uuid.UUID
	session   *Session
	send      chan []byte
	logger    *zap.Logger
}

// NewClient wraps an upgraded connection
func NewClient(hub *Hub, conn *websocket.Conn, projectID, userID uuid.UUID, session *Session, logger *zap.Logger) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		projectID: projectID,
		userID:    userID,
		session:   session,
		send:      make(chan []byte, sendBufferSize),
		logger:    logger,
	}
}

// Run registers the client and pumps messages until the connection
// drops. Blocks until the read side closes.
func (c *Client) Run() {
	c.hub.Register(c)
	go c.writePump()
	c.readPump()
}

// readPump reads chat frames and hands them to the session. Runs on
// the caller's goroutine; exiting unregisters the client.
func (c *Client) readPump() {
	defer func() {
		c.session.Close()
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("WebSocket read failed",
					zap.String("project_id", c.projectID.String()),
					zap.Error(err))
			}
			return
		}

		c.handleFrame(payload)
	}
}

// handleFrame dispatches one inbound frame. Protocol errors concern
// only this connection, so they go back on its own queue rather than
// through the hub.
func (c *Client) handleFrame(payload []byte) {
	var frame Frame
	if err := json.Unmarshal(payload, &frame); err != nil {
		c.deliver(ErrorFrame("Malformed frame"))
		return
	}

	switch frame.Type {
	case FrameChat:
		if frame.Content == "" {
			c.deliver(ErrorFrame("Chat message is empty"))
			return
		}
		c.session.Chat(frame.Content)
	default:
		c.deliver(ErrorFrame("Unsupported frame type: " + frame.Type))
	}
}

// deliver queues a frame for this client only. A full queue drops the
// frame, same as the hub's best-effort broadcast.
func (c *Client) deliver(frame Frame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// writePump drains the send channel onto the connection and keeps the
// peer alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub evicted us
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
