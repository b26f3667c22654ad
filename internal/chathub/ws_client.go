package chathub

import (
	"encoding/json"
	"errors"
	"io"
	"langbridge/backend/internal/config"
	"langbridge/backend/internal/models"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketClient implements Client over a gorilla/websocket connection.
type WebSocketClient struct {
	UserID string
	Conn   *websocket.Conn
	Hub    *ManagerService
	Send   chan models.ServerEvent

	maxMessageSize int64
	closeOnce      sync.Once
}

// NewWebSocketClient wraps conn. bufferSize bounds the number of events queued
// for a slow reader before deliveries start being skipped.
func NewWebSocketClient(conn *websocket.Conn, hub *ManagerService, bufferSize int, maxMessageSize int64) *WebSocketClient {
	if bufferSize <= 0 {
		bufferSize = config.SendBufferSize
	}
	if maxMessageSize <= 0 {
		maxMessageSize = config.MaxMessageSize
	}
	return &WebSocketClient{
		Conn:           conn,
		Hub:            hub,
		Send:           make(chan models.ServerEvent, bufferSize),
		maxMessageSize: maxMessageSize,
	}
}

func (c *WebSocketClient) GetUserID() string                         { return c.UserID }
func (c *WebSocketClient) SetUserID(id string)                       { c.UserID = id }
func (c *WebSocketClient) GetSendChannel() chan<- models.ServerEvent { return c.Send }

// Run starts the pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops writePump.
// readPump stops by itself once the connection is closed.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() {
		close(c.Send)
	})
}

// readPump forwards every inbound text frame to the hub. Any read error ends
// the session through the same path as an explicit leave.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		if err := c.Conn.Close(); err != nil && !isExpectedCloseError(err) {
			log.Printf("ERROR: Closing connection for session %s: %v", c.UserID, err)
		}
	}()

	c.Conn.SetReadLimit(c.maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(config.PongWait)); err != nil {
		log.Printf("ERROR: Setting read deadline for session %s: %v", c.UserID, err)
		return
	}
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(config.PongWait))
	})

	for {
		msgType, message, err := c.Conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if !c.Hub.Submit(c.UserID, message) {
			return
		}
	}
}

func (c *WebSocketClient) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		log.Printf("WARNING: Session %s sent a frame larger than %d bytes", c.UserID, c.maxMessageSize)
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived):
		log.Printf("INFO: Session %s disconnected", c.UserID)
	case errors.Is(err, io.EOF) || isExpectedCloseError(err):
		log.Printf("INFO: Session %s connection closed: %v", c.UserID, err)
	default:
		log.Printf("WARNING: Read error for session %s: %v", c.UserID, err)
	}
}

// writePump writes one JSON object per text frame, in the order the hub queued
// them, and keeps the connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(config.PingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			if !c.setWriteDeadline() {
				return
			}
			if !ok {
				// The hub closed the channel.
				err := c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				if err != nil && !isExpectedCloseError(err) {
					log.Printf("WARNING: Close frame to session %s failed: %v", c.UserID, err)
				}
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("ERROR: Encoding %s event for session %s: %v", event.Type, c.UserID, err)
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				if !isExpectedCloseError(err) {
					log.Printf("WARNING: Write to session %s failed: %v", c.UserID, err)
				}
				return
			}

		case <-ticker.C:
			if !c.setWriteDeadline() {
				return
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if !isExpectedCloseError(err) {
					log.Printf("WARNING: Ping to session %s failed: %v", c.UserID, err)
				}
				return
			}
		}
	}
}

func (c *WebSocketClient) setWriteDeadline() bool {
	if err := c.Conn.SetWriteDeadline(time.Now().Add(config.WriteWait)); err != nil {
		log.Printf("ERROR: Setting write deadline for session %s: %v", c.UserID, err)
		return false
	}
	return true
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, websocket.ErrCloseSent) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "broken pipe")
}
