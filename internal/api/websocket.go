package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cantina/internal/session"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 64 * 1024
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsConnection maintains one chat connection bound to a session
type wsConnection struct {
	ctx     context.Context
	cancel  context.CancelFunc
	conn    *websocket.Conn
	send    chan []byte
	server  *Server
	session *session.Session
	log     *zap.Logger
}

// handleWebSocket upgrades /ws?session_id= to a chat connection. Each text
// frame {"message": "..."} is answered with the outcome as JSON.
func (s *Server) handleWebSocket(c *gin.Context) {
	sess, err := s.sessions.Get(c.Query("session_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("Failed to upgrade connection", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	wsConn := &wsConnection{
		ctx:     ctx,
		cancel:  cancel,
		conn:    conn,
		send:    make(chan []byte, 16),
		server:  s,
		session: sess,
		log:     s.log.With(zap.String("session_id", sess.ID)),
	}

	go wsConn.writePump()
	go wsConn.readPump()
}

// readPump reads frames until the client goes away. It is the only sender
// on c.send and closes it on exit, which stops writePump.
func (c *wsConnection) readPump() {
	defer func() {
		c.cancel()
		close(c.send)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("WebSocket error", zap.Error(err))
			}
			return
		}
		c.handleMessage(message)
	}
}

// writePump pumps messages from the server to the WebSocket connection
func (c *wsConnection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage answers one frame. Frames of a connection are handled in
// order.
func (c *wsConnection) handleMessage(message []byte) {
	var req MessageRequest
	if err := json.Unmarshal(message, &req); err != nil || req.Message == "" {
		c.sendError("Expected a JSON frame with a message field")
		return
	}

	out, err := c.server.assistant.HandleMessage(c.ctx, c.session, req.Message)
	if err != nil {
		c.log.Error("Failed to handle message", zap.Error(err))
		c.sendError(err.Error())
		return
	}
	c.sendJSON(out)
}

func (c *wsConnection) sendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.log.Error("Error marshaling outcome", zap.Error(err))
		return
	}

	select {
	case c.send <- data:
	default:
		c.log.Warn("WebSocket buffer full, dropping message")
	}
}

// sendError sends an error message to the client
func (c *wsConnection) sendError(message string) {
	c.sendJSON(gin.H{"error": message})
}
