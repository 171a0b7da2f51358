// internal/api/websocket.go
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Promethia/CampaignForge/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy is enforced on the HTTP surface; the socket
		// accepts any origin that got this far
		return true
	},
}

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
)

// wsInbound is one chat message over the socket
type wsInbound struct {
	Message string `json:"message"`
}

// wsOutbound wraps a chat result or error for the socket
type wsOutbound struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error *APIError   `json:"error,omitempty"`
}

// wsSession owns one upgraded connection. The connection supports a
// single concurrent writer, so chat replies and pings are both funneled
// through writeLoop via the send channel.
type wsSession struct {
	conn      *websocket.Conn
	send      chan wsOutbound
	pingEvery time.Duration
}

func newWSSession(conn *websocket.Conn, pingEvery time.Duration) *wsSession {
	return &wsSession{
		conn:      conn,
		send:      make(chan wsOutbound, 4),
		pingEvery: pingEvery,
	}
}

// writeLoop is the only goroutine that writes to the connection. It
// drains the send channel, emits keepalive pings, and closes the
// connection on exit so the read side unblocks.
func (s *wsSession) writeLoop() {
	ticker := time.NewTicker(s.pingEvery)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case outbound, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteJSON(outbound); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ChatWebSocket upgrades the connection and runs chat turns per frame,
// with the same semantics as POST /chat
func (h *Handler) ChatWebSocket(c *gin.Context) {
	userID := c.Param("user_id")
	if !validUserID(userID) {
		h.Response.BadRequest(c, "user_id must be 1-64 characters of [A-Za-z0-9_-]")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.L().Warn("websocket upgrade failed",
			zap.String("user_id", userID), zap.Error(err))
		return
	}

	conn.SetReadLimit(64 * 1024)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	session := newWSSession(conn, wsPingPeriod)
	go session.writeLoop()
	defer close(session.send)

	for {
		var inbound wsInbound
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.L().Debug("websocket closed unexpectedly",
					zap.String("user_id", userID), zap.Error(err))
			}
			return
		}

		var outbound wsOutbound
		if !validMessage(inbound.Message) {
			outbound = wsOutbound{
				Type: "error",
				Error: &APIError{
					Code:    ErrorValidation,
					Message: "message must not be empty",
				},
			}
		} else {
			result, err := h.ConversationService.ProcessMessage(
				c.Request.Context(), userID, inbound.Message)
			if err != nil {
				_, code := statusFor(err)
				outbound = wsOutbound{
					Type:  "error",
					Error: &APIError{Code: code, Message: err.Error()},
				}
			} else {
				outbound = wsOutbound{Type: "chat_result", Data: result}
			}
		}

		session.send <- outbound
	}
}
