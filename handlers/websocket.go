// handlers/websocket.go - Live system messages
package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"smartbeans/middleware"
)

const (
	// WebSocket timeouts
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 15 * time.Second
)

// RequireWebSocket rejects requests that are not websocket upgrades.
func RequireWebSocket(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// wsConn writes with a deadline so a stuck client cannot block the sender.
type wsConn struct {
	conn *websocket.Conn
}

func (w wsConn) WriteJSON(v any) error {
	if err := w.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return w.conn.WriteJSON(v)
}

func (w wsConn) ping() error {
	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// WebSocketHandler pushes the user's system messages while the connection
// is open. Clients only read.
// GET /ws
var WebSocketHandler = websocket.New(func(conn *websocket.Conn) {
	username, _ := conn.Locals(middleware.LocalUsername).(string)
	if username == "" {
		return
	}

	ws := wsConn{conn: conn}
	unregister := hub.Register(username, ws)
	defer unregister()
	logger.Debug("websocket connected", slog.String("user", username))

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := ws.ping(); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	close(done)
	logger.Debug("websocket disconnected", slog.String("user", username))
})
