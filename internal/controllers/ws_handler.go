package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"nexus-backend/internal/realtime"
)

// WSUpgrade rejects plain HTTP requests on the websocket route.
func WSUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// WSConnect registers the connection as the caller's live push target and
// holds it open until the client goes away. The read loop only drains
// control frames; all traffic on this socket is server → client.
func WSConnect(hub *realtime.Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		uid, ok := conn.Locals("user_id").(string)
		if !ok || uid == "" {
			conn.Close()
			return
		}

		sessionID := hub.Register(uid, conn)
		defer func() {
			hub.Unregister(uid, sessionID)
			conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
