package api

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The feed is public and the HTTP layer already allows any origin.
	CheckOrigin: func(*http.Request) bool { return true },
}

// streamTodos upgrades the request and keeps the connection registered until
// the peer goes away. Inbound frames are drained and ignored; a read error
// is the disconnect signal.
func streamTodos(hub *Hub) echo.HandlerFunc {
	return func(c echo.Context) error {
		ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}
		conn := hub.Add(ws)
		defer func() {
			hub.Remove(conn)
			_ = ws.Close()
		}()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return nil
			}
		}
	}
}
