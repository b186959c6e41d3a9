package ws

import (
	"time"

	"encomendas_backend/internal/logger"
	"encomendas_backend/internal/services/dto"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// Client - одно подключение портарии. Клиент только слушает события.
type Client struct {
	UserID        string
	CondominiumID string
	Conn          *websocket.Conn
	Send          chan dto.PackageEvent

	hub *Hub
}

func newClient(hub *Hub, conn *websocket.Conn, userID, condominiumID string) *Client {
	return &Client{
		UserID:        userID,
		CondominiumID: condominiumID,
		Conn:          conn,
		Send:          make(chan dto.PackageEvent, sendBuffer),
		hub:           hub,
	}
}

// readPump держит соединение живым (pong) и ловит закрытие со стороны клиента
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Websocket read error", "user_id", c.UserID, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// хаб закрыл канал
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(event); err != nil {
				logger.Warn("Websocket write error", "user_id", c.UserID, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
