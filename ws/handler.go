package ws

import (
	"net/http"

	"encomendas_backend/internal/logger"
	"encomendas_backend/internal/middleware"
	"encomendas_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewWebSocketHandler - allowedOrigins пустой означает любой origin (development)
func NewWebSocketHandler(hub *Hub, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

// ServeWS godoc
// @Summary Feed em tempo real da portaria
// @Description Eventos package.registered e package.picked_up do condomínio. Token via ?token=
// @Tags realtime
// @Param token query string true "JWT"
// @Success 101
// @Router /ws [get]
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	// userID и кондоминиум кладет AuthMiddleware
	userID := middleware.GetUserID(c)
	condominiumID := middleware.GetCondominiumID(c)
	if condominiumID == "" {
		apperrors.HandleError(c, apperrors.ErrCondominiumRequired)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "WebSocket upgrade error", err)
		return
	}

	client := newClient(h.hub, conn, userID, condominiumID)
	if !h.hub.join(client) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}
