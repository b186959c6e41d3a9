package ws

import (
	"context"
	"sync"

	"encomendas_backend/internal/logger"
	"encomendas_backend/internal/services/dto"
)

// Hub рассылает события посылок клиентам портарии, сгруппированным по кондоминиуму.
// Реализует services.EventPublisher.
type Hub struct {
	rooms      map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan dto.PackageEvent
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan dto.PackageEvent, 256),
		done:       make(chan struct{}),
	}
}

// Run обслуживает регистрацию и рассылку до отмены ctx, затем закрывает всех клиентов.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			logger.Info("Websocket hub stopped")
			return nil

		case client := <-h.register:
			h.mu.Lock()
			room, ok := h.rooms[client.CondominiumID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[client.CondominiumID] = room
			}
			room[client] = struct{}{}
			h.mu.Unlock()
			logger.Debug("Websocket client registered", "user_id", client.UserID, "condominium_id", client.CondominiumID)

		case client := <-h.unregister:
			h.remove(client)

		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

// Publish не блокирует вызывающий сервис: при переполненной очереди событие теряется
func (h *Hub) Publish(event dto.PackageEvent) {
	select {
	case h.broadcast <- event:
	default:
		logger.Warn("Websocket broadcast queue full, event dropped",
			"type", event.Type,
			"package_id", event.PackageID,
		)
	}
}

// ClientCount - число подключенных клиентов кондоминиума
func (h *Hub) ClientCount(condominiumID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[condominiumID])
}

func (h *Hub) deliver(event dto.PackageEvent) {
	h.mu.RLock()
	var slow []*Client
	for client := range h.rooms[event.CondominiumID] {
		select {
		case client.Send <- event:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	// Медленный клиент отключается, чтобы не тормозить остальных
	for _, client := range slow {
		logger.Warn("Websocket client too slow, disconnecting", "user_id", client.UserID)
		h.remove(client)
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[client.CondominiumID]
	if !ok {
		return
	}
	if _, ok := room[client]; !ok {
		return
	}
	close(client.Send)
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, client.CondominiumID)
	}
	logger.Debug("Websocket client unregistered", "user_id", client.UserID, "condominium_id", client.CondominiumID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for condominiumID, room := range h.rooms {
		for client := range room {
			close(client.Send)
		}
		delete(h.rooms, condominiumID)
	}
}

// join и leave не блокируются после остановки хаба
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
