package realtime

import (
	"sync"

	"restaurant_chat/pkg/logger"
)

// Hub хранит соединения и членство в комнатах. Членство живет только
// в памяти процесса: после реконнекта клиент заново вступает в комнаты.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	// room -> client_id -> client
	rooms map[string]map[string]*Client
	log   logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		log:     log,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
	h.log.Debug("Client registered", "client_id", client.ID, "user_id", client.UserID)
}

// Unregister убирает клиента из всех комнат и закрывает его очередь отправки.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[clientID]
	if !ok {
		return
	}

	for room, members := range h.rooms {
		delete(members, clientID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}

	delete(h.clients, clientID)
	close(client.send)
	h.log.Debug("Client unregistered", "client_id", clientID)
}

// Join добавляет клиента в комнату. Повторный вызов — no-op.
func (h *Hub) Join(clientID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[clientID]
	if !ok {
		return
	}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	members[clientID] = client
}

// Leave убирает клиента из комнаты. Выход из чужой комнаты — no-op.
func (h *Hub) Leave(clientID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		return
	}

	delete(members, clientID)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// Broadcast доставляет событие всем, кто состоит в комнате на момент вызова.
// Повтора для вступивших позже нет.
func (h *Hub) Broadcast(room, event string, payload any) {
	h.broadcast(room, "", event, payload)
}

// BroadcastExcept — то же, но без отправителя (typing-события).
func (h *Hub) BroadcastExcept(room, exceptClientID, event string, payload any) {
	h.broadcast(room, exceptClientID, event, payload)
}

func (h *Hub) broadcast(room, exceptClientID, event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, client := range h.rooms[room] {
		if id == exceptClientID {
			continue
		}
		client.Send(OutEvent{Event: event, Data: payload})
	}
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) InRoom(clientID, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[room][clientID]
	return ok
}
