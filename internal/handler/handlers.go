package handler

import (
	"restaurant_chat/internal/realtime"
	"restaurant_chat/internal/service"
	"restaurant_chat/pkg/logger"
)

type Handlers struct {
	Health    *HealthHandler
	WebSocket *WebSocketHandler
}

func NewHandlers(services *service.Services, hub *realtime.Hub, realtimePort int, log logger.Logger) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(realtimePort),
		WebSocket: NewWebSocketHandler(hub, services.Chat, services.Auth, services.Audit, log),
	}
}
