package service

import (
	"restaurant_chat/internal/config"
	"restaurant_chat/internal/repository"
	"restaurant_chat/pkg/logger"
)

type Services struct {
	Auth      AuthService
	Audit     AuditService
	Chat      ChatService
	RateLimit RateLimitService
}

func NewServices(repos *repository.Repositories, cfg *config.Config, broadcaster Broadcaster, log logger.Logger) *Services {
	audit := NewAuditService(repos.Audit, log)

	return &Services{
		Auth:      NewAuthService(cfg.JWT, log),
		Audit:     audit,
		Chat:      NewChatService(repos.Chat, repos.Customer, repos.Order, audit, broadcaster, log),
		RateLimit: NewRateLimitService(repos.RateLimit, log),
	}
}
