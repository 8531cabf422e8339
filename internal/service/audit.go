package service

import (
	"context"
	"time"

	"restaurant_chat/internal/domain"
	"restaurant_chat/internal/repository"
	"restaurant_chat/pkg/logger"
)

// AuditService пишет события жизненного цикла чатов.
// Отказ аудита не валит операцию, только логируется.
type AuditService interface {
	Record(ctx context.Context, chat *domain.Chat, action, actorID string)
	History(ctx context.Context, chatID string) ([]*domain.AuditEvent, error)
}

type auditService struct {
	auditRepo repository.AuditRepository
	log       logger.Logger
}

func NewAuditService(auditRepo repository.AuditRepository, log logger.Logger) AuditService {
	return &auditService{auditRepo: auditRepo, log: log}
}

func (s *auditService) Record(ctx context.Context, chat *domain.Chat, action, actorID string) {
	event := &domain.AuditEvent{
		ChatID:    chat.ID,
		OrderID:   chat.OrderID,
		Action:    action,
		ActorID:   actorID,
		CreatedAt: time.Now(),
	}

	if err := s.auditRepo.CreateEvent(ctx, event); err != nil {
		s.log.Warn("Failed to record audit event", "error", err, "chat_id", chat.ID, "action", action)
	}
}

func (s *auditService) History(ctx context.Context, chatID string) ([]*domain.AuditEvent, error) {
	return s.auditRepo.GetEventsByChat(ctx, chatID)
}
