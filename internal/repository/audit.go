package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"restaurant_chat/internal/domain"
	"restaurant_chat/pkg/logger"
)

type AuditRepository interface {
	CreateEvent(ctx context.Context, event *domain.AuditEvent) error
	GetEventsByChat(ctx context.Context, chatID string) ([]*domain.AuditEvent, error)
}

type auditRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewAuditRepository(db *pgxpool.Pool, log logger.Logger) AuditRepository {
	return &auditRepository{db: db, log: log}
}

func (r *auditRepository) CreateEvent(ctx context.Context, event *domain.AuditEvent) error {
	query := `
		INSERT INTO chat_audit_events (chat_id, order_id, action, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		event.ChatID, event.OrderID, event.Action, event.ActorID, event.CreatedAt,
	).Scan(&event.ID)
	if err != nil {
		r.log.Error("Failed to create audit event", "error", err, "chat_id", event.ChatID)
		return err
	}

	return nil
}

func (r *auditRepository) GetEventsByChat(ctx context.Context, chatID string) ([]*domain.AuditEvent, error) {
	query := `
		SELECT id, chat_id, order_id, action, actor_id, created_at
		FROM chat_audit_events
		WHERE chat_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, chatID)
	if err != nil {
		r.log.Error("Failed to get audit events", "error", err, "chat_id", chatID)
		return nil, err
	}
	defer rows.Close()

	var events []*domain.AuditEvent
	for rows.Next() {
		event := &domain.AuditEvent{}
		err := rows.Scan(
			&event.ID, &event.ChatID, &event.OrderID, &event.Action, &event.ActorID, &event.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan audit event", "error", err)
			return nil, err
		}
		events = append(events, event)
	}

	return events, nil
}
