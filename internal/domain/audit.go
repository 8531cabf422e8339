package domain

import "time"

const (
	AuditChatStarted  = "chat_started"
	AuditChatResolved = "chat_resolved"
)

// AuditEvent — запись о переходе жизненного цикла чата.
// Чаты не удаляются физически, события дополняют историю.
type AuditEvent struct {
	ID        int64     `json:"id"`
	ChatID    string    `json:"chat_id"`
	OrderID   string    `json:"order_id"`
	Action    string    `json:"action"`
	ActorID   string    `json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}
