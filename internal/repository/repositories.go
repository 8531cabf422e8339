package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"restaurant_chat/pkg/logger"
)

type Repositories struct {
	Chat      ChatRepository
	Customer  CustomerRepository
	Order     OrderRepository
	Audit     AuditRepository
	RateLimit RateLimitRepository
}

func NewRepositories(db *pgxpool.Pool, rdb *redis.Client, log logger.Logger) *Repositories {
	return &Repositories{
		Chat:      NewChatRepository(rdb, log),
		Customer:  NewCustomerRepository(db, log),
		Order:     NewOrderRepository(db, log),
		Audit:     NewAuditRepository(db, log),
		RateLimit: NewRateLimitRepository(rdb, log),
	}
}
