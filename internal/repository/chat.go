package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"restaurant_chat/internal/domain"
	pkgerrors "restaurant_chat/pkg/errors"
	"restaurant_chat/pkg/logger"
)

const (
	// Префиксы ключей Redis
	chatKeyPrefix     = "support:chat:%s"
	chatOrderIndexKey = "support:chat:order:%s"
	chatIDSetKey      = "support:chats"
)

// ChatRepository — внешнее keyed-record хранилище чатов: точечные чтения,
// вставки и перезапись записи целиком по первичному ключу.
type ChatRepository interface {
	Create(ctx context.Context, chat *domain.Chat) error
	GetByID(ctx context.Context, id string) (*domain.Chat, error)

	// GetByOrderID возвращает активный чат заказа через индекс
	// или ErrChatNotFound, если активного чата нет.
	GetByOrderID(ctx context.Context, orderID string) (*domain.Chat, error)

	// Update перезаписывает запись целиком и поддерживает индекс
	// order_id -> активный чат.
	Update(ctx context.Context, chat *domain.Chat) error

	List(ctx context.Context) ([]*domain.Chat, error)
}

type chatRepository struct {
	rdb *redis.Client
	log logger.Logger
}

func NewChatRepository(rdb *redis.Client, log logger.Logger) ChatRepository {
	return &chatRepository{rdb: rdb, log: log}
}

func chatKey(id string) string {
	return fmt.Sprintf(chatKeyPrefix, id)
}

func orderIndexKey(orderID string) string {
	return fmt.Sprintf(chatOrderIndexKey, orderID)
}

func (r *chatRepository) Create(ctx context.Context, chat *domain.Chat) error {
	data, err := json.Marshal(chat)
	if err != nil {
		r.log.Error("Failed to marshal chat", "error", err)
		return fmt.Errorf("failed to marshal chat: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, chatKey(chat.ID), data, 0)
	pipe.SAdd(ctx, chatIDSetKey, chat.ID)
	if chat.Status == domain.ChatStatusActive {
		pipe.Set(ctx, orderIndexKey(chat.OrderID), chat.ID, 0)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Error("Failed to create chat", "error", err, "chat_id", chat.ID)
		return fmt.Errorf("failed to create chat: %w", err)
	}

	return nil
}

func (r *chatRepository) GetByID(ctx context.Context, id string) (*domain.Chat, error) {
	data, err := r.rdb.Get(ctx, chatKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, pkgerrors.ErrChatNotFound
		}
		r.log.Error("Failed to get chat", "error", err, "chat_id", id)
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}

	var chat domain.Chat
	if err := json.Unmarshal(data, &chat); err != nil {
		r.log.Error("Failed to unmarshal chat", "error", err, "chat_id", id)
		return nil, fmt.Errorf("failed to unmarshal chat: %w", err)
	}

	return &chat, nil
}

func (r *chatRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Chat, error) {
	chatID, err := r.rdb.Get(ctx, orderIndexKey(orderID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, pkgerrors.ErrChatNotFound
		}
		r.log.Error("Failed to resolve order index", "error", err, "order_id", orderID)
		return nil, fmt.Errorf("failed to resolve order index: %w", err)
	}

	return r.GetByID(ctx, chatID)
}

func (r *chatRepository) Update(ctx context.Context, chat *domain.Chat) error {
	data, err := json.Marshal(chat)
	if err != nil {
		r.log.Error("Failed to marshal chat", "error", err)
		return fmt.Errorf("failed to marshal chat: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, chatKey(chat.ID), data, 0)
	if chat.Status == domain.ChatStatusActive {
		pipe.Set(ctx, orderIndexKey(chat.OrderID), chat.ID, 0)
	} else {
		// Чат вышел из active — заказ снова свободен для нового треда
		pipe.Del(ctx, orderIndexKey(chat.OrderID))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Error("Failed to update chat", "error", err, "chat_id", chat.ID)
		return fmt.Errorf("failed to update chat: %w", err)
	}

	return nil
}

func (r *chatRepository) List(ctx context.Context) ([]*domain.Chat, error) {
	ids, err := r.rdb.SMembers(ctx, chatIDSetKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*domain.Chat{}, nil
		}
		r.log.Error("Failed to list chat ids", "error", err)
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	chats := make([]*domain.Chat, 0, len(ids))
	for _, id := range ids {
		chat, err := r.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, pkgerrors.ErrChatNotFound) {
				r.log.Warn("Chat id in set without record", "chat_id", id)
				continue
			}
			return nil, err
		}
		chats = append(chats, chat)
	}

	return chats, nil
}
