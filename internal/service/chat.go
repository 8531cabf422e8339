package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"restaurant_chat/internal/domain"
	"restaurant_chat/internal/repository"
	pkgerrors "restaurant_chat/pkg/errors"
	"restaurant_chat/pkg/logger"
)

// Имена широковещательных событий (сервер -> комната)
const (
	EventChatNew          = "chat:new"
	EventChatMessage      = "chat:message"
	EventChatMessagesRead = "chat:messagesRead"
	EventChatResolved     = "chat:resolved"
	EventChatTyping       = "chat:typing"
)

// Broadcaster доставляет события участникам комнаты. Реализуется realtime.Hub.
type Broadcaster interface {
	Broadcast(room, event string, payload any)
	BroadcastExcept(room, exceptClientID, event string, payload any)
}

type ChatService interface {
	// Start создает чат поддержки для заказа или возвращает уже активный
	// (повторный start — это "продолжить мой тред").
	Start(ctx context.Context, orderID, issue, category string) (*domain.Chat, error)

	Send(ctx context.Context, chatID, content, senderID string) (*domain.Message, error)
	MarkRead(ctx context.Context, chatID, readerID string) error
	Resolve(ctx context.Context, chatID, resolverID string) error
	GetByOrder(ctx context.Context, orderID string) (*domain.Chat, error)
	ListForAdmin(ctx context.Context) ([]*domain.Chat, error)

	// SetTyping ничего не сохраняет: только ретрансляция в комнату чата
	// без отправителя, best effort.
	SetTyping(ctx context.Context, chatID, authorID, authorClientID string, isTyping bool)
}

type chatService struct {
	chatRepo     repository.ChatRepository
	customerRepo repository.CustomerRepository
	orderRepo    repository.OrderRepository
	audit        AuditService
	broadcaster  Broadcaster
	log          logger.Logger

	// Мутирующие операции над одним чатом (и start над одним заказом)
	// сериализуются, иначе read-modify-write теряет параллельные записи.
	mu    sync.Mutex
	locks map[string]*keyedLock
}

// keyedLock считает держателей и ожидающих: запись в карте живет,
// только пока ключ кому-то нужен.
type keyedLock struct {
	sync.Mutex
	refs int
}

func NewChatService(
	chatRepo repository.ChatRepository,
	customerRepo repository.CustomerRepository,
	orderRepo repository.OrderRepository,
	audit AuditService,
	broadcaster Broadcaster,
	log logger.Logger,
) ChatService {
	return &chatService{
		chatRepo:     chatRepo,
		customerRepo: customerRepo,
		orderRepo:    orderRepo,
		audit:        audit,
		broadcaster:  broadcaster,
		log:          log,
		locks:        make(map[string]*keyedLock),
	}
}

func (s *chatService) lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &keyedLock{}
		s.locks[key] = l
	}
	l.refs++
	s.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, key)
		}
		s.mu.Unlock()
	}
}

func (s *chatService) Start(ctx context.Context, orderID, issue, category string) (*domain.Chat, error) {
	unlock := s.lock("order:" + orderID)
	defer unlock()

	// Активный чат на заказ может быть только один
	existing, err := s.chatRepo.GetByOrderID(ctx, orderID)
	if err == nil {
		return normalize(existing), nil
	}
	if !errors.Is(err, pkgerrors.ErrChatNotFound) {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID == "" {
		// Гостевые заказы поддержку через чат не получают
		return nil, pkgerrors.ErrNotRegisteredCustomer
	}

	now := time.Now()
	chat := &domain.Chat{
		ID:            uuid.NewString(),
		OrderID:       orderID,
		CustomerID:    order.CustomerID,
		Issue:         issue,
		Category:      category,
		Status:        domain.ChatStatusActive,
		Messages:      []domain.Message{},
		CreatedAt:     now,
		LastMessageAt: now,
		OrderDetails: &domain.OrderDetails{
			Total:       order.Total,
			Status:      order.Status,
			OrderNumber: domain.OrderNumber(orderID),
		},
	}

	customer, err := s.customerRepo.GetByID(ctx, order.CustomerID)
	if err != nil {
		// Снапшот не обязателен, listForAdmin добьет его позже
		s.log.Warn("Failed to snapshot customer details", "error", err, "customer_id", order.CustomerID)
	} else {
		chat.CustomerDetails = &domain.CustomerDetails{
			Name:  customer.Name,
			Email: customer.Email,
			Phone: customer.Phone,
		}
	}

	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, chat, domain.AuditChatStarted, order.CustomerID)

	// Админские консоли узнают о новом чате без поллинга
	s.broadcaster.Broadcast(domain.AdminRoom, EventChatNew, chat)

	return chat, nil
}

func (s *chatService) Send(ctx context.Context, chatID, content, senderID string) (*domain.Message, error) {
	unlock := s.lock(chatID)
	defer unlock()

	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	message := domain.Message{
		ID:        uuid.NewString(),
		Sender:    domain.DeriveSender(chat.CustomerID, senderID),
		SenderID:  senderID,
		Content:   content,
		Timestamp: time.Now(),
		Read:      false,
	}

	chat.Messages = append(chat.Messages, message)
	chat.LastMessageAt = message.Timestamp

	if err := s.chatRepo.Update(ctx, chat); err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(domain.ChatRoom(chatID), EventChatMessage, map[string]any{
		"chat_id": chatID,
		"message": message,
	})

	return &message, nil
}

func (s *chatService) MarkRead(ctx context.Context, chatID, readerID string) error {
	unlock := s.lock(chatID)
	defer unlock()

	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return err
	}

	changed := false
	for i := range chat.Messages {
		if chat.Messages[i].SenderID != readerID && !chat.Messages[i].Read {
			chat.Messages[i].Read = true
			changed = true
		}
	}

	// Нечего помечать — успех без записи и без события
	if !changed {
		return nil
	}

	if err := s.chatRepo.Update(ctx, chat); err != nil {
		return err
	}

	s.broadcaster.Broadcast(domain.ChatRoom(chatID), EventChatMessagesRead, map[string]any{
		"chat_id":   chatID,
		"reader_id": readerID,
	})

	return nil
}

func (s *chatService) Resolve(ctx context.Context, chatID, resolverID string) error {
	unlock := s.lock(chatID)
	defer unlock()

	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return err
	}

	// Переход односторонний: повторный resolve ничего не меняет
	if chat.Status == domain.ChatStatusResolved {
		return nil
	}

	now := time.Now()
	chat.Status = domain.ChatStatusResolved
	chat.ResolvedBy = resolverID
	chat.ResolvedAt = &now
	chat.LastMessageAt = now

	if err := s.chatRepo.Update(ctx, chat); err != nil {
		return err
	}

	s.audit.Record(ctx, chat, domain.AuditChatResolved, resolverID)

	s.broadcaster.Broadcast(domain.ChatRoom(chatID), EventChatResolved, map[string]any{
		"chat_id":     chatID,
		"resolved_by": resolverID,
		"resolved_at": now,
	})

	return nil
}

func (s *chatService) GetByOrder(ctx context.Context, orderID string) (*domain.Chat, error) {
	chat, err := s.chatRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return normalize(chat), nil
}

func (s *chatService) ListForAdmin(ctx context.Context) ([]*domain.Chat, error) {
	chats, err := s.chatRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	for _, chat := range chats {
		s.backfill(ctx, chat)
	}

	sort.Slice(chats, func(i, j int) bool {
		return chats[i].LastMessageAt.After(chats[j].LastMessageAt)
	})

	return chats, nil
}

// backfill дозаполняет отсутствующие или неполные снапшоты из справочного
// хранилища. order_number при этом всегда пересчитывается.
func (s *chatService) backfill(ctx context.Context, chat *domain.Chat) {
	if chat.CustomerDetails == nil || chat.CustomerDetails.Name == "" {
		customer, err := s.customerRepo.GetByID(ctx, chat.CustomerID)
		if err != nil {
			s.log.Warn("Failed to backfill customer details", "error", err, "chat_id", chat.ID)
		} else {
			chat.CustomerDetails = &domain.CustomerDetails{
				Name:  customer.Name,
				Email: customer.Email,
				Phone: customer.Phone,
			}
		}
	}

	if chat.OrderDetails == nil || chat.OrderDetails.Status == "" {
		order, err := s.orderRepo.GetByID(ctx, chat.OrderID)
		if err != nil {
			s.log.Warn("Failed to backfill order details", "error", err, "chat_id", chat.ID)
		} else {
			chat.OrderDetails = &domain.OrderDetails{
				Total:  order.Total,
				Status: order.Status,
			}
		}
	}

	normalize(chat)
}

func (s *chatService) SetTyping(ctx context.Context, chatID, authorID, authorClientID string, isTyping bool) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		// Best effort: нет чата — нет ретрансляции
		return
	}

	s.broadcaster.BroadcastExcept(domain.ChatRoom(chatID), authorClientID, EventChatTyping, map[string]any{
		"chat_id":   chatID,
		"is_typing": isTyping,
		"sender":    domain.DeriveSender(chat.CustomerID, authorID),
	})
}

// normalize пересчитывает производные поля отображения.
// Снапшоту order_number не доверяем ни на одном пути чтения.
func normalize(chat *domain.Chat) *domain.Chat {
	if chat.OrderDetails == nil {
		chat.OrderDetails = &domain.OrderDetails{}
	}
	chat.OrderDetails.OrderNumber = domain.OrderNumber(chat.OrderID)
	return chat
}
