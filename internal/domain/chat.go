package domain

import (
	"time"
)

const (
	ChatStatusActive   = "active"
	ChatStatusResolved = "resolved"
	// Зарезервировано в схеме, ни одна операция пока не переводит чат в closed
	ChatStatusClosed = "closed"
)

const (
	SenderCustomer = "customer"
	SenderAdmin    = "admin"
)

// CustomerDetails — денормализованный снапшот данных клиента,
// снимается при создании чата для отображения без повторных запросов.
type CustomerDetails struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type OrderDetails struct {
	Total       float64 `json:"total"`
	Status      string  `json:"status"`
	OrderNumber string  `json:"order_number"`
}

type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

// Chat — тред поддержки, привязанный к одному заказу и одному клиенту.
// В статусе active на заказ может существовать не более одного чата.
type Chat struct {
	ID              string           `json:"id"`
	OrderID         string           `json:"order_id"`
	CustomerID      string           `json:"customer_id"`
	Issue           string           `json:"issue"`
	Category        string           `json:"category"`
	Status          string           `json:"status"`
	Messages        []Message        `json:"messages"`
	CreatedAt       time.Time        `json:"created_at"`
	LastMessageAt   time.Time        `json:"last_message_at"`
	ResolvedBy      string           `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time       `json:"resolved_at,omitempty"`
	CustomerDetails *CustomerDetails `json:"customer_details,omitempty"`
	OrderDetails    *OrderDetails    `json:"order_details,omitempty"`
}

// DeriveSender вычисляет роль отправителя сравнением с customer_id чата.
// Роль никогда не берется из клиентского поля, чтобы исключить подмену.
func DeriveSender(customerID, senderID string) string {
	if senderID == customerID {
		return SenderCustomer
	}
	return SenderAdmin
}

// OrderNumber — последние 6 символов id заказа. Всегда вычисляется заново,
// снапшоту не доверяем, чтобы отображение не разъезжалось.
func OrderNumber(orderID string) string {
	if len(orderID) <= 6 {
		return orderID
	}
	return orderID[len(orderID)-6:]
}

func (c *Chat) RoomName() string {
	return "chat:" + c.ID
}

// ChatRoom строит имя комнаты по id чата.
func ChatRoom(chatID string) string {
	return "chat:" + chatID
}

// AdminRoom — общая комната всех подключенных администраторов.
const AdminRoom = "admin"
